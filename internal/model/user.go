package model

// User is the profile the backend returns with a token or from
// /api/auth/verify. It is cached in the session and never refreshed
// implicitly.
type User struct {
	ID       ID     `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
}

// DisplayName prefers the full name, then the username, then the email.
func (u User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// Merge overlays the non-empty profile fields accepted by the profile
// endpoint (full_name, phone/phone_number) onto the cached user.
func (u User) Merge(fields map[string]string) User {
	if v := fields["full_name"]; v != "" {
		u.FullName = v
	}
	if v := fields["phone_number"]; v != "" {
		u.Phone = v
	}
	if v := fields["phone"]; v != "" {
		u.Phone = v
	}
	return u
}
