package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/cinebook-web/internal/model"
)

// TokenResponse is the body of a successful token request.
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *model.User `json:"user"`
}

// RegisterRequest is forwarded as-is to the register endpoint.
type RegisterRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation,omitempty"`
	FullName             string `json:"full_name"`
	Phone                string `json:"phone_number,omitempty"`
	Username             string `json:"username,omitempty"`
}

type AuthAPI struct{ c *Client }

func (c *Client) Auth() AuthAPI { return AuthAPI{c: c} }

// Login posts OAuth2 password-grant form fields; the email is the username.
func (a AuthAPI) Login(ctx context.Context, email, password string) Result {
	return a.c.Do(ctx, nil, Request{
		Method: http.MethodPost,
		Path:   a.c.Endpoint("auth.login"),
		Form:   url.Values{"username": {email}, "password": {password}},
	})
}

func (a AuthAPI) Register(ctx context.Context, req RegisterRequest) Result {
	return a.c.Do(ctx, nil, Request{Method: http.MethodPost, Path: a.c.Endpoint("auth.register"), Body: req})
}

func (a AuthAPI) Logout(ctx context.Context, creds Credentials) Result {
	return a.c.Do(ctx, creds, Request{Method: http.MethodPost, Path: a.c.Endpoint("auth.logout"), Auth: true})
}

// Me reloads the profile behind the current token.
func (a AuthAPI) Me(ctx context.Context, creds Credentials) Result {
	return a.c.Do(ctx, creds, Request{Method: http.MethodGet, Path: a.c.Endpoint("auth.me"), Auth: true})
}

func (a AuthAPI) UpdateProfile(ctx context.Context, creds Credentials, fields map[string]string) Result {
	return a.c.Do(ctx, creds, Request{Method: http.MethodPut, Path: a.c.Endpoint("auth.update_profile"), Body: fields, Auth: true})
}

func (a AuthAPI) ChangePassword(ctx context.Context, creds Credentials, current, next, confirm string) Result {
	return a.c.Do(ctx, creds, Request{
		Method: http.MethodPost,
		Path:   a.c.Endpoint("auth.change_password"),
		Body: map[string]string{
			"current_password":          current,
			"new_password":              next,
			"new_password_confirmation": confirm,
		},
		Auth: true,
	})
}
