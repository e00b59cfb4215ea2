package handler

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/service"
)

// AuthHandler serves login, registration, logout and the profile pages.
type AuthHandler struct {
	Auth *service.AuthService
	Msgs *errmsg.Catalog
}

func NewAuthHandler(auth *service.AuthService, msgs *errmsg.Catalog) *AuthHandler {
	return &AuthHandler{Auth: auth, Msgs: msgs}
}

type loginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
}

type registerForm struct {
	Name                 string `form:"name" json:"name" validate:"required,max=255"`
	Email                string `form:"email" json:"email" validate:"required,email,max=255"`
	Phone                string `form:"phone" json:"phone" validate:"required,max=20"`
	Password             string `form:"password" json:"password" validate:"required,min=6"`
	PasswordConfirmation string `form:"password_confirmation" json:"password_confirmation" validate:"eqfield=Password"`
}

type profileForm struct {
	Name  string `form:"name" json:"name" validate:"required,max=255"`
	Phone string `form:"phone" json:"phone" validate:"required,max=20"`
}

type passwordForm struct {
	Current      string `form:"current_password" json:"current_password" validate:"required"`
	New          string `form:"new_password" json:"new_password" validate:"required,min=6"`
	Confirmation string `form:"new_password_confirmation" json:"new_password_confirmation" validate:"eqfield=New"`
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	if sessionOf(c).Authenticated() {
		return redirect(c, "/")
	}
	return page(c, "auth.login", nil)
}

// Login handles POST /login and returns to the page the user was sent away
// from.
func (h *AuthHandler) Login(c echo.Context) error {
	var f loginForm
	if err := c.Bind(&f); err != nil {
		return backWithErrors(c, "/login", map[string]string{"email": h.Msgs.Text(errmsg.CodeLoginFailed)}, nil)
	}
	f.Email = strings.TrimSpace(f.Email)
	old := map[string]string{"email": f.Email}
	if err := c.Validate(&f); err != nil {
		return backWithErrors(c, "/login", fieldErrors(err, h.Msgs), old)
	}

	sess := sessionOf(c)
	if _, err := h.Auth.Login(c.Request().Context(), sess, f.Email, f.Password); err != nil {
		return backWithErrors(c, "/login", map[string]string{"email": h.explain(errmsg.Login, err)}, old)
	}
	return redirectWith(c, sess.PullIntended("/"), flashSuccess, h.Msgs.Text(errmsg.CodeLoginSuccess))
}

// RegisterPage handles GET /register.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	if sessionOf(c).Authenticated() {
		return redirect(c, "/")
	}
	return page(c, "auth.register", nil)
}

// Register handles POST /register and logs the new account in.
func (h *AuthHandler) Register(c echo.Context) error {
	var f registerForm
	if err := c.Bind(&f); err != nil {
		return backWithErrors(c, "/register", map[string]string{"email": h.Msgs.Text(errmsg.CodeRegisterFailed)}, nil)
	}
	f.Email = strings.TrimSpace(f.Email)
	old := map[string]string{"name": f.Name, "email": f.Email, "phone": f.Phone}
	if err := c.Validate(&f); err != nil {
		return backWithErrors(c, "/register", fieldErrors(err, h.Msgs), old)
	}

	loggedIn, err := h.Auth.Register(c.Request().Context(), sessionOf(c), service.RegisterForm{
		Name:     f.Name,
		Email:    f.Email,
		Phone:    f.Phone,
		Password: f.Password,
	})
	if err != nil {
		return backWithErrors(c, "/register", map[string]string{"email": h.explain(errmsg.Register, err)}, old)
	}
	if !loggedIn {
		return redirectWith(c, "/login", flashSuccess, h.Msgs.Text(errmsg.CodeRegisterLoginAgain))
	}
	return redirectWith(c, "/", flashSuccess, h.Msgs.Text(errmsg.CodeRegisterSuccess))
}

// Logout handles POST /logout.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.Auth.Logout(c.Request().Context(), sessionOf(c))
	return redirectWith(c, "/", flashSuccess, h.Msgs.Text(errmsg.CodeLogoutSuccess))
}

// Profile handles GET /profile.
func (h *AuthHandler) Profile(c echo.Context) error {
	u, _ := h.Auth.User(sessionOf(c))
	return page(c, "auth.profile", echo.Map{"user": u})
}

// UpdateProfile handles PUT /profile.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var f profileForm
	if err := c.Bind(&f); err != nil {
		return backWithErrors(c, "/profile", map[string]string{"error": h.Msgs.Text(errmsg.CodeProfileFailed)}, nil)
	}
	if err := c.Validate(&f); err != nil {
		return backWithErrors(c, "/profile", fieldErrors(err, h.Msgs), map[string]string{"name": f.Name, "phone": f.Phone})
	}
	if _, err := h.Auth.UpdateProfile(c.Request().Context(), sessionOf(c), f.Name, f.Phone); err != nil {
		msg := h.Msgs.Text(errmsg.CodeProfileFailed)
		var se *service.Error
		if errors.As(err, &se) && se.Message != "" {
			msg = se.Message
		}
		return backWithErrors(c, "/profile", map[string]string{"error": msg}, nil)
	}
	return redirectWith(c, back(c, "/profile"), flashSuccess, h.Msgs.Text(errmsg.CodeProfileUpdated))
}

// ChangePassword handles POST /profile/change-password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var f passwordForm
	if err := c.Bind(&f); err != nil {
		return backWithErrors(c, "/profile", map[string]string{"error": h.Msgs.Text(errmsg.CodeChangePasswordFailed)}, nil)
	}
	if err := c.Validate(&f); err != nil {
		return backWithErrors(c, "/profile", fieldErrors(err, h.Msgs), nil)
	}

	err := h.Auth.ChangePassword(c.Request().Context(), sessionOf(c), f.Current, f.New, f.Confirmation)
	switch {
	case err == nil:
		return redirectWith(c, back(c, "/profile"), flashSuccess, h.Msgs.Text(errmsg.CodePasswordChanged))
	case errors.Is(err, service.ErrNotAuthenticated):
		return backWithErrors(c, "/profile", map[string]string{"error": h.Msgs.Text(errmsg.CodeSessionExpired)}, nil)
	}

	var se *service.Error
	if errors.As(err, &se) && errmsg.Classify(errmsg.ChangePassword, se.Failure()) == errmsg.CodeWrongCurrentPassword {
		return backWithErrors(c, "/profile", map[string]string{"current_password": h.Msgs.Text(errmsg.CodeWrongCurrentPassword)}, nil)
	}
	return backWithErrors(c, "/profile", map[string]string{"error": h.explain(errmsg.ChangePassword, err)}, nil)
}

func (h *AuthHandler) explain(ctx errmsg.Context, err error) string {
	var se *service.Error
	if errors.As(err, &se) {
		return h.Msgs.Explain(ctx, se.Failure())
	}
	return h.Msgs.Explain(ctx, errmsg.Failure{})
}
