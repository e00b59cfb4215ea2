// Package service holds the thin session-aware services that sit between
// the HTTP handlers and the backend gateway: authentication, catalog
// browsing and booking event publishing.
package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/gateway"
	"github.com/iliyamo/cinebook-web/internal/model"
	"github.com/iliyamo/cinebook-web/internal/session"
	"github.com/iliyamo/cinebook-web/internal/utils"
)

// ErrNotAuthenticated is returned by calls that need a logged-in session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Error is a failed backend call as the message classifier sees it.
type Error struct {
	Status  int
	Message string
	Fields  map[string]any
}

func (e *Error) Error() string { return e.Message }

// Failure converts the error for errmsg.Catalog.Explain.
func (e *Error) Failure() errmsg.Failure {
	return errmsg.Failure{Status: e.Status, Message: e.Message}
}

func remoteError(res gateway.Result) *Error {
	return &Error{Status: res.Status, Message: res.Error, Fields: res.Errors}
}

// AuthBackend is the auth part of the gateway.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) gateway.Result
	Register(ctx context.Context, req gateway.RegisterRequest) gateway.Result
	Logout(ctx context.Context, creds gateway.Credentials) gateway.Result
	Me(ctx context.Context, creds gateway.Credentials) gateway.Result
	UpdateProfile(ctx context.Context, creds gateway.Credentials, fields map[string]string) gateway.Result
	ChangePassword(ctx context.Context, creds gateway.Credentials, current, next, confirm string) gateway.Result
}

type AuthService struct {
	api AuthBackend
}

func NewAuthService(api AuthBackend) *AuthService {
	return &AuthService{api: api}
}

// Login exchanges credentials for a token and stores token and profile in
// the session. The session id is regenerated on success.
func (a *AuthService) Login(ctx context.Context, sess *session.Session, email, password string) (model.User, error) {
	res := a.api.Login(ctx, email, password)
	if !res.Success {
		return model.User{}, remoteError(res)
	}
	var tr gateway.TokenResponse
	if err := res.Decode(&tr); err != nil || tr.AccessToken == "" {
		return model.User{}, &Error{Status: res.Status}
	}

	user := model.User{Email: email}
	if tr.User != nil {
		user = *tr.User
	} else if claims, err := utils.ParseClaims(tr.AccessToken); err == nil {
		user = model.User{
			ID:       model.ID(claims.ID()),
			Email:    orDefault(claims.Email, email),
			FullName: claims.Name,
			Role:     claims.Role,
		}
	}

	sess.Regenerate()
	sess.SetToken(tr.AccessToken)
	sess.SetUser(user)
	return user, nil
}

// RegisterForm is what the registration page submits.
type RegisterForm struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Register creates the account and logs in with the same credentials. A
// false loggedIn with a nil error means the account exists but the
// automatic login failed.
func (a *AuthService) Register(ctx context.Context, sess *session.Session, f RegisterForm) (loggedIn bool, err error) {
	res := a.api.Register(ctx, gateway.RegisterRequest{
		Username: f.Email,
		Email:    f.Email,
		Password: f.Password,
		FullName: f.Name,
		Phone:    f.Phone,
	})
	if !res.Success {
		return false, remoteError(res)
	}
	if _, err := a.Login(ctx, sess, f.Email, f.Password); err != nil {
		log.Warnf("auth: login after register for %s: %v", f.Email, err)
		return false, nil
	}
	return true, nil
}

// Logout tells the backend and always clears local auth state, whatever
// the backend answers.
func (a *AuthService) Logout(ctx context.Context, sess *session.Session) {
	if sess.Authenticated() {
		if res := a.api.Logout(ctx, sess); !res.Success {
			log.Warnf("auth: backend logout: %s", res.Message())
		}
	}
	sess.ClearAuth()
}

func (a *AuthService) IsAuthenticated(sess *session.Session) bool {
	return sess.Authenticated()
}

// User returns the cached profile without calling the backend.
func (a *AuthService) User(sess *session.Session) (model.User, bool) {
	return sess.User()
}

// RefreshUser reloads the profile behind the session token.
func (a *AuthService) RefreshUser(ctx context.Context, sess *session.Session) (model.User, error) {
	if !sess.Authenticated() {
		return model.User{}, ErrNotAuthenticated
	}
	res := a.api.Me(ctx, sess)
	if !res.Success {
		return model.User{}, remoteError(res)
	}
	u, err := decodeUser(res.Data)
	if err != nil {
		return model.User{}, err
	}
	sess.SetUser(u)
	return u, nil
}

// decodeUser accepts a bare profile or one wrapped in {"user": ...}.
func decodeUser(data json.RawMessage) (model.User, error) {
	var wrapped struct {
		User *model.User `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.User != nil {
		return *wrapped.User, nil
	}
	var u model.User
	if err := json.Unmarshal(data, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// UpdateProfile saves full name and phone and merges them into the cached
// profile.
func (a *AuthService) UpdateProfile(ctx context.Context, sess *session.Session, fullName, phone string) (model.User, error) {
	fields := map[string]string{"full_name": fullName, "phone_number": phone}
	res := a.api.UpdateProfile(ctx, sess, fields)
	if !res.Success {
		return model.User{}, remoteError(res)
	}
	u, _ := sess.User()
	u = u.Merge(fields)
	sess.SetUser(u)
	return u, nil
}

func (a *AuthService) ChangePassword(ctx context.Context, sess *session.Session, current, next, confirm string) error {
	if _, ok := sess.User(); !ok {
		return ErrNotAuthenticated
	}
	if res := a.api.ChangePassword(ctx, sess, current, next, confirm); !res.Success {
		return remoteError(res)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
