// Package errmsg turns backend failures into user-facing text. Each form
// has an ordered rule table; the first matching rule picks a message code,
// and the code is rendered in the configured locale.
package errmsg

import (
	"net/http"
	"strings"
)

// Failure is what the classifier sees of a failed backend call.
type Failure struct {
	Status  int
	Message string
}

// Context selects the rule table.
type Context int

const (
	Login Context = iota
	Register
	ChangePassword
)

type predicate func(Failure) bool

type rule struct {
	match predicate
	code  Code
}

func status(code int) predicate {
	return func(f Failure) bool { return f.Status == code }
}

// contains matches when any of subs occurs in the message, ignoring case.
func contains(subs ...string) predicate {
	return func(f Failure) bool {
		msg := strings.ToLower(f.Message)
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

func anyOf(ps ...predicate) predicate {
	return func(f Failure) bool {
		for _, p := range ps {
			if p(f) {
				return true
			}
		}
		return false
	}
}

func allOf(ps ...predicate) predicate {
	return func(f Failure) bool {
		for _, p := range ps {
			if !p(f) {
				return false
			}
		}
		return true
	}
}

var connectionRule = rule{contains("connection", "timeout"), CodeConnection}

var rules = map[Context][]rule{
	Login: {
		{anyOf(status(http.StatusUnauthorized), contains("invalid", "incorrect")), CodeInvalidCredentials},
		{anyOf(status(http.StatusNotFound), contains("not found", "not exist")), CodeAccountNotFound},
		{anyOf(status(http.StatusForbidden), contains("blocked", "disabled")), CodeAccountLocked},
		{anyOf(status(http.StatusTooManyRequests), contains("too many")), CodeTooManyAttempts},
		connectionRule,
	},
	Register: {
		{anyOf(status(http.StatusConflict), contains("exist", "duplicate", "already")), CodeEmailTaken},
		{allOf(contains("email"), contains("invalid")), CodeEmailInvalid},
		{contains("password"), CodeWeakPassword},
		{contains("phone"), CodePhoneInvalid},
		connectionRule,
	},
	ChangePassword: {
		{contains("incorrect", "invalid"), CodeWrongCurrentPassword},
		connectionRule,
	},
}

var fallbacks = map[Context]Code{
	Login:          CodeLoginFailed,
	Register:       CodeRegisterFailed,
	ChangePassword: CodeChangePasswordFailed,
}

// Classify returns the code of the first matching rule, or "" when none
// matches.
func Classify(ctx Context, f Failure) Code {
	for _, r := range rules[ctx] {
		if r.match(f) {
			return r.code
		}
	}
	return ""
}

// Explain renders the classified message. Unclassified failures show the
// backend's own text, or the context's generic failure when it sent none.
func (c *Catalog) Explain(ctx Context, f Failure) string {
	if code := Classify(ctx, f); code != "" {
		return c.Text(code)
	}
	if f.Message != "" {
		return f.Message
	}
	return c.Text(fallbacks[ctx])
}
