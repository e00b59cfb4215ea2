package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/middleware"
	"github.com/iliyamo/cinebook-web/internal/session"
)

// Flash keys read by the pages.
const (
	flashSuccess = "success"
	flashError   = "error"
	flashErrors  = "errors"
	flashOld     = "old"
)

func sessionOf(c echo.Context) *session.Session { return middleware.CurrentSession(c) }

// page writes a page view-model. Every page carries the flash messages of
// the previous request and the signed-in user.
func page(c echo.Context, view string, data echo.Map) error {
	sess := sessionOf(c)
	if data == nil {
		data = echo.Map{}
	}
	data["view"] = view
	data["flash"] = sess.Flashes()
	data["is_authenticated"] = sess.Authenticated()
	if u, ok := sess.User(); ok && sess.Authenticated() {
		data["current_user"] = u
	} else {
		data["current_user"] = nil
	}
	return c.JSON(http.StatusOK, data)
}

func redirect(c echo.Context, to string) error {
	return c.Redirect(http.StatusSeeOther, to)
}

func redirectWith(c echo.Context, to, key, msg string) error {
	sessionOf(c).Flash(key, msg)
	return redirect(c, to)
}

// back returns to the referring page of this site, or fallback.
func back(c echo.Context, fallback string) string {
	ref := c.Request().Referer()
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request().Host) || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}

// backWithErrors flashes field errors and the submitted input, then
// returns to the form.
func backWithErrors(c echo.Context, fallback string, errs map[string]string, old map[string]string) error {
	sess := sessionOf(c)
	sess.Flash(flashErrors, errs)
	if len(old) > 0 {
		sess.Flash(flashOld, old)
	}
	return redirect(c, back(c, fallback))
}

func wantsJSON(c echo.Context) bool { return middleware.WantsJSON(c) }
