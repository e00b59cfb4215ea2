package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/session"
)

// LoginPath is where unauthenticated page requests are sent.
const LoginPath = "/login"

// XMLHttpRequest is the X-Requested-With value page scripts send.
const XMLHttpRequest = "XMLHttpRequest"

// WantsJSON reports whether the caller is a script rather than a page load.
func WantsJSON(c echo.Context) bool {
	r := c.Request()
	if r.Header.Get(echo.HeaderXRequestedWith) == XMLHttpRequest {
		return true
	}
	return strings.Contains(r.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// RequireAuth lets only sessions holding a token through. Scripts get a 401;
// page loads are redirected to the login page, which sends the user back
// to the requested URL afterwards. A session the backend rejects while the
// handler runs gets the same answer instead of the page.
func RequireAuth(msgs *errmsg.Catalog) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if sess.Authenticated() {
				BeforeCommit(c, func() { expireMidRequest(c, sess, msgs) })
				return next(c)
			}
			if WantsJSON(c) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
			}
			if c.Request().Method == http.MethodGet {
				sess.SetIntended(c.Request().URL.RequestURI())
			}
			sess.Flash("error", msgs.Text(errmsg.CodeLoginRequired))
			return c.Redirect(http.StatusSeeOther, LoginPath)
		}
	}
}

// expireMidRequest rewrites the response when the backend answered 401
// during the request and the gateway dropped the token.
func expireMidRequest(c echo.Context, sess *session.Session, msgs *errmsg.Catalog) {
	if sess.Authenticated() {
		return
	}
	res := c.Response()
	if WantsJSON(c) {
		res.Status = http.StatusUnauthorized
		return
	}
	if c.Request().Method == http.MethodGet {
		sess.SetIntended(c.Request().URL.RequestURI())
	}
	sess.Flash("error", msgs.Text(errmsg.CodeSessionExpired))
	res.Header().Set(echo.HeaderLocation, LoginPath)
	res.Status = http.StatusSeeOther
}
