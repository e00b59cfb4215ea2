package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/session"
)

// MoviesPath is where the booking flow restarts.
const MoviesPath = "/movies"

// RequireHold guards the confirm and store steps: without seats held in the
// session the user is sent back to the movie list with the given message.
func RequireHold(msgs *errmsg.Catalog, code errmsg.Code) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if sess.Has(session.KeyBookingData) {
				return next(c)
			}
			sess.Flash("error", msgs.Text(code))
			return c.Redirect(http.StatusSeeOther, MoviesPath)
		}
	}
}
