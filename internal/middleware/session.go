package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/session"
)

const (
	sessionContextKey = "session"
	sessionHooksKey   = "session.hooks"
)

// Session loads the browser session before the handler runs and persists it
// just before the response header is written, so the refreshed cookie goes
// out with the response. Load failures start a fresh session.
func Session(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			sess, err := m.Start(req)
			if err != nil {
				c.Logger().Warnf("session: %v", err)
			}
			c.Set(sessionContextKey, sess)
			var hooks []func()
			c.Set(sessionHooksKey, &hooks)

			committed := false
			commit := func() {
				if committed {
					return
				}
				committed = true
				for _, fn := range hooks {
					fn()
				}
				if err := m.Commit(req.Context(), c.Response().Writer, req, sess); err != nil {
					c.Logger().Errorf("session: commit %s: %v", sess.ID(), err)
				}
			}
			c.Response().Before(commit)

			err = next(c)
			if !c.Response().Committed {
				commit()
			}
			return err
		}
	}
}

// CurrentSession returns the session loaded by Session. Handlers mounted
// without the middleware get a throwaway session.
func CurrentSession(c echo.Context) *session.Session {
	if s, ok := c.Get(sessionContextKey).(*session.Session); ok {
		return s
	}
	s := session.New()
	c.Set(sessionContextKey, s)
	return s
}

// BeforeCommit queues fn to run just before the session is persisted and
// the response header is written. fn may still change the session, the
// status and the headers.
func BeforeCommit(c echo.Context, fn func()) {
	if hooks, ok := c.Get(sessionHooksKey).(*[]func()); ok {
		*hooks = append(*hooks, fn)
		return
	}
	c.Response().Before(fn)
}
