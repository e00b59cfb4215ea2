package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/gateway"
	"github.com/iliyamo/cinebook-web/internal/session"
	"github.com/iliyamo/cinebook-web/internal/utils"
)

// userID identifies the caller for rate-limit keys: the id claim of the
// session token, then the cached profile id, else "guest". The token is
// read without verification; it only selects a bucket.
func userID(c echo.Context) string {
	sess, ok := c.Get(sessionContextKey).(*session.Session)
	if !ok {
		return "guest"
	}
	if tok := sess.Token(); tok != "" {
		if claims, err := utils.ParseClaims(tok); err == nil && claims.ID() != "" {
			return claims.ID()
		}
	}
	if u, found := sess.User(); found && u.ID != "" {
		return u.ID.String()
	}
	return "guest"
}

// GatewayContext forwards the browser's User-Agent and the request id to
// every backend call made while handling the request.
func GatewayContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := gateway.WithUserAgent(req.Context(), req.UserAgent())
			if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
				ctx = gateway.WithCorrelationID(ctx, rid)
			}
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
