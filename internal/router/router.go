package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinebook-web/internal/config"
	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/handler"
	"github.com/iliyamo/cinebook-web/internal/middleware"
	"github.com/iliyamo/cinebook-web/internal/session"
)

// Deps carries what the route tables need besides the handlers. Redis is
// optional; without it rate limiting and the response cache are off.
type Deps struct {
	Sessions  *session.Manager
	Msgs      *errmsg.Catalog
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
}

// Handlers groups the page handlers by area.
type Handlers struct {
	Auth          *handler.AuthHandler
	Browse        *handler.BrowseHandler
	Booking       *handler.BookingHandler
	Notifications *handler.NotificationHandler
}

// New builds the echo instance with the global middleware chain and every
// route registered.
func New(d Deps, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewFormValidator()

	// HTML forms send PUT and DELETE as POST with a _method field.
	e.Pre(echomw.MethodOverrideWithConfig(echomw.MethodOverrideConfig{
		Getter: echomw.MethodFromForm("_method"),
	}))
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.GatewayContext())
	e.Use(middleware.Session(d.Sessions))

	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	guard := middleware.RequireAuth(d.Msgs)

	RegisterRoutes(e)
	RegisterPublic(e, h.Browse, cache)
	RegisterAuth(e, h.Auth, guard, limit)
	RegisterBooking(e, h.Booking, d.Msgs, guard, limit)
	RegisterNotifications(e, h.Notifications, guard)
	return e
}

// RegisterRoutes registers the routes that need no session state.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the catalog pages and their AJAX helpers. Guests
// may be served these from the response cache.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, cache echo.MiddlewareFunc) {
	g := e.Group("", cache)
	g.GET("/", b.Home)
	g.GET("/search", b.Search)
	g.GET("/movies", b.Movies)
	g.GET("/movies/now-showing", b.NowShowing)
	g.GET("/movies/coming-soon", b.ComingSoon)
	g.GET("/movies/:id", b.Movie)
	g.GET("/movies/:id/showtimes", b.Showtimes)
	g.GET("/api/showtimes/:id/seats", b.Seats)
}

// RegisterAuth registers login, registration and the profile pages. The
// form posts that reach the auth service are rate limited.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, guard, limit echo.MiddlewareFunc) {
	e.GET("/login", a.LoginPage)
	e.POST("/login", a.Login, limit)
	e.GET("/register", a.RegisterPage)
	e.POST("/register", a.Register, limit)
	e.POST("/logout", a.Logout)

	g := e.Group("/profile", guard)
	g.GET("", a.Profile)
	g.PUT("", a.UpdateProfile)
	g.POST("/change-password", a.ChangePassword)
}

// RegisterNotifications registers the notification list and its actions.
func RegisterNotifications(e *echo.Echo, n *handler.NotificationHandler, guard echo.MiddlewareFunc) {
	g := e.Group("/notifications", guard)
	g.GET("", n.Index)
	g.GET("/unread-count", n.UnreadCount)
	g.POST("/read-all", n.MarkAllRead)
	g.POST("/:id/read", n.MarkRead)
	g.DELETE("/:id", n.Delete)
}
