package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/handler"
	"github.com/iliyamo/cinebook-web/internal/middleware"
)

// RegisterBooking registers the booking flow, the booking history and the
// payment pages. Everything requires a signed-in session; the confirm and
// store steps also require seats held in this session.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, msgs *errmsg.Catalog, guard, limit echo.MiddlewareFunc) {
	b := e.Group("/booking", guard)
	b.GET("/seats/:showtimeId", h.SelectSeats)
	b.POST("/hold-seats", h.HoldSeats, limit)
	b.GET("/confirm", h.Confirm, middleware.RequireHold(msgs, errmsg.CodeSelectSeatsFirst))
	b.POST("/store", h.Store, middleware.RequireHold(msgs, errmsg.CodeHoldExpired))

	g := e.Group("/bookings", guard)
	g.GET("", h.MyBookings)
	g.GET("/:id", h.Show)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/ticket", h.Ticket)

	// static /history before the :bookingId routes
	p := e.Group("/payment", guard)
	p.GET("/history", h.PaymentHistory)
	p.GET("/:bookingId", h.PaymentPage)
	p.POST("/:bookingId", h.ProcessPayment, limit)
	p.GET("/:bookingId/success", h.PaymentSuccess)
	p.GET("/:bookingId/failed", h.PaymentFailed)
}
