package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/booking"
	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/model"
)

// BookingHandler drives the session booking flow, the payment pages and
// the customer's booking history.
type BookingHandler struct {
	Bookings *booking.Service
	Msgs     *errmsg.Catalog
}

func NewBookingHandler(bookings *booking.Service, msgs *errmsg.Catalog) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Msgs: msgs}
}

type holdRequest struct {
	ShowtimeID model.ID   `json:"showtime_id" form:"showtime_id" validate:"required"`
	SeatIDs    []model.ID `json:"seat_ids" form:"seat_ids" validate:"required,min=1"`
}

type paymentForm struct {
	Method string `form:"payment_method" json:"payment_method" validate:"required"`
}

// SelectSeats handles GET /booking/seats/:showtimeId.
func (h *BookingHandler) SelectSeats(c echo.Context) error {
	sel := h.Bookings.SelectSeats(c.Request().Context(), sessionOf(c), c.Param("showtimeId"))
	return page(c, "booking.seats", echo.Map{
		"showtime": sel.Showtime,
		"seats":    sel.Seats,
	})
}

// HoldSeats handles POST /booking/hold-seats from the seat map script.
func (h *BookingHandler) HoldSeats(c echo.Context) error {
	var req holdRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "message": h.Msgs.Text(errmsg.CodeSelectSeatsFirst)})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"success": false,
			"message": h.Msgs.Text(errmsg.CodeSelectSeatsFirst),
			"errors":  fieldErrors(err, h.Msgs),
		})
	}

	_, err := h.Bookings.HoldSeats(c.Request().Context(), sessionOf(c), req.ShowtimeID.String(), req.SeatIDs)
	if errors.Is(err, booking.ErrInvalidHold) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"success": false, "message": h.Msgs.Text(errmsg.CodeSelectSeatsFirst)})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "redirect": "/booking/confirm"})
}

// Confirm handles GET /booking/confirm.
func (h *BookingHandler) Confirm(c echo.Context) error {
	bd, err := h.Bookings.Pending(sessionOf(c))
	if err != nil {
		return redirectWith(c, "/movies", flashError, h.Msgs.Text(errmsg.CodeSelectSeatsFirst))
	}
	return page(c, "booking.confirm", echo.Map{
		"showtime":       bd.Showtime,
		"selected_seats": bd.SelectedSeats,
		"total_price":    bd.TotalPrice,
		"hold_id":        bd.HoldID,
	})
}

// Store handles POST /booking/store and continues to the payment page.
func (h *BookingHandler) Store(c echo.Context) error {
	b, err := h.Bookings.Store(sessionOf(c))
	if err != nil {
		return redirectWith(c, "/movies", flashError, h.Msgs.Text(errmsg.CodeHoldExpired))
	}
	return redirect(c, "/payment/"+b.ID.String())
}

// MyBookings handles GET /bookings?filter=.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	v := h.Bookings.History(c.Request().Context(), sessionOf(c), c.QueryParam("filter"))
	return page(c, "booking.my", echo.Map{
		"bookings": v.Bookings,
		"filter":   v.Filter,
		"counts":   v.Counts,
	})
}

// Show handles GET /bookings/:id.
func (h *BookingHandler) Show(c echo.Context) error {
	b, err := h.Bookings.Find(c.Request().Context(), sessionOf(c), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, h.Msgs.Text(errmsg.CodeBookingNotFound))
	}
	return page(c, "booking.detail", echo.Map{"booking": b})
}

// Cancel handles POST /bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	err := h.Bookings.Cancel(c.Request().Context(), sessionOf(c), c.Param("id"))
	if err == nil {
		return redirectWith(c, "/bookings", flashSuccess, h.Msgs.Text(errmsg.CodeCancelSuccess))
	}
	msg := h.Msgs.Text(errmsg.CodeCancelFailed)
	var re *booking.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		msg = re.Message
	}
	return backWithErrors(c, "/bookings", map[string]string{"error": msg}, nil)
}

// Ticket handles GET /bookings/:id/ticket.
func (h *BookingHandler) Ticket(c echo.Context) error {
	id := c.Param("id")
	b, err := h.Bookings.Ticket(c.Request().Context(), sessionOf(c), id)
	switch {
	case errors.Is(err, booking.ErrNotPaid):
		sessionOf(c).Flash(flashErrors, map[string]string{"error": h.Msgs.Text(errmsg.CodeTicketNotPaid)})
		return redirect(c, "/bookings/"+id)
	case err != nil:
		return echo.NewHTTPError(http.StatusNotFound, h.Msgs.Text(errmsg.CodeTicketNotFound))
	}
	return page(c, "booking.ticket", echo.Map{"booking": b})
}

// PaymentPage handles GET /payment/:bookingId.
func (h *BookingHandler) PaymentPage(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Bookings.ForPayment(ctx, sessionOf(c), c.Param("bookingId"))
	if err != nil {
		sessionOf(c).Flash(flashErrors, map[string]string{"error": h.Msgs.Text(errmsg.CodePaymentNotFound)})
		return redirect(c, "/movies")
	}
	return page(c, "payment.show", echo.Map{
		"booking":         b,
		"payment_methods": h.Bookings.PaymentMethods(ctx),
	})
}

// ProcessPayment handles POST /payment/:bookingId. Payment is simulated and
// always succeeds for bookings of this session.
func (h *BookingHandler) ProcessPayment(c echo.Context) error {
	id := c.Param("bookingId")
	var f paymentForm
	_ = c.Bind(&f)
	if err := c.Validate(&f); err != nil {
		return backWithErrors(c, "/payment/"+id, map[string]string{"payment_method": h.Msgs.Text(errmsg.CodeMethodRequired)}, nil)
	}

	_, err := h.Bookings.ProcessPayment(c.Request().Context(), sessionOf(c), id, f.Method)
	switch {
	case err == nil:
		return redirectWith(c, "/payment/"+id+"/success", flashSuccess, h.Msgs.Text(errmsg.CodePaymentSuccess))
	case errors.Is(err, booking.ErrMethodRequired):
		return backWithErrors(c, "/payment/"+id, map[string]string{"payment_method": h.Msgs.Text(errmsg.CodeMethodRequired)}, nil)
	case errors.Is(err, booking.ErrBookingCancelled):
		sessionOf(c).Flash(flashErrors, map[string]string{"error": h.Msgs.Text(errmsg.CodeBookingCancelled)})
		return redirect(c, "/bookings/"+id)
	default:
		sessionOf(c).Flash(flashErrors, map[string]string{"error": h.Msgs.Text(errmsg.CodeBookingNotFound)})
		return redirect(c, "/movies")
	}
}

// PaymentSuccess handles GET /payment/:bookingId/success.
func (h *BookingHandler) PaymentSuccess(c echo.Context) error {
	b, ok := h.Bookings.Lookup(sessionOf(c), c.Param("bookingId"))
	if !ok {
		return redirect(c, "/movies")
	}
	return page(c, "payment.success", echo.Map{"booking": b})
}

// PaymentFailed handles GET /payment/:bookingId/failed.
func (h *BookingHandler) PaymentFailed(c echo.Context) error {
	var bk any
	if b, ok := sessionOf(c).BookingHistory()[c.Param("bookingId")]; ok {
		bk = b
	}
	return page(c, "payment.failed", echo.Map{"booking": bk})
}

// PaymentHistory handles GET /payment/history.
func (h *BookingHandler) PaymentHistory(c echo.Context) error {
	return page(c, "payment.history", echo.Map{"payments": h.Bookings.PaymentHistory(sessionOf(c))})
}
