package model

import (
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// BookingData is the in-session seat hold. It only lives in the session;
// nothing on the backend knows about it.
type BookingData struct {
	ShowtimeID    ID             `json:"showtime_id"`
	SeatIDs       []ID           `json:"seat_ids"`
	SelectedSeats []SelectedSeat `json:"selected_seats"`
	TotalPrice    Amount         `json:"total_price"`
	Showtime      *Showtime      `json:"showtime,omitempty"`
	HoldID        string         `json:"hold_id"`
	CreatedAt     string         `json:"created_at"`
}

// Booking is a purchase record, either materialized from a hold in this
// session or returned by the booking service. Timestamps are RFC 3339
// strings so session and backend records sort together.
type Booking struct {
	ID            ID             `json:"id"`
	ShowtimeID    ID             `json:"showtime_id,omitempty"`
	Showtime      *Showtime      `json:"showtime,omitempty"`
	Seats         SeatList       `json:"seats,omitempty"`
	SeatCodes     string         `json:"seat_codes,omitempty"`
	TotalPrice    Amount         `json:"total_price"`
	Status        BookingStatus  `json:"status"`
	HoldID        string         `json:"hold_id,omitempty"`
	PaymentID     string         `json:"payment_id,omitempty"`
	PaymentMethod string         `json:"payment_method,omitempty"`
	PaidAt        string         `json:"paid_at,omitempty"`
	CreatedAt     string         `json:"created_at,omitempty"`
	CancelledAt   string         `json:"cancelled_at,omitempty"`
	MovieTitle    string         `json:"movie_title,omitempty"`
	MoviePoster   string         `json:"movie_poster,omitempty"`
	CinemaName    string         `json:"cinema_name,omitempty"`
	Room          string         `json:"room,omitempty"`
	ShowDate      string         `json:"show_date,omitempty"`
	ShowTime      string         `json:"show_time,omitempty"`
}

// EffectiveStatus treats a missing status as pending.
func (b Booking) EffectiveStatus() BookingStatus {
	if b.Status == "" {
		return StatusPending
	}
	return BookingStatus(strings.ToLower(string(b.Status)))
}

// IsUpcoming reports whether the show date lies after now. A missing or
// unparseable date counts as today, which is never upcoming.
func (b Booking) IsUpcoming(now time.Time) bool {
	if b.ShowDate == "" {
		return false
	}
	day, err := time.ParseInLocation("2006-01-02", b.ShowDate, now.Location())
	if err != nil {
		return false
	}
	return day.After(now)
}
