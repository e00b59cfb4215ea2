// Package queue defines booking lifecycle events exchanged over RabbitMQ and
// the background consumer that records them.
package queue

// Queue names, one per event type.
const (
	QueueBookingConfirmed = "booking.confirmed"
	QueueBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a booking is paid or cancelled. It carries
// enough for downstream consumers to log or notify without calling back
// into the front end.
type BookingEvent struct {
	Type       string   `json:"type"`
	BookingID  string   `json:"booking_id"`
	HoldID     string   `json:"hold_id,omitempty"`
	UserID     string   `json:"user_id,omitempty"`
	ShowtimeID string   `json:"showtime_id,omitempty"`
	MovieTitle string   `json:"movie_title,omitempty"`
	CinemaName string   `json:"cinema_name,omitempty"`
	Seats      []string `json:"seats"`
	TotalPrice int64    `json:"total_price"`
	PaymentID  string   `json:"payment_id,omitempty"`
	OccurredAt string   `json:"occurred_at"`
}
