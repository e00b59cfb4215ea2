package utils // package utils provides id generation and token helpers

import (
	"strings"

	"github.com/google/uuid"
)

// NewHoldID identifies one in-session seat hold.
func NewHoldID() string { return "hold_" + uuid.NewString() }

// NewBookingID returns "BK" followed by 13 upper-case hex characters.
func NewBookingID() string { return "BK" + shortID() }

// NewPaymentID returns "PAY" followed by 13 upper-case hex characters.
func NewPaymentID() string { return "PAY" + shortID() }

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:13])
}
