package queue

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLine(t *testing.T) {
	line, err := formatLine(BookingEvent{
		Type:       QueueBookingConfirmed,
		BookingID:  "BK0123456789ABC",
		UserID:     "7",
		ShowtimeID: "12",
		MovieTitle: "Dune",
		CinemaName: "CineBook Cinema",
		Seats:      []string{"D1", "D2"},
		TotalPrice: 150000,
		PaymentID:  "PAY0123456789ABC",
		OccurredAt: "2026-10-19T10:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, `[2026-10-19T10:00:00Z] Booking confirmed | booking_id=BK0123456789ABC | user_id=7 | showtime_id=12 | cinema="CineBook Cinema" | movie="Dune" | total=150000 VND | seats=[D1,D2] | payment_id=PAY0123456789ABC`+"\n", line)
}

func TestFormatLineGuestCancel(t *testing.T) {
	line, err := formatLine(BookingEvent{Type: QueueBookingCancelled, BookingID: "BK1"})
	require.NoError(t, err)
	assert.Contains(t, line, "Booking cancelled")
	assert.Contains(t, line, "user_id=guest")
	assert.Contains(t, line, "seats=[]")
	assert.NotContains(t, line, "payment_id")
}

func TestFormatLineRejectsBadEvents(t *testing.T) {
	_, err := formatLine(BookingEvent{Type: "booking.refunded", BookingID: "BK1"})
	assert.Error(t, err)
	_, err = formatLine(BookingEvent{Type: QueueBookingConfirmed})
	assert.Error(t, err)
}

func TestHandleMessageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	body := `{"type":"booking.confirmed","booking_id":"BK1","seats":["A1"],"total_price":75000}`

	require.NoError(t, handleMessage([]byte(body), path))
	require.NoError(t, handleMessage([]byte(body), path))
	assert.Error(t, handleMessage([]byte(`{not json`), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "total=75000 VND")
}

func TestForwardersStopWhenOneQueueCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	confirmed := make(chan amqp.Delivery, 1)
	confirmed <- amqp.Delivery{Body: []byte(`{}`)}
	cancelled := make(chan amqp.Delivery)
	close(cancelled)

	// nobody drains merged, so the confirmed forwarder blocks on it
	merged := make(chan amqp.Delivery)
	closed := make(chan string, 2)
	var wg sync.WaitGroup
	for name, msgs := range map[string]chan amqp.Delivery{QueueBookingConfirmed: confirmed, QueueBookingCancelled: cancelled} {
		wg.Add(1)
		go func(name string, msgs <-chan amqp.Delivery) {
			defer wg.Done()
			forward(ctx, name, msgs, merged, closed)
		}(name, msgs)
	}

	select {
	case name := <-closed:
		assert.Equal(t, QueueBookingCancelled, name)
	case <-time.After(time.Second):
		t.Fatal("closed queue not reported")
	}
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder still running after cancel")
	}
}
