package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultLogPath is where consumed booking events are appended.
const DefaultLogPath = "logs/booking.log"

// StartBookingConsumer consumes the booking.confirmed and booking.cancelled
// queues and appends one line per event to logPath. It reconnects with
// exponential backoff and returns only when ctx is done. Messages that fail
// to process are rejected without requeue.
func StartBookingConsumer(ctx context.Context, url, logPath string) error {
	if logPath == "" {
		logPath = DefaultLogPath
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warnf("booking-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, logPath)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warnf("booking-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, logPath string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warnf("booking-consumer: set QoS failed: %v", err)
	}

	// forwarders stop with the loop, whichever way it returns
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	merged := make(chan amqp.Delivery)
	closed := make(chan string, 2)
	for _, name := range []string{QueueBookingConfirmed, QueueBookingCancelled} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		go forward(loopCtx, name, msgs, merged, closed)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case name := <-closed:
			return fmt.Errorf("deliveries channel for %s closed", name)
		case d := <-merged:
			if err := handleMessage(d.Body, logPath); err != nil {
				log.Warnf("booking-consumer: handle message failed: %v", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// forward copies deliveries from one queue into merged until the queue's
// channel closes, which it reports on closed, or ctx is done.
func forward(ctx context.Context, name string, msgs <-chan amqp.Delivery, merged chan<- amqp.Delivery, closed chan<- string) {
	for d := range msgs {
		select {
		case merged <- d:
		case <-ctx.Done():
			return
		}
	}
	select {
	case closed <- name:
	case <-ctx.Done():
	}
}

func handleMessage(body []byte, logPath string) error {
	var ev BookingEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	line, err := formatLine(ev)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

var eventVerbs = map[string]string{
	QueueBookingConfirmed: "Booking confirmed",
	QueueBookingCancelled: "Booking cancelled",
}

// formatLine renders ev as a single human-friendly log line.
func formatLine(ev BookingEvent) (string, error) {
	verb, ok := eventVerbs[ev.Type]
	if !ok {
		return "", fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.BookingID == "" {
		return "", errors.New("event without booking_id")
	}
	seats := fmt.Sprintf("[%s]", strings.Join(ev.Seats, ","))
	user := ev.UserID
	if user == "" {
		user = "guest"
	}
	line := fmt.Sprintf("[%s] %s | booking_id=%s | user_id=%s | showtime_id=%s | cinema=%q | movie=%q | total=%d VND | seats=%s",
		ev.OccurredAt, verb, ev.BookingID, user, ev.ShowtimeID, ev.CinemaName, ev.MovieTitle, ev.TotalPrice, seats)
	if ev.PaymentID != "" {
		line += " | payment_id=" + ev.PaymentID
	}
	return line + "\n", nil
}
