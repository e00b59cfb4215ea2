package gateway

import (
	"context"
	"net/http"
	"net/url"
)

type BookingAPI struct{ c *Client }

func (c *Client) Bookings() BookingAPI { return BookingAPI{c: c} }

type seatRequest struct {
	ShowtimeID string   `json:"showtime_id"`
	SeatIDs    []string `json:"seat_ids"`
}

func (b BookingAPI) Create(ctx context.Context, creds Credentials, payload any) Result {
	return b.c.Do(ctx, creds, Request{Method: http.MethodPost, Path: b.c.Endpoint("bookings.create"), Body: payload, Auth: true})
}

// List returns the customer's bookings; q may carry page, limit or status.
func (b BookingAPI) List(ctx context.Context, creds Credentials, q url.Values) Result {
	return b.c.Do(ctx, creds, Request{Method: http.MethodGet, Path: b.c.Endpoint("bookings.list"), Query: q, Auth: true})
}

func (b BookingAPI) Get(ctx context.Context, creds Credentials, id string) Result {
	return b.c.Do(ctx, creds, Request{Method: http.MethodGet, Path: b.c.Endpoint("bookings.detail", id), Auth: true})
}

func (b BookingAPI) Cancel(ctx context.Context, creds Credentials, id string) Result {
	return b.c.Do(ctx, creds, Request{Method: http.MethodPost, Path: b.c.Endpoint("bookings.cancel", id), Auth: true})
}

func (b BookingAPI) Hold(ctx context.Context, creds Credentials, showtimeID string, seatIDs []string) Result {
	return b.c.Do(ctx, creds, Request{
		Method: http.MethodPost,
		Path:   b.c.Endpoint("bookings.hold_seats"),
		Body:   seatRequest{ShowtimeID: showtimeID, SeatIDs: seatIDs},
		Auth:   true,
	})
}

func (b BookingAPI) Release(ctx context.Context, creds Credentials, showtimeID string, seatIDs []string) Result {
	return b.c.Do(ctx, creds, Request{
		Method: http.MethodPost,
		Path:   b.c.Endpoint("bookings.release_seats"),
		Body:   seatRequest{ShowtimeID: showtimeID, SeatIDs: seatIDs},
		Auth:   true,
	})
}

func (b BookingAPI) Confirm(ctx context.Context, creds Credentials, id, paymentID string) Result {
	return b.c.Do(ctx, creds, Request{
		Method: http.MethodPost,
		Path:   b.c.Endpoint("bookings.confirm", id),
		Body:   map[string]string{"payment_id": paymentID},
		Auth:   true,
	})
}
