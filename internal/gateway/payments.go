package gateway

import (
	"context"
	"net/http"
)

type PaymentAPI struct{ c *Client }

func (c *Client) Payments() PaymentAPI { return PaymentAPI{c: c} }

func (p PaymentAPI) Process(ctx context.Context, creds Credentials, payload any) Result {
	return p.c.Do(ctx, creds, Request{Method: http.MethodPost, Path: p.c.Endpoint("payments.process"), Body: payload, Auth: true})
}

func (p PaymentAPI) Get(ctx context.Context, creds Credentials, id string) Result {
	return p.c.Do(ctx, creds, Request{Method: http.MethodGet, Path: p.c.Endpoint("payments.detail", id), Auth: true})
}

func (p PaymentAPI) Verify(ctx context.Context, creds Credentials, id string) Result {
	return p.c.Do(ctx, creds, Request{Method: http.MethodGet, Path: p.c.Endpoint("payments.verify", id), Auth: true})
}

// Methods is public.
func (p PaymentAPI) Methods(ctx context.Context) Result {
	return p.c.Do(ctx, nil, Request{Method: http.MethodGet, Path: p.c.Endpoint("payments.methods")})
}

func (p PaymentAPI) History(ctx context.Context, creds Credentials) Result {
	return p.c.Do(ctx, creds, Request{Method: http.MethodGet, Path: p.c.Endpoint("payments.history"), Auth: true})
}

func (p PaymentAPI) Refund(ctx context.Context, creds Credentials, id, reason string) Result {
	return p.c.Do(ctx, creds, Request{
		Method: http.MethodPost,
		Path:   p.c.Endpoint("payments.refund", id),
		Body:   map[string]string{"reason": reason},
		Auth:   true,
	})
}
