// Package gateway talks to the backend API gateway. Every call goes through
// Client.Do, which attaches the bearer token and tracing headers, retries
// transient failures and normalizes the response into a Result.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinebook-web/internal/config"
)

// ConnectionError is the message used for every transport failure.
const ConnectionError = "Connection error. Please try again."

const (
	genericError = "An error occurred"
	maxBodyBytes = 4 << 20
)

// Credentials is the session-side view the client needs: the bearer token
// to attach and a way to drop it when the backend answers 401.
type Credentials interface {
	Token() string
	ClearAuth()
}

// Request describes one backend call. Form takes precedence over Body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   url.Values
	Auth   bool // attach the bearer token when one is present
}

// Result is the normalized outcome of a backend call. Transport failures and
// HTTP errors are both reported here; Do never returns a Go error.
type Result struct {
	Success       bool
	Data          json.RawMessage
	Error         string
	Errors        map[string]any
	Status        int
	Transport     bool
	CorrelationID string
}

// Decode unmarshals the payload into v.
func (r Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return errors.New("gateway: empty payload")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("gateway: decode payload: %w", err)
	}
	return nil
}

// MarshalJSON renders the envelope scripts on the pages expect:
// success and data, or success, error, errors and status.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Success {
		data := r.Data
		if len(data) == 0 {
			data = json.RawMessage("[]")
		}
		return json.Marshal(struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
			Status  int             `json:"status,omitempty"`
		}{true, data, r.Status})
	}
	errs := r.Errors
	if errs == nil {
		errs = map[string]any{}
	}
	return json.Marshal(struct {
		Success bool           `json:"success"`
		Error   string         `json:"error"`
		Errors  map[string]any `json:"errors"`
		Status  int            `json:"status"`
	}{false, r.Message(), errs, r.Status})
}

// Message returns the error text, or a generic one for failures without it.
func (r Result) Message() string {
	if r.Success {
		return ""
	}
	if r.Error != "" {
		return r.Error
	}
	return genericError
}

// Client is safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	endpoints config.Endpoints
	retries   int
	backoff   time.Duration
	logger    *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

// WithLogger replaces the request logger.
func WithLogger(l *log.Logger) Option { return func(c *Client) { c.logger = l } }

// New builds a client for the gateway described by cfg.
func New(cfg config.GatewayConfig, eps config.Endpoints, opts ...Option) *Client {
	if eps == nil {
		eps = config.DefaultEndpoints()
	}
	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		http:      &http.Client{Timeout: cfg.Timeout},
		endpoints: eps,
		retries:   cfg.RetryTimes,
		backoff:   cfg.RetryBackoff,
		logger:    log.New("gateway"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint resolves a path from the endpoint table.
func (c *Client) Endpoint(key string, args ...string) string {
	return c.endpoints.Path(key, args...)
}

type ctxKey int

const (
	userAgentKey ctxKey = iota
	correlationKey
)

// WithUserAgent forwards the browser's User-Agent on outbound calls.
func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey, ua)
}

// WithCorrelationID reuses id as X-Correlation-ID instead of a fresh uuid.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey, id)
}

// Do performs req, retrying transport errors and 502/503/504 responses.
func (c *Client) Do(ctx context.Context, creds Credentials, req Request) Result {
	cid, _ := ctx.Value(correlationKey).(string)
	if cid == "" {
		cid = uuid.NewString()
	}

	var (
		payload     []byte
		contentType string
	)
	switch {
	case req.Form != nil:
		payload = []byte(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return Result{Error: genericError, CorrelationID: cid}
		}
		payload = b
		contentType = "application/json"
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	token := ""
	if req.Auth && creds != nil {
		token = creds.Token()
	}

	var (
		status int
		body   []byte
		err    error
	)
	for attempt := 0; ; attempt++ {
		start := time.Now()
		status, body, err = c.send(ctx, req.Method, target, payload, contentType, token, cid)
		c.logger.Infoj(log.JSON{
			"correlation_id": cid,
			"method":         req.Method,
			"url":            target,
			"attempt":        attempt + 1,
			"status":         status,
			"latency_ms":     time.Since(start).Milliseconds(),
			"error":          errString(err),
		})
		if !retryable(status, err) || attempt >= c.retries || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(c.backoff):
		}
		if ctx.Err() != nil {
			break
		}
	}

	if err != nil {
		c.logger.Errorf("gateway %s %s [%s]: %v", req.Method, req.Path, cid, err)
		return Result{Error: ConnectionError, Transport: true, CorrelationID: cid}
	}
	res := normalize(status, body)
	res.CorrelationID = cid
	if status == http.StatusUnauthorized && creds != nil {
		creds.ClearAuth()
	}
	return res
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte, contentType, token, cid string) (int, []byte, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	hr, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return 0, nil, err
	}
	hr.Header.Set("Accept", "application/json")
	hr.Header.Set("X-Correlation-ID", cid)
	if ua, _ := ctx.Value(userAgentKey).(string); ua != "" {
		hr.Header.Set("User-Agent", ua)
	}
	if contentType != "" {
		hr.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		hr.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(hr)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func retryable(status int, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// normalize maps a raw response onto a Result. Successful bodies are
// unwrapped from a {"data": ...} envelope when present; an empty body
// becomes an empty list.
func normalize(status int, body []byte) Result {
	res := Result{Status: status, Success: status >= 200 && status < 300}
	trimmed := bytes.TrimSpace(body)
	var obj map[string]json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '{' {
		_ = json.Unmarshal(trimmed, &obj)
	}

	if res.Success {
		switch {
		case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
			res.Data = json.RawMessage("[]")
		case obj != nil && isPresent(obj["data"]):
			res.Data = obj["data"]
		default:
			res.Data = json.RawMessage(trimmed)
		}
		return res
	}

	res.Error = errorText(obj)
	if raw, ok := obj["errors"]; ok {
		var errs map[string]any
		if json.Unmarshal(raw, &errs) == nil {
			res.Errors = errs
		}
	}
	return res
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// errorText picks detail, then message, then error. A validation detail
// list contributes its msg fields.
func errorText(obj map[string]json.RawMessage) string {
	for _, k := range []string{"detail", "message", "error"} {
		raw, ok := obj[k]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(raw, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	return genericError
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
