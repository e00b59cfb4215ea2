// Package session holds per-browser state between requests. A Session is
// loaded at the start of each request, mutated by handlers through typed
// accessors and written back to its Store when the response is sent.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/cinebook-web/internal/model"
)

// Well-known keys.
const (
	KeyAuthToken       = "auth_token"
	KeyUser            = "user"
	KeyCurrentShowtime = "current_showtime"
	KeyBookingData     = "booking_data"
	KeyCurrentBooking  = "current_booking"
	KeyBookingHistory  = "booking_history"
	KeyBookingID       = "booking_id"
	KeyIntended        = "url.intended"

	keyFlash = "_flash"
)

// Session is not safe for concurrent use; it belongs to one request.
type Session struct {
	id      string
	prevID  string
	values  map[string]json.RawMessage
	flashes map[string]json.RawMessage
	isNew   bool
	dirty   bool
}

// New returns an empty session with a fresh id.
func New() *Session {
	return &Session{id: uuid.NewString(), values: map[string]json.RawMessage{}, isNew: true}
}

func (s *Session) ID() string  { return s.id }
func (s *Session) IsNew() bool { return s.isNew }
func (s *Session) Dirty() bool { return s.dirty }

// Regenerate moves the data to a new id so a pre-login id cannot be reused.
func (s *Session) Regenerate() {
	if s.prevID == "" && !s.isNew {
		s.prevID = s.id
	}
	s.id = uuid.NewString()
	s.dirty = true
}

// Get decodes the value under key into v and reports whether it existed.
func (s *Session) Get(key string, v any) bool {
	raw, ok := s.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (s *Session) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Put stores v under key.
func (s *Session) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	s.values[key] = raw
	s.dirty = true
	return nil
}

// Forget removes keys.
func (s *Session) Forget(keys ...string) {
	for _, k := range keys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			s.dirty = true
		}
	}
}

// Flush removes everything, pending flashes included.
func (s *Session) Flush() {
	s.values = map[string]json.RawMessage{}
	s.flashes = nil
	s.dirty = true
}

// Token implements gateway.Credentials.
func (s *Session) Token() string {
	var t string
	s.Get(KeyAuthToken, &t)
	return t
}

// ClearAuth implements gateway.Credentials.
func (s *Session) ClearAuth() { s.Forget(KeyAuthToken, KeyUser) }

func (s *Session) SetToken(token string) { _ = s.Put(KeyAuthToken, token) }

func (s *Session) User() (model.User, bool) {
	var u model.User
	ok := s.Get(KeyUser, &u)
	return u, ok
}

func (s *Session) SetUser(u model.User) { _ = s.Put(KeyUser, u) }

// Authenticated is a presence check only; the token is not validated.
func (s *Session) Authenticated() bool { return s.Token() != "" }

// SetIntended remembers where to send the user after login.
func (s *Session) SetIntended(url string) { _ = s.Put(KeyIntended, url) }

// PullIntended returns and forgets the intended URL, or def.
func (s *Session) PullIntended(def string) string {
	var u string
	if s.Get(KeyIntended, &u) && u != "" {
		s.Forget(KeyIntended)
		return u
	}
	return def
}

// Flash stores a message for the next request only.
func (s *Session) Flash(key string, v any) {
	pending := map[string]json.RawMessage{}
	s.Get(keyFlash, &pending)
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	pending[key] = raw
	_ = s.Put(keyFlash, pending)
}

// Flashes returns the messages flashed by the previous request.
func (s *Session) Flashes() map[string]any {
	out := make(map[string]any, len(s.flashes))
	for k, raw := range s.flashes {
		var v any
		if json.Unmarshal(raw, &v) == nil {
			out[k] = v
		}
	}
	return out
}

// ageFlash makes the stored flash bag readable for this request and
// removes it from storage.
func (s *Session) ageFlash() {
	s.flashes = nil
	if s.Get(keyFlash, &s.flashes) {
		s.Forget(keyFlash)
	}
}

func (s *Session) encode() ([]byte, error) { return json.Marshal(s.values) }

func decode(id string, data []byte) (*Session, error) {
	values := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("session: decode %s: %w", id, err)
		}
	}
	return &Session{id: id, values: values}, nil
}
