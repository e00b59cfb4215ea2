package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/iliyamo/cinebook-web/internal/config"
)

const cookieIDKey = "sid"

// Manager ties the signed cookie that carries the session id to the Store
// that holds the session data.
type Manager struct {
	store   Store
	cookies *sessions.CookieStore
	name    string
	ttl     time.Duration
}

func NewManager(store Store, cfg config.SessionConfig) *Manager {
	cs := sessions.NewCookieStore([]byte(cfg.Secret))
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TTL / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, cookies: cs, name: cfg.Cookie, ttl: cfg.TTL}
}

// Start loads the session named by the request cookie. A missing, forged or
// expired cookie yields a fresh session; the returned error is then only
// informational.
func (m *Manager) Start(r *http.Request) (*Session, error) {
	gs, err := m.cookies.New(r, m.name)
	if err != nil && !errors.Is(err, http.ErrNoCookie) {
		return New(), fmt.Errorf("session cookie: %w", err)
	}
	id, _ := gs.Values[cookieIDKey].(string)
	if id == "" {
		return New(), nil
	}
	data, err := m.store.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return New(), nil
		}
		return New(), fmt.Errorf("session load: %w", err)
	}
	s, err := decode(id, data)
	if err != nil {
		return New(), err
	}
	s.ageFlash()
	return s, nil
}

// Commit persists s and refreshes the cookie. It only touches response
// headers, so it is safe to call from a before-write hook.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, s *Session) error {
	if s.prevID != "" {
		if err := m.store.Delete(ctx, s.prevID); err != nil {
			return fmt.Errorf("session delete %s: %w", s.prevID, err)
		}
		s.prevID = ""
	}
	// Untouched empty sessions are not worth a store round trip or a cookie.
	if s.isNew && len(s.values) == 0 {
		return nil
	}
	data, err := s.encode()
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, s.id, data, m.ttl); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	s.isNew = false
	s.dirty = false

	gs := sessions.NewSession(m.cookies, m.name)
	opts := *m.cookies.Options
	gs.Options = &opts
	gs.Values[cookieIDKey] = s.id
	return m.cookies.Save(r, w, gs)
}
