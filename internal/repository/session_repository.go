// Package repository holds the MySQL persistence used by the web front end.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinebook-web/internal/session"
)

// SessionRepo stores browser sessions in the web_sessions table. It
// satisfies session.Store.
type SessionRepo struct {
	DB  *sql.DB
	now func() time.Time
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

// Load returns the payload of a non-expired session.
func (r *SessionRepo) Load(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := r.DB.QueryRowContext(ctx,
		"SELECT payload FROM web_sessions WHERE id=? AND expires_at > ? LIMIT 1",
		id, r.now()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Save upserts the payload and pushes the expiry forward.
func (r *SessionRepo) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO web_sessions (id, payload, expires_at) VALUES (?,?,?) "+
			"ON DUPLICATE KEY UPDATE payload=VALUES(payload), expires_at=VALUES(expires_at)",
		id, data, r.now().Add(ttl))
	return err
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM web_sessions WHERE id=?", id)
	return err
}

// DeleteExpired purges rows past their expiry and returns how many went.
func (r *SessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM web_sessions WHERE expires_at <= ?", r.now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Run purges expired rows every interval until ctx is done. The database
// stays open; its owner closes it once requests have drained.
func (r *SessionRepo) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := r.DeleteExpired(ctx); err != nil {
				log.Warnf("session sweep: %v", err)
			} else if n > 0 {
				log.Debugf("session sweep removed %d", n)
			}
		}
	}
}
