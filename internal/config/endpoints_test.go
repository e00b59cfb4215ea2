package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointPathFillsAndEscapes(t *testing.T) {
	eps := DefaultEndpoints()
	assert.Equal(t, "/api/bookings/bookings/BK1/cancel", eps.Path("bookings.cancel", "BK1"))
	assert.Equal(t, "/api/movies/showtimes/a%2Fb/available-seats", eps.Path("showtimes.available_seats", "a/b"))
	assert.Equal(t, "/api/auth/token", eps.Path("auth.login"))
	assert.Panics(t, func() { eps.Path("auth.nope") })
}

func TestLoadEndpointsMergesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bookings:\n  create: /api/v2/bookings\nextra:\n  ping: /ping\n"), 0o600))

	eps, err := LoadEndpoints(path)
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/bookings", eps.Path("bookings.create"))
	assert.Equal(t, "/api/bookings/bookings", eps.Path("bookings.list"))
	assert.Equal(t, "/ping", eps.Path("extra.ping"))
}

func TestLoadEndpointsRejectsRelativePaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  login: api/token\n"), 0o600))
	_, err := LoadEndpoints(path)
	assert.Error(t, err)

	_, err = LoadEndpoints(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("API_RETRY_TIMES", "-3")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("BOOKING_DEDUPE_BY_HOLD", "yes")
	t.Setenv("API_TIMEOUT", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 0, cfg.Gateway.RetryTimes)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.True(t, cfg.Booking.DedupeByHold)
	assert.Equal(t, 15*time.Second, cfg.Gateway.Timeout)
}
