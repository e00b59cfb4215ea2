package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Endpoints is the backend path table, grouped by service. Paths may carry
// {placeholders}; Path substitutes them in order.
type Endpoints map[string]map[string]string

// DefaultEndpoints returns the paths exposed by the API gateway.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		"auth": {
			"login":           "/api/auth/token",
			"register":        "/api/auth/register",
			"logout":          "/api/auth/logout",
			"me":              "/api/auth/verify",
			"refresh":         "/api/auth/refresh",
			"update_profile":  "/api/auth/profile",
			"change_password": "/api/auth/change-password",
		},
		"movies": {
			"list":        "/api/movies/movies",
			"detail":      "/api/movies/movies/{id}",
			"search":      "/api/movies/movies",
			"now_showing": "/api/movies/movies",
			"coming_soon": "/api/movies/movies",
		},
		"showtimes": {
			"list":            "/api/movies/showtimes",
			"by_movie":        "/api/movies/showtimes",
			"detail":          "/api/movies/showtimes/{id}",
			"available_seats": "/api/movies/showtimes/{showtime_id}/available-seats",
		},
		"bookings": {
			"create":        "/api/bookings/book",
			"list":          "/api/bookings/bookings",
			"detail":        "/api/bookings/bookings/{id}",
			"cancel":        "/api/bookings/bookings/{id}/cancel",
			"hold_seats":    "/api/bookings/seats/hold",
			"release_seats": "/api/bookings/seats/release",
			"confirm":       "/api/bookings/bookings/{id}/confirm",
		},
		"payments": {
			"process": "/api/payments/process",
			"detail":  "/api/payments/payments/{id}",
			"verify":  "/api/payments/payments/{id}/verify",
			"methods": "/api/payments/methods",
			"history": "/api/payments/payments",
			"refund":  "/api/payments/payments/{id}/refund",
		},
		"notifications": {
			"list":          "/api/notifications/notifications",
			"unread_count":  "/api/notifications/notifications/unread-count",
			"mark_read":     "/api/notifications/notifications/{id}/read",
			"mark_all_read": "/api/notifications/notifications/read-all",
			"delete":        "/api/notifications/notifications/{id}",
		},
	}
}

// LoadEndpoints returns the default table with overrides from the YAML file
// at path merged on top. An empty path means no overrides.
//
//	bookings:
//	  create: /api/v2/bookings
func LoadEndpoints(path string) (Endpoints, error) {
	eps := DefaultEndpoints()
	if path == "" {
		return eps, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}
	var overrides Endpoints
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("parse endpoints file %s: %w", path, err)
	}
	for group, paths := range overrides {
		if eps[group] == nil {
			eps[group] = map[string]string{}
		}
		for name, p := range paths {
			if !strings.HasPrefix(p, "/") {
				return nil, fmt.Errorf("endpoint %s.%s: path %q must start with /", group, name, p)
			}
			eps[group][name] = p
		}
	}
	return eps, nil
}

// Path resolves "group.name" and fills each {placeholder} with the next
// argument, path-escaped. Unknown keys panic: they are programming errors.
func (e Endpoints) Path(key string, args ...string) string {
	group, name, _ := strings.Cut(key, ".")
	tmpl, ok := e[group][name]
	if !ok {
		panic("config: unknown endpoint " + key)
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			break
		}
		b.WriteString(tmpl[:open])
		if len(args) > 0 {
			b.WriteString(url.PathEscape(args[0]))
			args = args[1:]
		}
		tmpl = tmpl[open+end+1:]
	}
	b.WriteString(tmpl)
	return b.String()
}
