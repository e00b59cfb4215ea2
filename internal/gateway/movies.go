package gateway

import (
	"context"
	"net/http"
	"net/url"
)

// MovieAPI covers movies, showtimes and seat maps. These endpoints are
// public, so no token is sent.
type MovieAPI struct{ c *Client }

func (c *Client) Movies() MovieAPI { return MovieAPI{c: c} }

func (m MovieAPI) get(ctx context.Context, path string, q url.Values) Result {
	return m.c.Do(ctx, nil, Request{Method: http.MethodGet, Path: path, Query: q})
}

// List forwards filters (genre, status, limit, featured) as query params.
func (m MovieAPI) List(ctx context.Context, filters url.Values) Result {
	return m.get(ctx, m.c.Endpoint("movies.list"), filters)
}

func (m MovieAPI) Get(ctx context.Context, id string) Result {
	return m.get(ctx, m.c.Endpoint("movies.detail", id), nil)
}

func (m MovieAPI) Search(ctx context.Context, query, genre string) Result {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if genre != "" {
		q.Set("genre", genre)
	}
	return m.get(ctx, m.c.Endpoint("movies.search"), q)
}

func (m MovieAPI) NowShowing(ctx context.Context) Result {
	return m.get(ctx, m.c.Endpoint("movies.now_showing"), url.Values{"status": {"now_showing"}})
}

func (m MovieAPI) ComingSoon(ctx context.Context) Result {
	return m.get(ctx, m.c.Endpoint("movies.coming_soon"), url.Values{"status": {"coming_soon"}})
}

// Showtimes lists screenings of a movie, optionally for one date.
func (m MovieAPI) Showtimes(ctx context.Context, movieID, date string) Result {
	q := url.Values{"movie_id": {movieID}}
	if date != "" {
		q.Set("show_date", date)
	}
	return m.get(ctx, m.c.Endpoint("showtimes.by_movie"), q)
}

func (m MovieAPI) Showtime(ctx context.Context, id string) Result {
	return m.get(ctx, m.c.Endpoint("showtimes.detail", id), nil)
}

func (m MovieAPI) Seats(ctx context.Context, showtimeID string) Result {
	return m.get(ctx, m.c.Endpoint("showtimes.available_seats", showtimeID), nil)
}
