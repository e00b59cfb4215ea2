package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/iliyamo/cinebook-web/internal/gateway"
	"github.com/iliyamo/cinebook-web/internal/model"
)

var ErrMovieNotFound = errors.New("movie not found")

// MovieBackend is the movie part of the gateway.
type MovieBackend interface {
	List(ctx context.Context, filters url.Values) gateway.Result
	Get(ctx context.Context, id string) gateway.Result
	Search(ctx context.Context, query, genre string) gateway.Result
	NowShowing(ctx context.Context) gateway.Result
	ComingSoon(ctx context.Context) gateway.Result
	Showtimes(ctx context.Context, movieID, date string) gateway.Result
	Showtime(ctx context.Context, id string) gateway.Result
	Seats(ctx context.Context, showtimeID string) gateway.Result
}

// BrowseService reads the catalog. Failed listings degrade to empty lists
// so browse pages always render.
type BrowseService struct {
	api MovieBackend
	now func() time.Time
}

func NewBrowseService(api MovieBackend) *BrowseService {
	return &BrowseService{api: api, now: time.Now}
}

// Listing kinds accepted by Movies.
const (
	ListAll        = "all"
	ListNowShowing = "now-showing"
	ListComingSoon = "coming-soon"
)

type HomeView struct {
	NowShowing []model.Movie `json:"now_showing"`
	ComingSoon []model.Movie `json:"coming_soon"`
}

func (b *BrowseService) Home(ctx context.Context) HomeView {
	return HomeView{
		NowShowing: movieList(b.api.NowShowing(ctx)),
		ComingSoon: movieList(b.api.ComingSoon(ctx)),
	}
}

// Movies lists one of the ListAll, ListNowShowing or ListComingSoon
// kinds; unknown kinds list everything with filters applied.
func (b *BrowseService) Movies(ctx context.Context, kind string, filters url.Values) []model.Movie {
	switch kind {
	case ListNowShowing:
		return movieList(b.api.NowShowing(ctx))
	case ListComingSoon:
		return movieList(b.api.ComingSoon(ctx))
	default:
		return movieList(b.api.List(ctx, filters))
	}
}

func (b *BrowseService) Search(ctx context.Context, query, genre string) []model.Movie {
	return movieList(b.api.Search(ctx, query, genre))
}

type MovieDetail struct {
	Movie     model.Movie      `json:"movie"`
	Showtimes []model.Showtime `json:"showtimes"`
}

// Movie returns the movie with all its showtimes, or ErrMovieNotFound.
func (b *BrowseService) Movie(ctx context.Context, id string) (MovieDetail, error) {
	res := b.api.Get(ctx, id)
	var m model.Movie
	if !res.Success || res.Decode(&m) != nil {
		return MovieDetail{}, ErrMovieNotFound
	}
	st, _ := b.Showtimes(ctx, id, "")
	return MovieDetail{Movie: m, Showtimes: st}, nil
}

// Showtimes lists screenings of a movie with the listing defaults applied.
// The gateway result is returned alongside for callers that relay it.
func (b *BrowseService) Showtimes(ctx context.Context, movieID, date string) ([]model.Showtime, gateway.Result) {
	res := b.api.Showtimes(ctx, movieID, date)
	out := []model.Showtime{}
	if !res.Success {
		return out, res
	}
	if err := res.Decode(&out); err != nil {
		var wrapped struct {
			Showtimes []model.Showtime `json:"showtimes"`
		}
		if json.Unmarshal(res.Data, &wrapped) != nil {
			return []model.Showtime{}, res
		}
		out = wrapped.Showtimes
		if out == nil {
			out = []model.Showtime{}
		}
	}
	today := b.now()
	for i := range out {
		out[i].ApplyListDefaults(today)
	}
	if data, err := json.Marshal(out); err == nil {
		res.Data = data
	}
	return out, res
}

// Seats relays the seat map of a showtime untouched.
func (b *BrowseService) Seats(ctx context.Context, showtimeID string) gateway.Result {
	return b.api.Seats(ctx, showtimeID)
}

// movieList decodes a bare array or one wrapped under movies or items.
func movieList(res gateway.Result) []model.Movie {
	out := []model.Movie{}
	if !res.Success {
		return out
	}
	if err := res.Decode(&out); err == nil {
		return out
	}
	var wrapped struct {
		Movies []model.Movie `json:"movies"`
		Items  []model.Movie `json:"items"`
	}
	if json.Unmarshal(res.Data, &wrapped) != nil {
		return []model.Movie{}
	}
	if len(wrapped.Movies) > 0 {
		return wrapped.Movies
	}
	if wrapped.Items != nil {
		return wrapped.Items
	}
	return []model.Movie{}
}
