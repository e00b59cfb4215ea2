package model

import "time"

// Placeholder values used when the backend omits showtime fields.
const (
	DefaultCinemaName = "CineBook Cinema"
	DefaultRoom       = "Cinema 1"
	DefaultMovieTitle = "Phim Đã Chọn"
	DefaultShowTime   = "19:00:00"
	DefaultFormat     = "2D Phụ Đề"
	DefaultAgeRating  = "P"
	DefaultPoster     = "https://images.unsplash.com/photo-1489599849927-2ee91cede3ba?w=300&h=450&fit=crop"
	DefaultPrice      = Amount(75000)
)

// Showtime describes one screening. The movie and theater blocks are
// optional; Enrich flattens them into the top-level display fields.
type Showtime struct {
	ID            ID       `json:"id"`
	MovieID       ID       `json:"movie_id,omitempty"`
	MovieTitle    string   `json:"movie_title,omitempty"`
	Title         string   `json:"title,omitempty"`
	MoviePoster   string   `json:"movie_poster,omitempty"`
	PosterURL     string   `json:"poster_url,omitempty"`
	MovieBackdrop string   `json:"movie_backdrop,omitempty"`
	Movie         *Movie   `json:"movie,omitempty"`
	Theater       *Theater `json:"theater,omitempty"`
	CinemaName    string   `json:"cinema_name,omitempty"`
	CinemaAddress string   `json:"cinema_address,omitempty"`
	Room          string   `json:"room,omitempty"`
	ShowDate      string   `json:"show_date,omitempty"`
	ShowTime      string   `json:"show_time,omitempty"`
	StartTime     string   `json:"start_time,omitempty"`
	Format        string   `json:"format,omitempty"`
	AgeRating     string   `json:"age_rating,omitempty"`
	Price         Amount   `json:"price,omitempty"`
}

// Enrich copies nested movie and theater details into the flat fields.
func (s *Showtime) Enrich() {
	if m := s.Movie; m != nil {
		if m.ID != "" {
			s.MovieID = m.ID
		}
		s.MovieTitle = m.Title
		if s.MovieTitle == "" {
			s.MovieTitle = "Phim"
		}
		s.MoviePoster = m.PosterURL
		s.MovieBackdrop = m.BackdropURL
	}
	if t := s.Theater; t != nil {
		s.CinemaName = t.Name
		if s.CinemaName == "" {
			s.CinemaName = DefaultCinemaName
		}
		s.CinemaAddress = t.Location
	}
}

// ApplyMovie fills display fields from a separately fetched movie.
func (s *Showtime) ApplyMovie(m Movie) {
	if m.Title == "" {
		return
	}
	s.MovieTitle = m.Title
	s.MoviePoster = m.PosterURL
	s.MovieBackdrop = m.BackdropURL
}

// ApplyListDefaults is the reshaping done for showtime listings: a default
// cinema name and an ISO start_time derived from show_date and show_time.
func (s *Showtime) ApplyListDefaults(today time.Time) {
	if s.CinemaName == "" {
		s.CinemaName = DefaultCinemaName
	}
	if s.ShowTime != "" && s.StartTime == "" {
		date := s.ShowDate
		if date == "" {
			date = today.Format("2006-01-02")
		}
		s.StartTime = date + "T" + s.ShowTime
	}
}

// PlaceholderShowtime is shown when the backend has no record of id.
func PlaceholderShowtime(id ID, today time.Time) Showtime {
	return Showtime{
		ID:          id,
		MovieID:     id,
		MovieTitle:  DefaultMovieTitle,
		MoviePoster: DefaultPoster,
		CinemaName:  DefaultCinemaName,
		Room:        DefaultRoom,
		ShowDate:    today.Format("2006-01-02"),
		ShowTime:    DefaultShowTime,
		Format:      DefaultFormat,
		AgeRating:   DefaultAgeRating,
		Price:       DefaultPrice,
	}
}

// DisplayTitle prefers the flattened movie title over the raw title.
func (s Showtime) DisplayTitle() string {
	if s.MovieTitle != "" {
		return s.MovieTitle
	}
	if s.Title != "" {
		return s.Title
	}
	return "Phim"
}

// DisplayPoster prefers the flattened movie poster over the raw poster url.
func (s Showtime) DisplayPoster() string {
	if s.MoviePoster != "" {
		return s.MoviePoster
	}
	return s.PosterURL
}
