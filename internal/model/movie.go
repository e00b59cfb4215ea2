package model

// Movie is a catalog entry as returned by the movie service.
type Movie struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Duration    int     `json:"duration,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	AgeRating   string  `json:"age_rating,omitempty"`
	PosterURL   string  `json:"poster_url,omitempty"`
	BackdropURL string  `json:"backdrop_url,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// Theater is the venue block some showtime payloads embed.
type Theater struct {
	ID       ID     `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
}
