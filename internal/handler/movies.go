package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/service"
)

// BrowseHandler serves the public catalog pages and their AJAX helpers.
type BrowseHandler struct {
	Browse *service.BrowseService
	Msgs   *errmsg.Catalog
}

func NewBrowseHandler(browse *service.BrowseService, msgs *errmsg.Catalog) *BrowseHandler {
	return &BrowseHandler{Browse: browse, Msgs: msgs}
}

// Home handles GET /.
func (h *BrowseHandler) Home(c echo.Context) error {
	home := h.Browse.Home(c.Request().Context())
	return page(c, "home", echo.Map{
		"now_showing": home.NowShowing,
		"coming_soon": home.ComingSoon,
	})
}

// Search handles GET /search?q=&genre=.
func (h *BrowseHandler) Search(c echo.Context) error {
	q, genre := c.QueryParam("q"), c.QueryParam("genre")
	return page(c, "search", echo.Map{
		"query":  q,
		"genre":  genre,
		"movies": h.Browse.Search(c.Request().Context(), q, genre),
	})
}

// Movies handles GET /movies?type=all|now-showing|coming-soon. Other query
// parameters are forwarded as filters.
func (h *BrowseHandler) Movies(c echo.Context) error {
	kind := c.QueryParam("type")
	if kind == "" {
		kind = service.ListAll
	}
	filters := url.Values{}
	for _, k := range []string{"genre", "status", "limit", "featured"} {
		if v := c.QueryParam(k); v != "" {
			filters.Set(k, v)
		}
	}
	return page(c, "movies.index", echo.Map{
		"movies": h.Browse.Movies(c.Request().Context(), kind, filters),
		"type":   kind,
	})
}

// NowShowing handles GET /movies/now-showing.
func (h *BrowseHandler) NowShowing(c echo.Context) error {
	return page(c, "movies.index", echo.Map{
		"movies": h.Browse.Movies(c.Request().Context(), service.ListNowShowing, nil),
		"type":   service.ListNowShowing,
		"title":  "Phim Đang Chiếu",
	})
}

// ComingSoon handles GET /movies/coming-soon.
func (h *BrowseHandler) ComingSoon(c echo.Context) error {
	return page(c, "movies.index", echo.Map{
		"movies": h.Browse.Movies(c.Request().Context(), service.ListComingSoon, nil),
		"type":   service.ListComingSoon,
		"title":  "Phim Sắp Chiếu",
	})
}

// Movie handles GET /movies/:id.
func (h *BrowseHandler) Movie(c echo.Context) error {
	detail, err := h.Browse.Movie(c.Request().Context(), c.Param("id"))
	if errors.Is(err, service.ErrMovieNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, h.Msgs.Text(errmsg.CodeMovieNotFound))
	}
	return page(c, "movies.show", echo.Map{
		"movie":     detail.Movie,
		"showtimes": detail.Showtimes,
	})
}

// Showtimes handles GET /movies/:id/showtimes?date= for the date picker.
func (h *BrowseHandler) Showtimes(c echo.Context) error {
	_, res := h.Browse.Showtimes(c.Request().Context(), c.Param("id"), c.QueryParam("date"))
	return c.JSON(http.StatusOK, res)
}

// Seats handles GET /api/showtimes/:id/seats.
func (h *BrowseHandler) Seats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Browse.Seats(c.Request().Context(), c.Param("id")))
}
