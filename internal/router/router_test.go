package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook-web/internal/booking"
	"github.com/iliyamo/cinebook-web/internal/config"
	"github.com/iliyamo/cinebook-web/internal/errmsg"
	"github.com/iliyamo/cinebook-web/internal/gateway"
	"github.com/iliyamo/cinebook-web/internal/handler"
	"github.com/iliyamo/cinebook-web/internal/service"
	"github.com/iliyamo/cinebook-web/internal/session"
)

// fakeBackend answers the few gateway paths the page flows touch.
type fakeBackend struct {
	logouts atomic.Int32
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/auth/token":
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Incorrect username or password"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok-1","token_type":"bearer","user":{"id":7,"email":"an@example.vn","full_name":"An"}}`)
	case r.URL.Path == "/api/auth/logout":
		f.logouts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	case r.URL.Path == "/api/movies/showtimes/5":
		_, _ = io.WriteString(w, `{"id":5,"movie_title":"Dune","cinema_name":"CGV Vincom","room":"Cinema 3","show_date":"2030-01-01","show_time":"20:00:00","price":75000}`)
	case r.URL.Path == "/api/movies/showtimes/5/available-seats":
		_, _ = io.WriteString(w, `{"data":[{"id":37,"status":"available"},{"id":38,"status":"available"}]}`)
	case r.URL.Path == "/api/bookings/bookings":
		_, _ = io.WriteString(w, `[]`)
	case r.URL.Path == "/api/notifications/notifications/unread-count":
		_, _ = io.WriteString(w, `{"count":3}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not found"}`)
	}
}

type browser struct {
	t    *testing.T
	base string
	http *http.Client
}

func newApp(t *testing.T) (*browser, *fakeBackend) {
	t.Helper()
	be := &fakeBackend{}
	api := httptest.NewServer(be)
	t.Cleanup(api.Close)

	client := gateway.New(config.GatewayConfig{BaseURL: api.URL, Timeout: 2 * time.Second}, nil)
	msgs := errmsg.New("vi")
	sessions := session.NewManager(session.NewMemoryStore(), config.SessionConfig{
		Secret: "router-test-secret-router-test-s",
		Cookie: "cb_test",
		TTL:    time.Hour,
	})
	bookings := booking.NewService(client.Movies(), client.Bookings(), booking.Options{Payments: client.Payments()})

	e := New(Deps{Sessions: sessions, Msgs: msgs}, Handlers{
		Auth:          handler.NewAuthHandler(service.NewAuthService(client.Auth()), msgs),
		Browse:        handler.NewBrowseHandler(service.NewBrowseService(client.Movies()), msgs),
		Booking:       handler.NewBookingHandler(bookings, msgs),
		Notifications: handler.NewNotificationHandler(client.Notifications(), msgs),
	})
	e.Logger.SetOutput(io.Discard)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: srv.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, be
}

func (b *browser) do(req *http.Request) (*http.Response, map[string]any) {
	b.t.Helper()
	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(b.t, json.Unmarshal(body, &out))
	}
	return resp, out
}

func (b *browser) get(path string, hdr ...string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	return b.do(req)
}

func (b *browser) postForm(path string, form url.Values) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postJSON(path, body string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(body))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return b.do(req)
}

func (b *browser) login() {
	b.t.Helper()
	resp, _ := b.postForm("/login", url.Values{"email": {"an@example.vn"}, "password": {"secret1"}})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
}

func flash(page map[string]any) map[string]any {
	f, _ := page["flash"].(map[string]any)
	return f
}

func TestHealthz(t *testing.T) {
	b, _ := newApp(t)
	resp, err := b.http.Get(b.base + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestGuardRedirectsGuestsAndReturnsAfterLogin(t *testing.T) {
	b, _ := newApp(t)

	resp, _ := b.get("/bookings?filter=upcoming")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, page := b.get("/login")
	assert.Equal(t, "auth.login", page["view"])
	assert.Equal(t, errmsg.New("vi").Text(errmsg.CodeLoginRequired), flash(page)["error"])

	resp, _ = b.postForm("/login", url.Values{"email": {"an@example.vn"}, "password": {"secret1"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/bookings?filter=upcoming", resp.Header.Get("Location"))

	_, page = b.get("/bookings?filter=upcoming")
	assert.Equal(t, "booking.my", page["view"])
	assert.Equal(t, true, page["is_authenticated"])
	assert.Equal(t, "upcoming", page["filter"])
	user := page["current_user"].(map[string]any)
	assert.Equal(t, "An", user["full_name"])
}

func TestGuardAnswersScriptsWith401(t *testing.T) {
	b, _ := newApp(t)
	resp, body := b.get("/notifications/unread-count", "X-Requested-With", "XMLHttpRequest")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body["message"])
}

func TestLoginFailureFlashesClassifiedMessage(t *testing.T) {
	b, _ := newApp(t)
	resp, _ := b.postForm("/login", url.Values{"email": {"an@example.vn"}, "password": {"wrong-pass"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	_, page := b.get("/login")
	errs := flash(page)["errors"].(map[string]any)
	assert.Equal(t, errmsg.New("vi").Text(errmsg.CodeInvalidCredentials), errs["email"])
	old := flash(page)["old"].(map[string]any)
	assert.Equal(t, "an@example.vn", old["email"])
	assert.Equal(t, false, page["is_authenticated"])
}

func TestLoginValidationDoesNotReachBackend(t *testing.T) {
	b, _ := newApp(t)
	resp, _ := b.postForm("/login", url.Values{"email": {"not-an-email"}, "password": {"123"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, page := b.get("/login")
	errs := flash(page)["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestLogoutClearsSessionWhenBackendFails(t *testing.T) {
	b, be := newApp(t)
	b.login()

	resp, _ := b.postForm("/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.EqualValues(t, 1, be.logouts.Load())

	resp, _ = b.get("/profile")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestBookingFlowHoldStorePayTicketCancel(t *testing.T) {
	b, _ := newApp(t)
	b.login()

	_, page := b.get("/booking/seats/5")
	assert.Equal(t, "booking.seats", page["view"])
	assert.Equal(t, "Dune", page["showtime"].(map[string]any)["movie_title"])
	assert.Len(t, page["seats"], 2)

	// no hold yet
	resp, _ := b.get("/booking/confirm")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/movies", resp.Header.Get("Location"))

	resp, body := b.postJSON("/booking/hold-seats", `{"showtime_id":5,"seat_ids":[37,38,38]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "/booking/confirm", body["redirect"])

	_, page = b.get("/booking/confirm")
	assert.Equal(t, "booking.confirm", page["view"])
	assert.EqualValues(t, 150000, page["total_price"])
	seats := page["selected_seats"].([]any)
	require.Len(t, seats, 2)
	assert.Equal(t, "D1", seats[0].(map[string]any)["code"])
	assert.True(t, strings.HasPrefix(page["hold_id"].(string), "hold_"))

	resp, _ = b.postForm("/booking/store", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	payURL := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(payURL, "/payment/BK"), payURL)
	id := strings.TrimPrefix(payURL, "/payment/")

	_, page = b.get(payURL)
	assert.Equal(t, "payment.show", page["view"])
	assert.NotEmpty(t, page["payment_methods"])

	resp, _ = b.get("/bookings/" + id + "/ticket")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/bookings/"+id, resp.Header.Get("Location"))
	_, page = b.get("/bookings/" + id)
	assert.Equal(t, "pending", page["booking"].(map[string]any)["status"])

	resp, _ = b.postForm(payURL, url.Values{"payment_method": {"momo"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, payURL+"/success", resp.Header.Get("Location"))

	_, page = b.get(payURL + "/success")
	bk := page["booking"].(map[string]any)
	assert.Equal(t, "confirmed", bk["status"])
	assert.Equal(t, "momo", bk["payment_method"])
	assert.NotEmpty(t, flash(page)["success"])

	resp, page = b.get("/bookings/" + id + "/ticket")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "booking.ticket", page["view"])

	_, page = b.get("/payment/history")
	assert.Len(t, page["payments"], 1)

	// the hold is spent once paid
	resp, _ = b.postForm("/booking/store", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/movies", resp.Header.Get("Location"))

	resp, _ = b.postForm("/bookings/"+id+"/cancel", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/bookings", resp.Header.Get("Location"))

	_, page = b.get("/bookings?filter=cancelled")
	list := page["bookings"].([]any)
	require.Len(t, list, 1)
	assert.EqualValues(t, 150000, list[0].(map[string]any)["total_price"])
}

func TestHoldWithoutSeatsIsRejected(t *testing.T) {
	b, _ := newApp(t)
	b.login()
	resp, body := b.postJSON("/booking/hold-seats", `{"showtime_id":5,"seat_ids":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestPaymentRequiresMethod(t *testing.T) {
	b, _ := newApp(t)
	b.login()
	_, _ = b.postJSON("/booking/hold-seats", `{"showtime_id":5,"seat_ids":[1]}`)
	resp, _ := b.postForm("/booking/store", nil)
	payURL := resp.Header.Get("Location")

	resp, _ = b.postForm(payURL, url.Values{})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, payURL, resp.Header.Get("Location"))
	_, page := b.get(payURL)
	errs := flash(page)["errors"].(map[string]any)
	assert.Contains(t, errs, "payment_method")
}

func TestUnknownPaymentRedirectsToMovies(t *testing.T) {
	b, _ := newApp(t)
	b.login()
	resp, _ := b.get("/payment/BKMISSING")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/movies", resp.Header.Get("Location"))
}

func TestUnreadCountForSignedInUser(t *testing.T) {
	b, _ := newApp(t)
	b.login()
	resp, body := b.get("/notifications/unread-count", "Accept", "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 3, body["count"])
}
