package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinebook-web/internal/gateway"
	"github.com/iliyamo/cinebook-web/internal/model"
	"github.com/iliyamo/cinebook-web/internal/queue"
	"github.com/iliyamo/cinebook-web/internal/session"
)

func ok(body string) gateway.Result {
	return gateway.Result{Success: true, Status: http.StatusOK, Data: json.RawMessage(body)}
}

func failed(status int, msg string) gateway.Result {
	return gateway.Result{Status: status, Error: msg}
}

type fakeCatalog struct {
	showtimes map[string]string
	movies    map[string]string
	seats     string
}

func (f fakeCatalog) Showtime(_ context.Context, id string) gateway.Result {
	if body, found := f.showtimes[id]; found {
		return ok(body)
	}
	return failed(http.StatusNotFound, "Showtime not found")
}

func (f fakeCatalog) Get(_ context.Context, id string) gateway.Result {
	if body, found := f.movies[id]; found {
		return ok(body)
	}
	return failed(http.StatusNotFound, "Movie not found")
}

func (f fakeCatalog) Seats(context.Context, string) gateway.Result {
	if f.seats == "" {
		return gateway.Result{Error: gateway.ConnectionError, Transport: true}
	}
	return ok(f.seats)
}

type mockBackend struct{ mock.Mock }

func (m *mockBackend) List(ctx context.Context, creds gateway.Credentials, q url.Values) gateway.Result {
	return m.Called(q).Get(0).(gateway.Result)
}

func (m *mockBackend) Get(ctx context.Context, creds gateway.Credentials, id string) gateway.Result {
	return m.Called(id).Get(0).(gateway.Result)
}

func (m *mockBackend) Cancel(ctx context.Context, creds gateway.Credentials, id string) gateway.Result {
	return m.Called(id).Get(0).(gateway.Result)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	return m.Called(ev).Error(0)
}

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newTestService(cat Catalog, be Backend, opts Options) *Service {
	s := NewService(cat, be, opts)
	s.now = func() time.Time { return fixedNow }
	return s
}

func ids(vs ...string) []model.ID {
	out := make([]model.ID, len(vs))
	for i, v := range vs {
		out[i] = model.ID(v)
	}
	return out
}

func TestGenerateSeatInfo(t *testing.T) {
	seats := GenerateSeatInfo(ids("37", "38"))
	require.Len(t, seats, 2)
	assert.Equal(t, "D1", seats[0].Code)
	assert.Equal(t, "D2", seats[1].SeatNumber)
	assert.Equal(t, model.SeatStandard, seats[0].Type)
	assert.Equal(t, PriceStandard, seats[1].Price)
	assert.Equal(t, model.Amount(150000), Total(seats))
}

func TestGenerateSeatInfoVIPBlock(t *testing.T) {
	cases := map[string]struct {
		code string
		vip  bool
	}{
		"40": {"D4", true},
		"45": {"D9", true},
		"46": {"D10", false},
		"39": {"D3", false},
		"64": {"F4", true},
		"76": {"G4", false},
		"4":  {"A4", false},
		"97": {"A1", false},
		"0":  {"A0", false},
		// leading digits decide the seat
		"37.0":   {"D1", false},
		"3f2a9c": {"A3", false},
	}
	for id, want := range cases {
		seat := GenerateSeatInfo(ids(id))[0]
		assert.Equal(t, want.code, seat.Code, id)
		if want.vip {
			assert.Equal(t, model.SeatVIP, seat.Type, id)
			assert.Equal(t, PriceVIP, seat.Price, id)
		} else {
			assert.Equal(t, PriceStandard, seat.Price, id)
		}
	}
}

func TestSelectSeatsFallsBackToPlaceholder(t *testing.T) {
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{})
	sess := session.New()

	sel := svc.SelectSeats(context.Background(), sess, "99")
	assert.Equal(t, model.ID("99"), sel.Showtime.ID)
	assert.Equal(t, model.DefaultMovieTitle, sel.Showtime.MovieTitle)
	assert.Equal(t, "2026-10-19", sel.Showtime.ShowDate)
	assert.Equal(t, model.DefaultPrice, sel.Showtime.Price)
	assert.Empty(t, sel.Seats)

	cur, found := sess.CurrentShowtime()
	require.True(t, found)
	assert.Equal(t, model.ID("99"), cur.ID)
}

func TestSelectSeatsEnrichesFromMovie(t *testing.T) {
	cat := fakeCatalog{
		showtimes: map[string]string{"5": `{"id":5,"movie_id":12,"show_date":"2026-10-20","show_time":"20:30:00","theater":{"name":"Landmark","location":"Q1"}}`},
		movies:    map[string]string{"12": `{"id":12,"title":"Dune","poster_url":"p.jpg"}`},
		seats:     `[{"id":1,"status":"available"}]`,
	}
	svc := newTestService(cat, &mockBackend{}, Options{})

	sel := svc.SelectSeats(context.Background(), session.New(), "5")
	assert.Equal(t, "Dune", sel.Showtime.MovieTitle)
	assert.Equal(t, "p.jpg", sel.Showtime.MoviePoster)
	assert.Equal(t, "Landmark", sel.Showtime.CinemaName)
	assert.Equal(t, "Q1", sel.Showtime.CinemaAddress)
	assert.Len(t, sel.Seats, 1)
}

func TestHoldThenStoreTotalsSeatPrices(t *testing.T) {
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{})
	sess := session.New()
	ctx := context.Background()

	bd, err := svc.HoldSeats(ctx, sess, "7", ids("37", "40", "37"))
	require.NoError(t, err)
	assert.Len(t, bd.SeatIDs, 2)
	assert.Regexp(t, `^hold_`, bd.HoldID)
	assert.Equal(t, PriceStandard+PriceVIP, bd.TotalPrice)

	b, err := svc.Store(sess)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, bd.TotalPrice, b.TotalPrice)
	assert.Equal(t, "D1, D4", b.SeatCodes)
	assert.Equal(t, bd.HoldID, b.HoldID)
	assert.Equal(t, b.ID.String(), sess.BookingID())
	assert.Contains(t, sess.BookingHistory(), b.ID.String())
}

func TestHoldRequiresSeats(t *testing.T) {
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{})
	_, err := svc.HoldSeats(context.Background(), session.New(), "7", nil)
	assert.ErrorIs(t, err, ErrInvalidHold)
}

func TestStoreWithoutHold(t *testing.T) {
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{})
	_, err := svc.Store(session.New())
	assert.ErrorIs(t, err, ErrNoPendingBooking)
}

func TestStoreTwiceCreatesTwoBookings(t *testing.T) {
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{})
	sess := session.New()
	_, err := svc.HoldSeats(context.Background(), sess, "7", ids("1"))
	require.NoError(t, err)

	first, err := svc.Store(sess)
	require.NoError(t, err)
	second, err := svc.Store(sess)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, sess.BookingHistory(), 2)
}

func TestStoreDedupeByHold(t *testing.T) {
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{DedupeByHold: true})
	sess := session.New()
	_, err := svc.HoldSeats(context.Background(), sess, "7", ids("1"))
	require.NoError(t, err)

	first, err := svc.Store(sess)
	require.NoError(t, err)
	second, err := svc.Store(sess)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, sess.BookingHistory(), 1)
}

func TestProcessPaymentConfirmsAndPublishes(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.Type == queue.QueueBookingConfirmed && ev.UserID == "3" && len(ev.Seats) == 2 && ev.TotalPrice == 150000
	})).Return(nil).Once()

	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{Events: pub})
	sess := session.New()
	sess.SetUser(model.User{ID: "3"})
	ctx := context.Background()
	_, err := svc.HoldSeats(ctx, sess, "7", ids("37", "38"))
	require.NoError(t, err)
	b, err := svc.Store(sess)
	require.NoError(t, err)

	paid, err := svc.ProcessPayment(ctx, sess, b.ID.String(), "momo")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, paid.Status)
	assert.Regexp(t, `^PAY`, paid.PaymentID)
	assert.Equal(t, "momo", paid.PaymentMethod)
	assert.Equal(t, "2026-10-19T10:00:00Z", paid.PaidAt)

	_, held := sess.BookingData()
	assert.False(t, held)
	assert.Equal(t, model.StatusConfirmed, sess.BookingHistory()[b.ID.String()].Status)
	assert.Len(t, svc.PaymentHistory(sess), 1)
	pub.AssertExpectations(t)
}

func TestProcessPaymentPublishFailureIsIgnored(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything).Return(errors.New("broker down"))
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{Events: pub})
	sess := session.New()
	_, _ = svc.HoldSeats(context.Background(), sess, "7", ids("1"))
	b, _ := svc.Store(sess)

	_, err := svc.ProcessPayment(context.Background(), sess, b.ID.String(), "vnpay")
	assert.NoError(t, err)
}

func TestProcessPaymentUnknownBooking(t *testing.T) {
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{})
	_, err := svc.ProcessPayment(context.Background(), session.New(), "BKNOPE", "momo")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = svc.ProcessPayment(context.Background(), session.New(), "BKNOPE", "")
	assert.ErrorIs(t, err, ErrMethodRequired)
}

func TestCancelConfirmedKeepsTotalAndSeats(t *testing.T) {
	be := &mockBackend{}
	cat := fakeCatalog{showtimes: map[string]string{
		"7": `{"id":7,"movie_title":"Dune","show_date":"2026-11-02","show_time":"20:00:00","price":75000}`,
	}}
	svc := newTestService(cat, be, Options{})
	sess := session.New()
	ctx := context.Background()
	_, _ = svc.HoldSeats(ctx, sess, "7", ids("37", "38"))
	b, _ := svc.Store(sess)
	paid, err := svc.ProcessPayment(ctx, sess, b.ID.String(), "momo")
	require.NoError(t, err)
	require.Equal(t, "2026-11-02", paid.ShowDate)
	require.True(t, paid.IsUpcoming(fixedNow))

	require.NoError(t, svc.Cancel(ctx, sess, b.ID.String()))
	got := sess.BookingHistory()[b.ID.String()]
	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.Equal(t, model.Amount(150000), got.TotalPrice)
	assert.Len(t, got.Seats, 2)
	assert.NotEmpty(t, got.CancelledAt)
	be.AssertNotCalled(t, "Cancel", mock.Anything)

	_, err = svc.ProcessPayment(ctx, sess, b.ID.String(), "momo")
	assert.ErrorIs(t, err, ErrBookingCancelled)
}

func TestCancelTwiceKeepsFirstStampAndEvent(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.Type == queue.QueueBookingCancelled
	})).Return(nil).Once()
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{Events: pub})
	sess := session.New()
	ctx := context.Background()
	_, _ = svc.HoldSeats(ctx, sess, "7", ids("1"))
	b, _ := svc.Store(sess)

	require.NoError(t, svc.Cancel(ctx, sess, b.ID.String()))
	first := sess.BookingHistory()[b.ID.String()].CancelledAt

	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	require.NoError(t, svc.Cancel(ctx, sess, b.ID.String()))
	assert.Equal(t, first, sess.BookingHistory()[b.ID.String()].CancelledAt)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestCancelRemoteBooking(t *testing.T) {
	be := &mockBackend{}
	be.On("Cancel", "42").Return(ok(`{}`)).Once()
	be.On("Cancel", "43").Return(failed(http.StatusBadRequest, "Too late to cancel")).Once()
	svc := newTestService(fakeCatalog{}, be, Options{})

	assert.NoError(t, svc.Cancel(context.Background(), session.New(), "42"))

	err := svc.Cancel(context.Background(), session.New(), "43")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Too late to cancel", remote.Message)
	be.AssertExpectations(t)
}

func TestTicketRequiresPayment(t *testing.T) {
	be := &mockBackend{}
	be.On("Get", "BKREMOTE").Return(ok(`{"id":"BKREMOTE","status":"confirmed","total_price":"75000.0","seats":["A1"]}`))
	be.On("Get", "missing").Return(failed(http.StatusNotFound, "Not found"))
	svc := newTestService(fakeCatalog{}, be, Options{})
	sess := session.New()
	ctx := context.Background()
	_, _ = svc.HoldSeats(ctx, sess, "7", ids("1"))
	b, _ := svc.Store(sess)

	got, err := svc.Ticket(ctx, sess, b.ID.String())
	assert.ErrorIs(t, err, ErrNotPaid)
	assert.Equal(t, b.ID, got.ID)

	remote, err := svc.Ticket(ctx, sess, "BKREMOTE")
	require.NoError(t, err)
	assert.Equal(t, model.Amount(75000), remote.TotalPrice)
	assert.Equal(t, "A1", remote.Seats[0].Code)

	_, err = svc.Find(ctx, sess, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestHistoryMergesCountsAndFilters(t *testing.T) {
	be := &mockBackend{}
	be.On("List", mock.Anything).Return(ok(`[
		{"id":101,"status":"confirmed","show_date":"2026-12-01","created_at":"2026-10-01T00:00:00Z"},
		{"id":102,"status":"confirmed","show_date":"2026-09-01","created_at":"2026-08-01T00:00:00Z"},
		{"id":103,"status":"cancelled","created_at":"2026-07-01T00:00:00Z"},
		{"id":104,"seats":{"bad":"shape"}}
	]`))
	svc := newTestService(fakeCatalog{}, be, Options{})
	sess := session.New()
	sess.SetToken("tok")
	sess.SaveToHistory(model.Booking{ID: "BK1", Status: model.StatusPending, CreatedAt: "2026-10-19T09:00:00Z"})

	view := svc.History(context.Background(), sess, "")
	assert.Equal(t, FilterAll, view.Filter)
	require.Len(t, view.Bookings, 4)
	assert.Equal(t, model.ID("BK1"), view.Bookings[0].ID)
	assert.Equal(t, map[string]int{"all": 4, "upcoming": 1, "watched": 1, "cancelled": 1, "pending": 1}, view.Counts)

	upcoming := svc.History(context.Background(), sess, FilterUpcoming)
	require.Len(t, upcoming.Bookings, 1)
	assert.Equal(t, model.ID("101"), upcoming.Bookings[0].ID)

	unknown := svc.History(context.Background(), sess, "bogus")
	assert.Len(t, unknown.Bookings, 4)
}

func TestHistoryGuestSkipsBackend(t *testing.T) {
	be := &mockBackend{}
	svc := newTestService(fakeCatalog{}, be, Options{})
	view := svc.History(context.Background(), session.New(), FilterAll)
	assert.Empty(t, view.Bookings)
	be.AssertNotCalled(t, "List", mock.Anything)
}

type fakeMethods struct{ res gateway.Result }

func (f fakeMethods) Methods(context.Context) gateway.Result { return f.res }

func TestPaymentMethodsFallback(t *testing.T) {
	svc := newTestService(fakeCatalog{}, &mockBackend{}, Options{Payments: fakeMethods{res: failed(http.StatusServiceUnavailable, "")}})
	assert.Equal(t, model.DefaultPaymentMethods, svc.PaymentMethods(context.Background()))

	svc = newTestService(fakeCatalog{}, &mockBackend{}, Options{Payments: fakeMethods{res: ok(`[{"id":"zalopay","name":"ZaloPay"}]`)}})
	methods := svc.PaymentMethods(context.Background())
	require.Len(t, methods, 1)
	assert.Equal(t, "zalopay", methods[0].ID)
}
