// Package booking implements the session-resident booking workflow:
// seats are held in the session, confirmed into a pending booking, paid
// (simulated) and finally shown as a ticket or cancelled. No seat is locked
// on the backend at any step.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cinebook-web/internal/gateway"
	"github.com/iliyamo/cinebook-web/internal/model"
	"github.com/iliyamo/cinebook-web/internal/queue"
	"github.com/iliyamo/cinebook-web/internal/session"
	"github.com/iliyamo/cinebook-web/internal/utils"
)

var (
	ErrNoPendingBooking = errors.New("no seats held in this session")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrNotPaid          = errors.New("booking has not been paid")
	ErrBookingCancelled = errors.New("booking is cancelled")
	ErrInvalidHold      = errors.New("showtime and at least one seat are required")
	ErrMethodRequired   = errors.New("payment method is required")
)

// RemoteError carries a backend failure message up to the handler.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Catalog is the read side of the movie service.
type Catalog interface {
	Showtime(ctx context.Context, id string) gateway.Result
	Get(ctx context.Context, movieID string) gateway.Result
	Seats(ctx context.Context, showtimeID string) gateway.Result
}

// Backend is the booking service.
type Backend interface {
	List(ctx context.Context, creds gateway.Credentials, q url.Values) gateway.Result
	Get(ctx context.Context, creds gateway.Credentials, id string) gateway.Result
	Cancel(ctx context.Context, creds gateway.Credentials, id string) gateway.Result
}

// MethodLister lists the payment methods the payment service accepts.
type MethodLister interface {
	Methods(ctx context.Context) gateway.Result
}

// Publisher emits booking lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

type Options struct {
	// DedupeByHold makes Store return the pending booking already created
	// from the same hold instead of materializing a second one.
	DedupeByHold bool
	Events       Publisher
	Payments     MethodLister
}

type Service struct {
	catalog  Catalog
	backend  Backend
	payments MethodLister
	events   Publisher
	dedupe   bool
	now      func() time.Time
}

func NewService(catalog Catalog, backend Backend, opts Options) *Service {
	return &Service{
		catalog:  catalog,
		backend:  backend,
		payments: opts.Payments,
		events:   opts.Events,
		dedupe:   opts.DedupeByHold,
		now:      time.Now,
	}
}

// SeatSelection is the seat page view.
type SeatSelection struct {
	Showtime model.Showtime `json:"showtime"`
	Seats    []any          `json:"seats"`
}

// SelectSeats loads the showtime (placeholder when unknown), remembers it
// as the current showtime and returns it with the backend seat map.
func (s *Service) SelectSeats(ctx context.Context, sess *session.Session, showtimeID string) SeatSelection {
	st := s.loadShowtime(ctx, showtimeID)
	sess.SetCurrentShowtime(st)

	seats := []any{}
	if res := s.catalog.Seats(ctx, showtimeID); res.Success {
		var list []any
		if res.Decode(&list) == nil {
			seats = list
		}
	}
	return SeatSelection{Showtime: st, Seats: seats}
}

func (s *Service) loadShowtime(ctx context.Context, id string) model.Showtime {
	var st model.Showtime
	res := s.catalog.Showtime(ctx, id)
	if !res.Success || res.Decode(&st) != nil || st.ID == "" {
		return model.PlaceholderShowtime(model.ID(id), s.now())
	}
	st.Enrich()
	if st.Movie == nil && st.MovieID != "" {
		var m model.Movie
		if mr := s.catalog.Get(ctx, st.MovieID.String()); mr.Success && mr.Decode(&m) == nil {
			st.ApplyMovie(m)
		}
	}
	return st
}

// HoldSeats records a hold for seatIDs in the session. Duplicate ids are
// collapsed so a seat is never charged twice.
func (s *Service) HoldSeats(ctx context.Context, sess *session.Session, showtimeID string, seatIDs []model.ID) (model.BookingData, error) {
	ids := uniqueIDs(seatIDs)
	if showtimeID == "" || len(ids) == 0 {
		return model.BookingData{}, ErrInvalidHold
	}

	st, ok := sess.CurrentShowtime()
	if !ok || st.ID.String() != showtimeID {
		st = s.loadShowtime(ctx, showtimeID)
	}

	seats := GenerateSeatInfo(ids)
	bd := model.BookingData{
		ShowtimeID:    model.ID(showtimeID),
		SeatIDs:       ids,
		SelectedSeats: seats,
		TotalPrice:    Total(seats),
		Showtime:      &st,
		HoldID:        utils.NewHoldID(),
		CreatedAt:     s.stamp(),
	}
	sess.SetBookingData(bd)
	return bd, nil
}

func uniqueIDs(in []model.ID) []model.ID {
	seen := make(map[model.ID]struct{}, len(in))
	out := make([]model.ID, 0, len(in))
	for _, id := range in {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Pending returns the held seats with a usable showtime and total.
func (s *Service) Pending(sess *session.Session) (model.BookingData, error) {
	bd, ok := sess.BookingData()
	if !ok {
		return model.BookingData{}, ErrNoPendingBooking
	}
	if bd.Showtime == nil {
		st, ok := sess.CurrentShowtime()
		if !ok {
			st = model.PlaceholderShowtime(bd.ShowtimeID, s.now())
		}
		bd.Showtime = &st
	}
	if len(bd.SelectedSeats) == 0 {
		bd.SelectedSeats = GenerateSeatInfo(bd.SeatIDs)
	}
	if bd.TotalPrice == 0 {
		bd.TotalPrice = Total(bd.SelectedSeats)
	}
	return bd, nil
}

// Store turns the held seats into a pending booking and records it in the
// session history. Each call creates a new booking unless DedupeByHold is
// set.
func (s *Service) Store(sess *session.Session) (model.Booking, error) {
	bd, err := s.Pending(sess)
	if err != nil {
		return model.Booking{}, err
	}
	if s.dedupe {
		for _, b := range sess.BookingHistory() {
			if b.HoldID == bd.HoldID && b.EffectiveStatus() == model.StatusPending {
				sess.SetCurrentBooking(b)
				return b, nil
			}
		}
	}

	st := *bd.Showtime
	b := model.Booking{
		ID:          model.ID(utils.NewBookingID()),
		ShowtimeID:  bd.ShowtimeID,
		Showtime:    &st,
		Seats:       model.SeatList(bd.SelectedSeats),
		SeatCodes:   joinCodes(bd.SelectedSeats),
		TotalPrice:  bd.TotalPrice,
		Status:      model.StatusPending,
		HoldID:      bd.HoldID,
		CreatedAt:   s.stamp(),
		MovieTitle:  st.DisplayTitle(),
		MoviePoster: st.DisplayPoster(),
		CinemaName:  orDefault(st.CinemaName, model.DefaultCinemaName),
		Room:        orDefault(st.Room, model.DefaultRoom),
		ShowDate:    orDefault(st.ShowDate, s.now().Format("2006-01-02")),
		ShowTime:    orDefault(st.ShowTime, model.DefaultShowTime),
	}
	sess.SetCurrentBooking(b)
	sess.SaveToHistory(b)
	return b, nil
}

// Lookup finds a booking in this session: the current one first, then the
// history.
func (s *Service) Lookup(sess *session.Session, id string) (model.Booking, bool) {
	if b, ok := sess.CurrentBooking(); ok && b.ID.String() == id {
		return b, true
	}
	b, ok := sess.BookingHistory()[id]
	return b, ok
}

// ForPayment resolves the booking shown on the payment page, falling back
// to the booking service for bookings made elsewhere.
func (s *Service) ForPayment(ctx context.Context, sess *session.Session, id string) (model.Booking, error) {
	if b, ok := s.Lookup(sess, id); ok {
		return b, nil
	}
	return s.remote(ctx, sess, id)
}

// PaymentMethods asks the payment service and falls back to the built-in
// list when it is unreachable or returns nothing.
func (s *Service) PaymentMethods(ctx context.Context) []model.PaymentMethod {
	if s.payments != nil {
		var methods []model.PaymentMethod
		if res := s.payments.Methods(ctx); res.Success && res.Decode(&methods) == nil && len(methods) > 0 {
			return methods
		}
	}
	return model.DefaultPaymentMethods
}

// ProcessPayment simulates a successful payment: the booking is confirmed
// and stamped, the hold is released and a booking.confirmed event goes out.
func (s *Service) ProcessPayment(ctx context.Context, sess *session.Session, id, method string) (model.Booking, error) {
	if method == "" {
		return model.Booking{}, ErrMethodRequired
	}
	b, ok := s.Lookup(sess, id)
	if !ok {
		return model.Booking{}, ErrBookingNotFound
	}
	if b.EffectiveStatus() == model.StatusCancelled {
		return b, ErrBookingCancelled
	}

	b.Status = model.StatusConfirmed
	b.PaymentID = utils.NewPaymentID()
	b.PaymentMethod = method
	b.PaidAt = s.stamp()

	sess.SetCurrentBooking(b)
	sess.SaveToHistory(b)
	sess.Forget(session.KeyBookingData)

	s.publish(ctx, sess, queue.QueueBookingConfirmed, b)
	return b, nil
}

// Find looks in the session history, then asks the booking service.
func (s *Service) Find(ctx context.Context, sess *session.Session, id string) (model.Booking, error) {
	if b, ok := sess.BookingHistory()[id]; ok {
		return b, nil
	}
	return s.remote(ctx, sess, id)
}

// Ticket is Find restricted to paid bookings. The booking is returned with
// ErrNotPaid so callers can link back to it.
func (s *Service) Ticket(ctx context.Context, sess *session.Session, id string) (model.Booking, error) {
	b, err := s.Find(ctx, sess, id)
	if err != nil {
		return b, err
	}
	if b.EffectiveStatus() != model.StatusConfirmed {
		return b, ErrNotPaid
	}
	return b, nil
}

func (s *Service) remote(ctx context.Context, sess *session.Session, id string) (model.Booking, error) {
	var b model.Booking
	res := s.backend.Get(ctx, sess, id)
	if !res.Success || res.Decode(&b) != nil {
		return model.Booking{}, ErrBookingNotFound
	}
	if b.ID == "" {
		b.ID = model.ID(id)
	}
	return b, nil
}

// Cancel marks a session booking cancelled without calling the backend;
// total and seats are left as they were. Cancelling twice is a no-op.
// Other bookings are cancelled through the booking service.
func (s *Service) Cancel(ctx context.Context, sess *session.Session, id string) error {
	if b, ok := sess.BookingHistory()[id]; ok {
		if b.EffectiveStatus() == model.StatusCancelled {
			return nil
		}
		b.Status = model.StatusCancelled
		b.CancelledAt = s.stamp()
		sess.SaveToHistory(b)
		if cur, ok := sess.CurrentBooking(); ok && cur.ID == b.ID {
			sess.SetCurrentBooking(b)
		}
		s.publish(ctx, sess, queue.QueueBookingCancelled, b)
		return nil
	}

	res := s.backend.Cancel(ctx, sess, id)
	if !res.Success {
		return &RemoteError{Status: res.Status, Message: res.Error}
	}
	s.publish(ctx, sess, queue.QueueBookingCancelled, model.Booking{ID: model.ID(id)})
	return nil
}

// Filters accepted by History.
const (
	FilterAll       = "all"
	FilterUpcoming  = "upcoming"
	FilterWatched   = "watched"
	FilterCancelled = "cancelled"
	FilterPending   = "pending"
)

// HistoryView is the "my bookings" page.
type HistoryView struct {
	Bookings []model.Booking `json:"bookings"`
	Filter   string          `json:"filter"`
	Counts   map[string]int  `json:"counts"`
}

// History merges the session history with the customer's backend bookings,
// newest first, and counts them per bucket before filtering.
func (s *Service) History(ctx context.Context, sess *session.Session, filter string) HistoryView {
	if filter == "" {
		filter = FilterAll
	}
	all := make([]model.Booking, 0)
	for _, b := range sess.BookingHistory() {
		all = append(all, b)
	}
	all = append(all, s.remoteList(ctx, sess)...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })

	now := s.now()
	counts := map[string]int{FilterAll: len(all), FilterUpcoming: 0, FilterWatched: 0, FilterCancelled: 0, FilterPending: 0}
	for _, b := range all {
		if bucket := bucketOf(b, now); bucket != "" {
			counts[bucket]++
		}
	}

	out := all
	if _, known := counts[filter]; known && filter != FilterAll {
		out = make([]model.Booking, 0, counts[filter])
		for _, b := range all {
			if bucketOf(b, now) == filter {
				out = append(out, b)
			}
		}
	}
	return HistoryView{Bookings: out, Filter: filter, Counts: counts}
}

func bucketOf(b model.Booking, now time.Time) string {
	switch b.EffectiveStatus() {
	case model.StatusCancelled:
		return FilterCancelled
	case model.StatusPending:
		return FilterPending
	case model.StatusConfirmed:
		if b.IsUpcoming(now) {
			return FilterUpcoming
		}
		return FilterWatched
	}
	return ""
}

// remoteList decodes backend bookings one by one so a single odd record
// does not hide the rest.
func (s *Service) remoteList(ctx context.Context, sess *session.Session) []model.Booking {
	if !sess.Authenticated() {
		return nil
	}
	res := s.backend.List(ctx, sess, nil)
	if !res.Success {
		return nil
	}
	var raws []json.RawMessage
	if res.Decode(&raws) != nil {
		return nil
	}
	out := make([]model.Booking, 0, len(raws))
	for _, raw := range raws {
		var b model.Booking
		if err := json.Unmarshal(raw, &b); err != nil {
			log.Warnf("booking: skip backend record: %v", err)
			continue
		}
		out = append(out, b)
	}
	return out
}

// PaymentHistory lists the confirmed bookings of this session, newest
// payment first.
func (s *Service) PaymentHistory(sess *session.Session) []model.Booking {
	out := []model.Booking{}
	for _, b := range sess.BookingHistory() {
		if b.EffectiveStatus() == model.StatusConfirmed {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaidAt > out[j].PaidAt })
	return out
}

func (s *Service) publish(ctx context.Context, sess *session.Session, queueName string, b model.Booking) {
	if s.events == nil {
		return
	}
	ev := queue.BookingEvent{
		Type:       queueName,
		BookingID:  b.ID.String(),
		HoldID:     b.HoldID,
		ShowtimeID: b.ShowtimeID.String(),
		MovieTitle: b.MovieTitle,
		CinemaName: b.CinemaName,
		Seats:      model.SeatCodes(b.Seats),
		TotalPrice: int64(b.TotalPrice),
		PaymentID:  b.PaymentID,
		OccurredAt: s.stamp(),
	}
	if u, ok := sess.User(); ok {
		ev.UserID = u.ID.String()
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Warnf("booking: publish %s for %s: %v", queueName, ev.BookingID, err)
	}
}

func (s *Service) stamp() string { return s.now().UTC().Format(time.RFC3339) }

func joinCodes(seats []model.SelectedSeat) string {
	return strings.Join(model.SeatCodes(seats), ", ")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
