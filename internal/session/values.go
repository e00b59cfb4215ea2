package session

import "github.com/iliyamo/cinebook-web/internal/model"

// Typed accessors for the booking workflow state.

func (s *Session) CurrentShowtime() (model.Showtime, bool) {
	var st model.Showtime
	ok := s.Get(KeyCurrentShowtime, &st)
	return st, ok
}

func (s *Session) SetCurrentShowtime(st model.Showtime) { _ = s.Put(KeyCurrentShowtime, st) }

func (s *Session) BookingData() (model.BookingData, bool) {
	var bd model.BookingData
	ok := s.Get(KeyBookingData, &bd)
	return bd, ok
}

func (s *Session) SetBookingData(bd model.BookingData) { _ = s.Put(KeyBookingData, bd) }

func (s *Session) CurrentBooking() (model.Booking, bool) {
	var b model.Booking
	ok := s.Get(KeyCurrentBooking, &b)
	return b, ok
}

func (s *Session) SetCurrentBooking(b model.Booking) {
	_ = s.Put(KeyCurrentBooking, b)
	_ = s.Put(KeyBookingID, b.ID)
}

func (s *Session) BookingID() string {
	var id string
	s.Get(KeyBookingID, &id)
	return id
}

// BookingHistory is keyed by booking id.
func (s *Session) BookingHistory() map[string]model.Booking {
	h := map[string]model.Booking{}
	s.Get(KeyBookingHistory, &h)
	return h
}

// SaveToHistory upserts b into the history map.
func (s *Session) SaveToHistory(b model.Booking) {
	h := s.BookingHistory()
	h[b.ID.String()] = b
	_ = s.Put(KeyBookingHistory, h)
}
