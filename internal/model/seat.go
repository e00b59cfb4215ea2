package model

import "encoding/json"

// Seat types shown to the customer.
const (
	SeatStandard = "Standard"
	SeatVIP      = "VIP"
)

// SelectedSeat is a seat the customer picked, with the code and price
// derived locally from its numeric id.
type SelectedSeat struct {
	ID         ID     `json:"id"`
	Code       string `json:"code"`
	SeatNumber string `json:"seat_number"`
	Type       string `json:"type"`
	Price      Amount `json:"price"`
}

// SeatCodes lists the seat codes in selection order.
func SeatCodes(seats []SelectedSeat) []string {
	out := make([]string, 0, len(seats))
	for _, s := range seats {
		out = append(out, s.Code)
	}
	return out
}

// SeatList decodes either seat objects or bare seat codes; booking records
// coming from the backend use both shapes.
type SeatList []SelectedSeat

func (l *SeatList) UnmarshalJSON(b []byte) error {
	var seats []SelectedSeat
	if err := json.Unmarshal(b, &seats); err == nil {
		*l = seats
		return nil
	}
	var codes []string
	if err := json.Unmarshal(b, &codes); err != nil {
		return err
	}
	out := make(SeatList, 0, len(codes))
	for _, c := range codes {
		out = append(out, SelectedSeat{Code: c, SeatNumber: c})
	}
	*l = out
	return nil
}
