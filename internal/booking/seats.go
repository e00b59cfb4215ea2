package booking

import (
	"strconv"

	"github.com/iliyamo/cinebook-web/internal/model"
)

// Hall layout used to derive seat codes from numeric seat ids: eight rows
// of twelve seats, with a VIP block in rows D-F, columns 4-9.
const (
	hallRows  = 8
	hallCols  = 12
	vipRowMin = 3 // D
	vipRowMax = 5 // F
	vipColMin = 4
	vipColMax = 9

	PriceVIP      = model.Amount(100000)
	PriceStandard = model.Amount(75000)
)

// GenerateSeatInfo derives code, type and price for each seat id in order.
// Ids outside the hall fall back to row A.
func GenerateSeatInfo(seatIDs []model.ID) []model.SelectedSeat {
	seats := make([]model.SelectedSeat, 0, len(seatIDs))
	for _, id := range seatIDs {
		n := id.Int()
		row := (n - 1) / hallCols
		col := (n-1)%hallCols + 1
		if n < 1 || row >= hallRows {
			row = 0
		}
		vip := row >= vipRowMin && row <= vipRowMax && col >= vipColMin && col <= vipColMax
		code := rowLabel(row) + strconv.Itoa(col)

		seat := model.SelectedSeat{ID: id, Code: code, SeatNumber: code, Type: model.SeatStandard, Price: PriceStandard}
		if vip {
			seat.Type = model.SeatVIP
			seat.Price = PriceVIP
		}
		seats = append(seats, seat)
	}
	return seats
}

// Total sums the seat prices.
func Total(seats []model.SelectedSeat) model.Amount {
	var sum model.Amount
	for _, s := range seats {
		sum += s.Price
	}
	return sum
}

// rowLabel maps a zero-based row index to A, B, ..., Z, AA, AB, ...
func rowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []rune{}
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
