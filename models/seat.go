package models

import "strings"

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatPaid      SeatStatus = "PAID"
	SeatUnknown   SeatStatus = "UNKNOWN"
)

const (
	heldValuePrefix = "held:"
	paidValuePrefix = "paid:"
)

// Seat is the coordination-store view of one seat. Owner is set iff the
// seat is HELD or PAID; an AVAILABLE seat never has an owner.
type Seat struct {
	Number int        `json:"seat_number"`
	Status SeatStatus `json:"status"`
	Owner  string     `json:"owner,omitempty"`
}

// HeldValue encodes the stored value for a seat held by token.
func HeldValue(token string) string { return heldValuePrefix + token }

// PaidValue encodes the stored value for a seat paid by token.
func PaidValue(token string) string { return paidValuePrefix + token }

// ParseSeat decodes a stored seat value. An empty value means the key was
// absent, i.e. the seat is AVAILABLE. Values matching neither prefix map
// to UNKNOWN; the caller decides how loudly to complain.
func ParseSeat(number int, value string) Seat {
	switch {
	case value == "":
		return Seat{Number: number, Status: SeatAvailable}
	case strings.HasPrefix(value, heldValuePrefix):
		return Seat{Number: number, Status: SeatHeld, Owner: strings.TrimPrefix(value, heldValuePrefix)}
	case strings.HasPrefix(value, paidValuePrefix):
		return Seat{Number: number, Status: SeatPaid, Owner: strings.TrimPrefix(value, paidValuePrefix)}
	default:
		return Seat{Number: number, Status: SeatUnknown}
	}
}

// AvailableFor reports whether token could complete a purchase on this
// seat: any token on an AVAILABLE seat, only the holder on a HELD seat.
func (s Seat) AvailableFor(token string) bool {
	switch s.Status {
	case SeatAvailable:
		return true
	case SeatHeld:
		return token != "" && token == s.Owner
	default:
		return false
	}
}
