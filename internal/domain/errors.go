package domain

import "errors"

// ErrNotFound is returned by storage adapters when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type DenialKind int

const (
	DenialUnknown DenialKind = iota
	DenialEnrollmentNotFound
	DenialTicketNotFound
	DenialPaymentRequired
	DenialHotelNotFound
	DenialInvalidHotelID
)

func (k DenialKind) String() string {
	switch k {
	case DenialEnrollmentNotFound:
		return "enrollment_not_found"
	case DenialTicketNotFound:
		return "ticket_not_found"
	case DenialPaymentRequired:
		return "payment_required"
	case DenialHotelNotFound:
		return "hotel_not_found"
	case DenialInvalidHotelID:
		return "invalid_hotel_id"
	default:
		return "unknown"
	}
}

// Denial is the reason a hotel request was refused.
type Denial struct {
	Kind    DenialKind
	Message string
}

func (d *Denial) Error() string { return d.Message }

// Is matches any Denial of the same kind, so callers can compare against the
// sentinels below regardless of the message.
func (d *Denial) Is(target error) bool {
	var t *Denial
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == d.Kind
}

var (
	ErrEnrollmentNotFound = &Denial{Kind: DenialEnrollmentNotFound, Message: "enrollment not found"}
	ErrTicketNotFound     = &Denial{Kind: DenialTicketNotFound, Message: "ticket not found"}
	ErrPaymentRequired    = &Denial{Kind: DenialPaymentRequired, Message: "ticket must be paid, include hotel and not be remote"}
	ErrHotelNotFound      = &Denial{Kind: DenialHotelNotFound, Message: "hotel not found"}
	ErrNoHotels           = &Denial{Kind: DenialHotelNotFound, Message: "no hotels available"}
	ErrInvalidHotelID     = &Denial{Kind: DenialInvalidHotelID, Message: "hotelId must be a positive integer"}
)

// KindOf classifies err. Anything that is not a Denial is DenialUnknown.
func KindOf(err error) DenialKind {
	var d *Denial
	if errors.As(err, &d) {
		return d.Kind
	}
	return DenialUnknown
}
