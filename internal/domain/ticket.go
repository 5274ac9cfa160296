package domain

import "time"

type Enrollment struct {
	ID        int64
	UserID    int64
	Name      string
	CPF       string
	Birthday  time.Time
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TicketStatus string

const (
	TicketReserved TicketStatus = "RESERVED"
	TicketPaid     TicketStatus = "PAID"
)

type TicketType struct {
	ID            int64
	Name          string
	Price         int
	IsRemote      bool
	IncludesHotel bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Ticket struct {
	ID           int64
	EnrollmentID int64
	TicketTypeID int64
	Status       TicketStatus
	TicketType   TicketType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RequiresPayment reports whether a ticket still blocks hotel access: it is
// unpaid, its type has no hotel, or it is a remote ticket.
func RequiresPayment(status TicketStatus, includesHotel, isRemote bool) bool {
	return status == TicketReserved || !includesHotel || isRemote
}

// RequiresPayment applies the gating predicate to the ticket and its type.
func (t Ticket) RequiresPayment() bool {
	return RequiresPayment(t.Status, t.TicketType.IncludesHotel, t.TicketType.IsRemote)
}
