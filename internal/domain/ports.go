package domain

import "context"

// Read paths used by the access evaluator. Absent rows are reported as ErrNotFound.
type EnrollmentRepository interface {
	FindEnrollmentByUserID(ctx context.Context, userID int64) (Enrollment, error)
}

type TicketRepository interface {
	// FindTicketByEnrollmentID returns the ticket with its TicketType embedded.
	FindTicketByEnrollmentID(ctx context.Context, enrollmentID int64) (Ticket, error)
}

type HotelRepository interface {
	FindAllHotels(ctx context.Context) ([]Hotel, error)
	FindHotelWithRooms(ctx context.Context, hotelID int64) (HotelWithRooms, error)
}

// Write paths, used only by the seeder.
type CatalogWriter interface {
	UpsertHotel(ctx context.Context, h Hotel) (int64, error)
	UpsertRooms(ctx context.Context, hotelID int64, rooms []Room) error
}

type EntitlementWriter interface {
	UpsertUser(ctx context.Context, email string) (int64, error)
	UpsertEnrollment(ctx context.Context, e Enrollment) (int64, error)
	UpsertTicketType(ctx context.Context, tt TicketType) (int64, error)
	UpsertTicket(ctx context.Context, t Ticket) (int64, error)
}

// SessionStore resolves bearer tokens to the user that owns the session.
type SessionStore interface {
	Create(ctx context.Context, token string, userID int64, ttlSec int) error
	UserID(ctx context.Context, token string) (int64, bool, error)
	Delete(ctx context.Context, token string) error
}
