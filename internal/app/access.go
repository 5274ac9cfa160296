package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"event_hotels/internal/domain"
)

type HotelAccessEvaluator struct {
	enrollments domain.EnrollmentRepository
	tickets     domain.TicketRepository
	hotels      domain.HotelRepository
}

func NewHotelAccessEvaluator(e domain.EnrollmentRepository, t domain.TicketRepository, h domain.HotelRepository) *HotelAccessEvaluator {
	return &HotelAccessEvaluator{enrollments: e, tickets: t, hotels: h}
}

// ListHotels returns every hotel once the user is entitled to hotel access.
func (s *HotelAccessEvaluator) ListHotels(ctx context.Context, userID int64) ([]domain.Hotel, error) {
	if err := s.checkEntitlement(ctx, userID); err != nil {
		return nil, err
	}

	hotels, err := s.hotels.FindAllHotels(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find hotels: %w", err)
	}
	if len(hotels) == 0 {
		return nil, domain.ErrNoHotels
	}
	return hotels, nil
}

// GetHotelRooms validates the hotel id and the hotel's existence before the
// caller's entitlement, so a bad or unknown id is never reported as a denial.
func (s *HotelAccessEvaluator) GetHotelRooms(ctx context.Context, userID int64, rawHotelID string) (domain.HotelWithRooms, error) {
	hotelID, err := ParseHotelID(rawHotelID)
	if err != nil {
		return domain.HotelWithRooms{}, err
	}

	// The empty-catalog check stays ahead of the per-id lookup.
	all, err := s.hotels.FindAllHotels(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.HotelWithRooms{}, fmt.Errorf("find hotels: %w", err)
	}
	if len(all) == 0 {
		return domain.HotelWithRooms{}, domain.ErrNoHotels
	}

	hotel, err := s.hotels.FindHotelWithRooms(ctx, hotelID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.HotelWithRooms{}, domain.ErrHotelNotFound
	}
	if err != nil {
		return domain.HotelWithRooms{}, fmt.Errorf("find hotel %d: %w", hotelID, err)
	}

	if err := s.checkEntitlement(ctx, userID); err != nil {
		return domain.HotelWithRooms{}, err
	}
	return hotel, nil
}

func (s *HotelAccessEvaluator) checkEntitlement(ctx context.Context, userID int64) error {
	enrollment, err := s.enrollments.FindEnrollmentByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrEnrollmentNotFound
	}
	if err != nil {
		return fmt.Errorf("find enrollment for user %d: %w", userID, err)
	}

	ticket, err := s.tickets.FindTicketByEnrollmentID(ctx, enrollment.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("find ticket for enrollment %d: %w", enrollment.ID, err)
	}

	if ticket.RequiresPayment() {
		return domain.ErrPaymentRequired
	}
	return nil
}

// ParseHotelID accepts only positive base-10 integers.
func ParseHotelID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidHotelID
	}
	return id, nil
}
