package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"event_hotels/internal/domain"
)

// CatalogLoader writes fixture hotels, rooms and entitlements into storage.
// It backs the seeder command and is never used on the request path.
type CatalogLoader struct {
	catalog  domain.CatalogWriter
	entitle  domain.EntitlementWriter
	sessions domain.SessionStore
	tokens   TokenIssuer
}

// TokenIssuer signs an access token for a user.
type TokenIssuer interface {
	Issue(userID int64, ttl time.Duration) (string, error)
}

func NewCatalogLoader(c domain.CatalogWriter, e domain.EntitlementWriter, s domain.SessionStore, t TokenIssuer) *CatalogLoader {
	return &CatalogLoader{catalog: c, entitle: e, sessions: s, tokens: t}
}

// LoadHotel upserts the hotel first so its rooms can reference the stored id.
func (l *CatalogLoader) LoadHotel(ctx context.Context, h HotelFixture) (int64, error) {
	if err := h.validate(); err != nil {
		return 0, err
	}
	id, err := l.catalog.UpsertHotel(ctx, domain.Hotel{ID: h.ID, Name: h.Name, Image: h.Image})
	if err != nil {
		return 0, fmt.Errorf("upsert hotel %q: %w", h.Name, err)
	}
	if len(h.Rooms) == 0 {
		return id, nil
	}
	rooms := make([]domain.Room, 0, len(h.Rooms))
	for _, r := range h.Rooms {
		rooms = append(rooms, domain.Room{Name: r.Name, Capacity: r.Capacity, HotelID: id})
	}
	if err := l.catalog.UpsertRooms(ctx, id, rooms); err != nil {
		return 0, fmt.Errorf("upsert rooms for hotel %d: %w", id, err)
	}
	return id, nil
}

// LoadHotels loads every hotel with at most workers in flight. A failed hotel
// does not stop the others; all failures are returned joined.
func (l *CatalogLoader) LoadHotels(ctx context.Context, hotels []HotelFixture, workers int) error {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, h := range hotels {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(h HotelFixture) {
			defer wg.Done()
			defer sem.Release(1)

			id, err := l.LoadHotel(ctx, h)
			if err != nil {
				log.Warn().Str("hotel", h.Name).Err(err).Msg("load hotel failed")
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			log.Info().Int64("id", id).Str("hotel", h.Name).Int("rooms", len(h.Rooms)).Msg("hotel loaded")
		}(h)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// LoadUser creates the user, enrollment, ticket type and ticket described by
// the fixture, then opens a session and returns its bearer token.
func (l *CatalogLoader) LoadUser(ctx context.Context, u UserFixture, sessionTTL time.Duration) (string, error) {
	if err := u.validate(); err != nil {
		return "", err
	}
	userID, err := l.entitle.UpsertUser(ctx, u.Email)
	if err != nil {
		return "", fmt.Errorf("upsert user %s: %w", u.Email, err)
	}

	if u.Enrollment != nil {
		enrollmentID, err := l.entitle.UpsertEnrollment(ctx, domain.Enrollment{
			UserID: userID,
			Name:   u.Enrollment.Name,
			CPF:    u.Enrollment.CPF,
			Phone:  u.Enrollment.Phone,
		})
		if err != nil {
			return "", fmt.Errorf("upsert enrollment for %s: %w", u.Email, err)
		}

		if t := u.Ticket; t != nil {
			typeID, err := l.entitle.UpsertTicketType(ctx, domain.TicketType{
				Name:          t.TypeName,
				Price:         t.Price,
				IsRemote:      t.IsRemote,
				IncludesHotel: t.IncludesHotel,
			})
			if err != nil {
				return "", fmt.Errorf("upsert ticket type %q: %w", t.TypeName, err)
			}
			if _, err := l.entitle.UpsertTicket(ctx, domain.Ticket{
				EnrollmentID: enrollmentID,
				TicketTypeID: typeID,
				Status:       domain.TicketStatus(t.Status),
			}); err != nil {
				return "", fmt.Errorf("upsert ticket for %s: %w", u.Email, err)
			}
		}
	}

	token, err := l.tokens.Issue(userID, sessionTTL)
	if err != nil {
		return "", fmt.Errorf("issue token for %s: %w", u.Email, err)
	}
	if err := l.sessions.Create(ctx, token, userID, int(sessionTTL.Seconds())); err != nil {
		return "", fmt.Errorf("create session for %s: %w", u.Email, err)
	}
	return token, nil
}

/********** fixtures **********/

// ReadFixture decodes a seed file, rejecting unknown fields.
func ReadFixture(path string) (Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fixture{}, err
	}
	defer f.Close()

	var out Fixture
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return Fixture{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

type Fixture struct {
	Hotels []HotelFixture `json:"hotels"`
	Users  []UserFixture  `json:"users"`
}

type HotelFixture struct {
	ID    int64         `json:"id,omitempty"`
	Name  string        `json:"name"`
	Image string        `json:"image"`
	Rooms []RoomFixture `json:"rooms"`
}

type RoomFixture struct {
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

type UserFixture struct {
	Email      string             `json:"email"`
	Enrollment *EnrollmentFixture `json:"enrollment,omitempty"`
	Ticket     *TicketFixture     `json:"ticket,omitempty"`
}

type EnrollmentFixture struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
}

type TicketFixture struct {
	TypeName      string `json:"typeName"`
	Price         int    `json:"price"`
	IsRemote      bool   `json:"isRemote"`
	IncludesHotel bool   `json:"includesHotel"`
	Status        string `json:"status"` // RESERVED|PAID
}

func (h HotelFixture) validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("hotel fixture: name is required")
	}
	for i, r := range h.Rooms {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("hotel %q room %d: name is required", h.Name, i)
		}
		if r.Capacity < 1 {
			return fmt.Errorf("hotel %q room %q: capacity must be at least 1", h.Name, r.Name)
		}
	}
	return nil
}

func (u UserFixture) validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("user fixture: email is required")
	}
	if u.Ticket != nil {
		if u.Enrollment == nil {
			return fmt.Errorf("user %s: ticket requires an enrollment", u.Email)
		}
		switch domain.TicketStatus(u.Ticket.Status) {
		case domain.TicketReserved, domain.TicketPaid:
		default:
			return fmt.Errorf("user %s: unknown ticket status %q", u.Email, u.Ticket.Status)
		}
	}
	return nil
}
