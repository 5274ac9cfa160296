package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event_hotels/internal/adapters/auth"
	server "event_hotels/internal/adapters/http_server"
	redisad "event_hotels/internal/adapters/redis"
	"event_hotels/internal/app"
	"event_hotels/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	enrollment *domain.Enrollment
	ticket     *domain.Ticket
	hotels     []domain.Hotel
	rooms      map[int64][]domain.Room
	err        error
}

func (f *fakeRepo) FindEnrollmentByUserID(ctx context.Context, userID int64) (domain.Enrollment, error) {
	if f.err != nil {
		return domain.Enrollment{}, f.err
	}
	if f.enrollment == nil || f.enrollment.UserID != userID {
		return domain.Enrollment{}, domain.ErrNotFound
	}
	return *f.enrollment, nil
}

func (f *fakeRepo) FindTicketByEnrollmentID(ctx context.Context, enrollmentID int64) (domain.Ticket, error) {
	if f.ticket == nil || f.ticket.EnrollmentID != enrollmentID {
		return domain.Ticket{}, domain.ErrNotFound
	}
	return *f.ticket, nil
}

func (f *fakeRepo) FindAllHotels(ctx context.Context) ([]domain.Hotel, error) {
	return f.hotels, nil
}

func (f *fakeRepo) FindHotelWithRooms(ctx context.Context, hotelID int64) (domain.HotelWithRooms, error) {
	for _, h := range f.hotels {
		if h.ID == hotelID {
			return domain.HotelWithRooms{Hotel: h, Rooms: f.rooms[hotelID]}, nil
		}
	}
	return domain.HotelWithRooms{}, domain.ErrNotFound
}

// ---- harness ----

const secret = "test-secret"

type harness struct {
	ts       *httptest.Server
	repo     *fakeRepo
	tokens   *auth.JWTService
	sessions *redisad.SessionStore
}

func newHarness(t *testing.T, opts server.Options) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	repo := &fakeRepo{
		hotels: []domain.Hotel{{ID: 1, Name: "Hotel Name", Image: "https://img/1.jpg", CreatedAt: created, UpdatedAt: created}},
		rooms: map[int64][]domain.Room{
			1: {
				{ID: 10, Name: "101", Capacity: 1, HotelID: 1, CreatedAt: created, UpdatedAt: created},
				{ID: 11, Name: "102", Capacity: 3, HotelID: 1, CreatedAt: created, UpdatedAt: created},
			},
		},
	}
	h := &harness{
		repo:     repo,
		tokens:   auth.NewJWTService(secret, "test"),
		sessions: redisad.New(mr.Addr(), "", 0),
	}

	srv := server.New(opts)
	srv.MountHandlers(&server.Handlers{
		Access:   app.NewHotelAccessEvaluator(repo, repo, repo),
		Tokens:   h.tokens,
		Sessions: h.sessions,
	})
	h.ts = httptest.NewServer(srv.Mux())
	t.Cleanup(h.ts.Close)
	return h
}

// login issues a token for userID and opens its session.
func (h *harness) login(t *testing.T, userID int64) string {
	t.Helper()
	token, err := h.tokens.Issue(userID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, h.sessions.Create(context.Background(), token, userID, 3600))
	return token
}

func (h *harness) entitle(userID int64, status domain.TicketStatus, includesHotel, isRemote bool) {
	h.repo.enrollment = &domain.Enrollment{ID: 100, UserID: userID}
	h.repo.ticket = &domain.Ticket{
		ID: 200, EnrollmentID: 100, Status: status,
		TicketType: domain.TicketType{IncludesHotel: includesHotel, IsRemote: isRemote},
	}
}

func (h *harness) get(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.ts.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

type problemBody struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// ---- auth ----

func TestHotels_Unauthorized(t *testing.T) {
	h := newHarness(t, server.Options{})

	t.Run("no token", func(t *testing.T) {
		res := h.get(t, "/hotels", "")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
		assert.Equal(t, "application/problem+json", res.Header.Get("Content-Type"))
	})

	t.Run("invalid token", func(t *testing.T) {
		res := h.get(t, "/hotels/1", "dog")
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("no session for token", func(t *testing.T) {
		token, err := h.tokens.Issue(5, time.Hour)
		require.NoError(t, err)
		res := h.get(t, "/hotels", token)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("session owned by another user", func(t *testing.T) {
		token, err := h.tokens.Issue(5, time.Hour)
		require.NoError(t, err)
		require.NoError(t, h.sessions.Create(context.Background(), token, 6, 60))
		res := h.get(t, "/hotels", token)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

// ---- GET /hotels ----

func TestListHotels_StatusMapping(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)

	// no enrollment
	assert.Equal(t, http.StatusNotFound, h.get(t, "/hotels", token).StatusCode)

	// enrollment, no ticket
	h.repo.enrollment = &domain.Enrollment{ID: 100, UserID: 5}
	assert.Equal(t, http.StatusNotFound, h.get(t, "/hotels", token).StatusCode)

	for _, tc := range []struct {
		name          string
		status        domain.TicketStatus
		includesHotel bool
		isRemote      bool
	}{
		{"reserved", domain.TicketReserved, true, false},
		{"without hotel", domain.TicketPaid, false, false},
		{"remote", domain.TicketPaid, true, true},
	} {
		h.entitle(5, tc.status, tc.includesHotel, tc.isRemote)
		res := h.get(t, "/hotels", token)
		assert.Equal(t, http.StatusPaymentRequired, res.StatusCode, tc.name)
	}
}

func TestListHotels_OK(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.entitle(5, domain.TicketPaid, true, false)

	res := h.get(t, "/hotels", token)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))

	var body []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body, 1)
	assert.Equal(t, float64(1), body[0]["id"])
	assert.Equal(t, "Hotel Name", body[0]["name"])
	assert.Equal(t, "https://img/1.jpg", body[0]["image"])
	assert.Equal(t, "2026-01-02T03:04:05Z", body[0]["createdAt"])
	assert.NotContains(t, body[0], "Rooms")
}

func TestListHotels_EmptyCatalog(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.entitle(5, domain.TicketPaid, true, false)
	h.repo.hotels = nil

	res := h.get(t, "/hotels", token)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestListHotels_StorageFailureIsBadRequest(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.repo.err = errors.New("db down")

	res := h.get(t, "/hotels", token)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	var p problemBody
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	assert.NotContains(t, p.Detail, "db down", "internal errors are not leaked")
}

// ---- GET /hotels/{hotelId} ----

func TestGetHotelRooms_InvalidID(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.entitle(5, domain.TicketPaid, true, false)

	res := h.get(t, "/hotels/dog", token)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	var p problemBody
	require.NoError(t, json.NewDecoder(res.Body).Decode(&p))
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Equal(t, domain.ErrInvalidHotelID.Message, p.Detail)
}

func TestGetHotelRooms_UnknownHotel(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.entitle(5, domain.TicketPaid, true, false)

	assert.Equal(t, http.StatusNotFound, h.get(t, "/hotels/999", token).StatusCode)
}

func TestGetHotelRooms_PaymentRequired(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.entitle(5, domain.TicketReserved, true, false)

	assert.Equal(t, http.StatusPaymentRequired, h.get(t, "/hotels/1", token).StatusCode)
}

func TestGetHotelRooms_OK(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.entitle(5, domain.TicketPaid, true, false)

	res := h.get(t, "/hotels/1", token)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Rooms []struct {
			ID       int64  `json:"id"`
			Name     string `json:"name"`
			Capacity int    `json:"capacity"`
			HotelID  int64  `json:"hotelId"`
		} `json:"Rooms"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, int64(1), body.ID)
	assert.Equal(t, "Hotel Name", body.Name)
	require.Len(t, body.Rooms, 2)
	assert.Equal(t, "101", body.Rooms[0].Name)
	assert.Equal(t, int64(1), body.Rooms[1].HotelID)
}

func TestHotels_ETag(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.entitle(5, domain.TicketPaid, true, false)

	for _, path := range []string{"/hotels", "/hotels/1"} {
		t.Run(path, func(t *testing.T) {
			res := h.get(t, path, token)
			require.Equal(t, http.StatusOK, res.StatusCode)
			etag := res.Header.Get("ETag")
			require.NotEmpty(t, etag)
			assert.True(t, strings.HasPrefix(etag, `W/"`))

			req, err := http.NewRequest(http.MethodGet, h.ts.URL+path, nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("If-None-Match", etag)
			res, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer res.Body.Close()
			assert.Equal(t, http.StatusNotModified, res.StatusCode)
			assert.Equal(t, etag, res.Header.Get("ETag"))

			// a stale tag gets the full body
			req.Header.Set("If-None-Match", `W/"stale"`)
			res2, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer res2.Body.Close()
			assert.Equal(t, http.StatusOK, res2.StatusCode)
		})
	}
}

func TestHotels_ETagDoesNotBypassAccess(t *testing.T) {
	h := newHarness(t, server.Options{})
	token := h.login(t, 5)
	h.entitle(5, domain.TicketPaid, true, false)
	etag := h.get(t, "/hotels", token).Header.Get("ETag")
	require.NotEmpty(t, etag)

	h.entitle(5, domain.TicketReserved, true, false)
	req, err := http.NewRequest(http.MethodGet, h.ts.URL+"/hotels", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("If-None-Match", etag)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusPaymentRequired, res.StatusCode)
}

// ---- ambient routes ----

func TestHealthz_NoAuth(t *testing.T) {
	h := newHarness(t, server.Options{})
	assert.Equal(t, http.StatusOK, h.get(t, "/healthz", "").StatusCode)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, server.Options{RateRPS: 0.001, RateBurst: 2})

	assert.Equal(t, http.StatusOK, h.get(t, "/healthz", "").StatusCode)
	assert.Equal(t, http.StatusOK, h.get(t, "/healthz", "").StatusCode)

	res := h.get(t, "/healthz", "")
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	assert.Equal(t, "1", res.Header.Get("Retry-After"))
}

func TestRateLimit_SpoofedForwardedFor(t *testing.T) {
	h := newHarness(t, server.Options{RateRPS: 0.001, RateBurst: 1})

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req, err := http.NewRequest(http.MethodGet, h.ts.URL+"/healthz", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		res, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = res.Body.Close()
		codes = append(codes, res.StatusCode)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	for _, c := range codes[1:] {
		assert.Equal(t, http.StatusTooManyRequests, c)
	}
}
