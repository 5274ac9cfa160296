// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"event_hotels/internal/adapters/auth"
	"event_hotels/internal/adapters/observability"
	"event_hotels/internal/app"
	"event_hotels/internal/domain"
)

type Handlers struct {
	Access   *app.HotelAccessEvaluator
	Tokens   TokenVerifier
	Sessions domain.SessionStore
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Group(func(r chi.Router) {
		r.Use(Authenticate(h.Tokens, h.Sessions))
		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{hotelId}", h.getHotelRooms)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response body")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("ETag", etag)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// statusFor maps a denial to its HTTP outcome. Unclassified errors are 400.
func statusFor(kind domain.DenialKind) (int, string) {
	switch kind {
	case domain.DenialEnrollmentNotFound, domain.DenialTicketNotFound, domain.DenialHotelNotFound:
		return http.StatusNotFound, "Not Found"
	case domain.DenialPaymentRequired:
		return http.StatusPaymentRequired, "Payment Required"
	default:
		return http.StatusBadRequest, "Bad Request"
	}
}

func writeDenial(w http.ResponseWriter, userID int64, err error) {
	kind := domain.KindOf(err)
	observability.ObserveDenial(kind.String())
	status, title := statusFor(kind)

	detail := err.Error()
	if kind == domain.DenialUnknown {
		log.Error().Err(err).Int64("user_id", userID).Msg("hotel lookup failed")
		detail = "request could not be completed"
	} else {
		log.Debug().Int64("user_id", userID).Str("kind", kind.String()).Msg("hotel access denied")
	}
	writeProblem(w, status, title, detail)
}

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	hotels, err := h.Access.ListHotels(r.Context(), userID)
	if err != nil {
		writeDenial(w, userID, err)
		return
	}
	writeJSON(w, r, hotels)
}

func (h *Handlers) getHotelRooms(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	hotel, err := h.Access.GetHotelRooms(r.Context(), userID, chi.URLParam(r, "hotelId"))
	if err != nil {
		writeDenial(w, userID, err)
		return
	}
	writeJSON(w, r, hotel)
}
