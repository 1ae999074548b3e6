package matches

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"petradar/internal/domain/matching"
	"petradar/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/matches", func(mr chi.Router) {
		mr.Get("/mine", listMineHandler(svc))
		mr.Get("/finder", listFinderHandler(svc))
		mr.Get("/{matchID}", getMatchHandler(svc))
		mr.Patch("/{matchID}/status", updateStatusHandler(svc))
	})
}

type matchResponse struct {
	ID               string         `json:"id"`
	LostPetID        string         `json:"lost_pet_id"`
	FoundPetID       string         `json:"found_pet_id"`
	Similarity       float64        `json:"similarity"`
	Scores           matching.Score `json:"scores"`
	Status           string         `json:"status"`
	ConfirmationDate *time.Time     `json:"confirmation_date,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

type updateStatusRequest struct {
	Status string `json:"status"` // confirmed | rejected
}

func getMatchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "matchID"))
		if err != nil {
			http.Error(w, "match not found", http.StatusNotFound)
			return
		}

		if !svc.CanView(r.Context(), m, claims.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toMatchResponse(m))
	}
}

func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "matchID"), claims.UserID, Status(req.Status))
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "status must be confirmed or rejected", http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "only the lost pet owner can update the match", http.StatusForbidden)
			case errors.Is(err, ErrInvalidStateTransition):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "match not found", http.StatusNotFound)
			}
			return
		}

		writeJSON(w, http.StatusOK, toMatchResponse(m))
	}
}

func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID, listFilterFromQuery(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toMatchResponses(items))
	}
}

func listFinderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByFinder(r.Context(), claims.UserID, listFilterFromQuery(r))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toMatchResponses(items))
	}
}

func listFilterFromQuery(r *http.Request) ListFilter {
	f := ListFilter{Limit: 20}

	if s := strings.TrimSpace(r.URL.Query().Get("status")); s != "" {
		f.Status = Status(s)
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 1 {
		f.Offset = (page - 1) * f.Limit
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 1 && limit <= 100 {
		// recalcular offset con el límite pedido
		page := f.Offset/f.Limit + 1
		f.Limit = limit
		f.Offset = (page - 1) * limit
	}

	return f
}

func toMatchResponse(m Match) matchResponse {
	return matchResponse{
		ID:               m.ID,
		LostPetID:        m.LostPetID,
		FoundPetID:       m.FoundPetID,
		Similarity:       m.Score.Overall,
		Scores:           m.Score,
		Status:           string(m.Status),
		ConfirmationDate: m.ConfirmationDate,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toMatchResponses(items []Match) []matchResponse {
	out := make([]matchResponse, 0, len(items))
	for _, m := range items {
		out = append(out, toMatchResponse(m))
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
