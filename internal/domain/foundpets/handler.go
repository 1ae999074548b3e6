package foundpets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"petradar/internal/domain/matching"
	"petradar/internal/middleware"
	"petradar/internal/tasks"
)

const maxPhotoUploadBytes = 10 << 20

func RegisterRoutes(r chi.Router, svc *Service, runner *tasks.Runner) {
	r.Route("/found-pets", func(fr chi.Router) {
		fr.Post("/", reportFoundPetHandler(svc, runner))
		fr.Get("/", listMineHandler(svc))
		fr.Get("/{foundPetID}", getFoundPetHandler(svc))
	})
}

type foundPetResponse struct {
	ID                  string          `json:"id"`
	FinderUserID        string          `json:"finder_user_id"`
	Species             string          `json:"species"`
	Colors              []string        `json:"colors,omitempty"`
	DistinctiveFeatures string          `json:"distinctive_features,omitempty"`
	ApproximateAge      string          `json:"approximate_age,omitempty"`
	Size                string          `json:"size,omitempty"`
	Description         string          `json:"description,omitempty"`
	FoundDate           time.Time       `json:"found_date"`
	FoundLocation       string          `json:"found_location"`
	FoundPoint          *matching.Point `json:"found_point,omitempty"`
	PhotoURL            string          `json:"photo_url"`
	HasVector           bool            `json:"has_feature_vector"`
	CreatedAt           time.Time       `json:"created_at"`
}

type reportResponse struct {
	FoundPet foundPetResponse `json:"found_pet"`

	// Modo síncrono: resultado del pase inline.
	PotentialMatches []PotentialMatch   `json:"potential_matches,omitempty"`
	SearchMetadata   *matching.Metadata `json:"search_metadata,omitempty"`

	// Modo asíncrono: el cliente hace polling de GET /tasks/{task_id}.
	TaskID string `json:"task_id,omitempty"`
}

// reportFoundPetHandler es multipart: campos del reporte + foto.
// ?async=true encola el pase de matching y devuelve el task id.
func reportFoundPetHandler(svc *Service, runner *tasks.Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := r.ParseMultipartForm(maxPhotoUploadBytes); err != nil {
			http.Error(w, "invalid multipart body", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			http.Error(w, "photo file required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		foundDate, err := time.Parse("2006-01-02", r.FormValue("found_date"))
		if err != nil {
			http.Error(w, "found_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		var colors []string
		if raw := strings.TrimSpace(r.FormValue("colors")); raw != "" {
			for _, c := range strings.Split(raw, ",") {
				if c = strings.TrimSpace(c); c != "" {
					colors = append(colors, c)
				}
			}
		}

		fp, err := svc.Report(r.Context(), claims.UserID, ReportInput{
			Species:             r.FormValue("species"),
			Colors:              colors,
			DistinctiveFeatures: r.FormValue("distinctive_features"),
			ApproximateAge:      r.FormValue("approximate_age"),
			Size:                r.FormValue("size"),
			Description:         r.FormValue("description"),
			FoundDate:           foundDate,
			FoundLocation:       r.FormValue("found_location"),
			Photo:               file,
			PhotoSize:           header.Size,
			PhotoContentType:    header.Header.Get("Content-Type"),
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := reportResponse{FoundPet: toFoundPetResponse(fp)}

		if r.URL.Query().Get("async") == "true" {
			taskID, err := runner.Enqueue(fmt.Sprintf("find_matches_%s", fp.ID), func(ctx context.Context) (any, error) {
				result, err := svc.FindMatches(ctx, fp.ID)
				if err != nil {
					return nil, err
				}
				return map[string]any{"matches_count": len(result.Matches)}, nil
			})
			if err == nil {
				resp.TaskID = taskID
			}
			writeJSON(w, http.StatusAccepted, resp)
			return
		}

		result, err := svc.FindMatches(r.Context(), fp.ID)
		if err != nil {
			// El registro ya existe; el scoring se puede reintentar.
			writeJSON(w, http.StatusCreated, resp)
			return
		}
		resp.PotentialMatches = result.Matches
		resp.SearchMetadata = &result.Metadata

		writeJSON(w, http.StatusCreated, resp)
	}
}

func getFoundPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		fp, err := svc.GetByID(r.Context(), chi.URLParam(r, "foundPetID"))
		if err != nil {
			http.Error(w, "found pet not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toFoundPetResponse(fp))
	}
}

func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByFinder(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]foundPetResponse, 0, len(items))
		for _, fp := range items {
			out = append(out, toFoundPetResponse(fp))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toFoundPetResponse(fp FoundPet) foundPetResponse {
	return foundPetResponse{
		ID:                  fp.ID,
		FinderUserID:        fp.FinderUserID,
		Species:             string(fp.Species),
		Colors:              fp.Colors,
		DistinctiveFeatures: fp.DistinctiveFeatures,
		ApproximateAge:      string(fp.ApproximateAge),
		Size:                string(fp.Size),
		Description:         fp.Description,
		FoundDate:           fp.FoundDate,
		FoundLocation:       fp.FoundLocation,
		FoundPoint:          fp.FoundPoint,
		PhotoURL:            fp.PhotoURL,
		HasVector:           len(fp.Vector) > 0,
		CreatedAt:           fp.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
