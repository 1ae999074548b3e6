package pets

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

const maxPhotoUploadBytes = 10 << 20 // 10MB, igual que el límite del detector

func RegisterRoutes(r chi.Router, svc *Service, runner *tasks.Runner) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))
		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}/status", updateStatusHandler(svc))
		pr.Post("/{petID}/photos", uploadPhotoHandler(svc, runner))
		pr.Get("/{petID}/photos", listPhotosHandler(svc))
	})
}

type createPetRequest struct {
	Name        string   `json:"name"`
	Species     string   `json:"species"`
	Breed       string   `json:"breed"`
	Colors      []string `json:"colors"`
	Age         string   `json:"age"`
	Gender      string   `json:"gender"`
	Description string   `json:"description"`
}

type petResponse struct {
	ID           string          `json:"id"`
	OwnerUserID  string          `json:"owner_user_id"`
	Name         string          `json:"name"`
	Species      string          `json:"species"`
	Breed        string          `json:"breed,omitempty"`
	Colors       []string        `json:"colors,omitempty"`
	Age          string          `json:"age,omitempty"`
	Gender       string          `json:"gender,omitempty"`
	Status       string          `json:"status"`
	Description  string          `json:"description,omitempty"`
	LostDate     *time.Time      `json:"lost_date,omitempty"`
	LostLocation string          `json:"lost_location,omitempty"`
	LostPoint    *matching.Point `json:"lost_point,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type photoResponse struct {
	ID               string     `json:"id"`
	PetID            string     `json:"pet_id"`
	URL              string     `json:"url"`
	IsMain           bool       `json:"is_main"`
	Description      string     `json:"description,omitempty"`
	ProcessingStatus string     `json:"processing_status"`
	TaskID           string     `json:"task_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type updateStatusRequest struct {
	Status          string `json:"status"`
	LostDate        string `json:"lost_date"` // YYYY-MM-DD
	LostLocation    string `json:"lost_location"`
	LostDescription string `json:"lost_description"`
}

func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Colors:      req.Colors,
			Age:         req.Age,
			Gender:      req.Gender,
			Description: req.Description,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toPetResponse(p))
	}
}

func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
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

		var lostDate *time.Time
		if strings.TrimSpace(req.LostDate) != "" {
			t, err := time.Parse("2006-01-02", req.LostDate)
			if err != nil {
				http.Error(w, "lost_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			lostDate = &t
		}

		p, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "petID"), claims.UserID, StatusUpdateInput{
			Status:          Status(req.Status),
			LostDate:        lostDate,
			LostLocation:    req.LostLocation,
			LostDescription: req.LostDescription,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "pet not found", http.StatusNotFound)
			}
			return
		}

		writeJSON(w, http.StatusOK, toPetResponse(p))
	}
}

func uploadPhotoHandler(svc *Service, runner *tasks.Runner) http.HandlerFunc {
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

		petID := chi.URLParam(r, "petID")
		ph, err := svc.AddPhoto(r.Context(), petID, claims.UserID, AddPhotoInput{
			Content:     file,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
			IsMain:      r.FormValue("is_main") == "true",
			Description: r.FormValue("description"),
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		// La extracción de atributos/vector corre fuera de banda:
		// el cliente hace polling de processing_status o del task.
		taskID, err := runner.Enqueue(fmt.Sprintf("process_photo_%s", ph.ID), func(ctx context.Context) (any, error) {
			if err := svc.ProcessPhoto(ctx, ph.ID); err != nil {
				return nil, err
			}
			return map[string]any{"photo_id": ph.ID}, nil
		})
		if err != nil {
			// La foto quedó pending; se puede reprocesar luego.
			taskID = ""
		}

		resp := toPhotoResponse(ph)
		resp.TaskID = taskID
		writeJSON(w, http.StatusAccepted, resp)
	}
}

func listPhotosHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		p, err := svc.GetByID(r.Context(), petID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if p.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		photos, err := svc.ListPhotos(r.Context(), petID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]photoResponse, 0, len(photos))
		for _, ph := range photos {
			out = append(out, toPhotoResponse(ph))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:           p.ID,
		OwnerUserID:  p.OwnerUserID,
		Name:         p.Name,
		Species:      string(p.Species),
		Breed:        p.Breed,
		Colors:       p.Colors,
		Age:          string(p.Age),
		Gender:       string(p.Gender),
		Status:       string(p.Status),
		Description:  p.Description,
		LostDate:     p.LostDate,
		LostLocation: p.LostLocation,
		LostPoint:    p.LostPoint,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func toPhotoResponse(ph PetPhoto) photoResponse {
	return photoResponse{
		ID:               ph.ID,
		PetID:            ph.PetID,
		URL:              ph.URL,
		IsMain:           ph.IsMain,
		Description:      ph.Description,
		ProcessingStatus: string(ph.ProcessingStatus),
		CreatedAt:        ph.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
