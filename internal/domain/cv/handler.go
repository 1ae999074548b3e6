package cv

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"petradar/internal/domain/matching"
	"petradar/internal/middleware"
	"petradar/internal/ports/vision"
)

const maxImageBytes = 10 << 20

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cv", func(cr chi.Router) {
		cr.Post("/analyze-image", analyzeImageHandler(svc))
		cr.Post("/compare-images", compareImagesHandler(svc))
	})
}

type analyzeResponse struct {
	Attributes matching.Attributes `json:"detected_attributes"`
	Confidence float64             `json:"confidence"`
	VectorDim  int                 `json:"feature_vector_dim"`
}

type compareRequest struct {
	SourceImageID  string            `json:"source_image_id"`
	TargetImageIDs []string          `json:"target_image_ids"`
	FeatureWeights *matching.Weights `json:"feature_weights"`
}

type compareResponse struct {
	Comparisons []Comparison `json:"comparisons"`
}

func analyzeImageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			http.Error(w, "invalid multipart body", http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "image file required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		det, err := svc.AnalyzeImage(r.Context(), file)
		if err != nil {
			switch {
			case errors.Is(err, vision.ErrNoAnimalDetected), errors.Is(err, vision.ErrLowConfidence):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, analyzeResponse{
			Attributes: det.Attributes,
			Confidence: det.Confidence,
			VectorDim:  len(det.Vector),
		})
	}
}

func compareImagesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req compareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		comparisons, err := svc.CompareImages(r.Context(), CompareInput{
			SourcePhotoID:  req.SourceImageID,
			TargetPhotoIDs: req.TargetImageIDs,
			Weights:        req.FeatureWeights,
		})
		if err != nil {
			switch {
			case errors.Is(err, matching.ErrInvalidWeights), errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrPhotoNotReady):
				http.Error(w, err.Error(), http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, compareResponse{Comparisons: comparisons})
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para no crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
