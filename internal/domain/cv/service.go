package cv

import (
	"context"
	"errors"
	"io"

	"petradar/internal/domain/matching"
	"petradar/internal/domain/pets"
	"petradar/internal/ports/vision"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrPhotoNotReady = errors.New("photo not found or not processed")
)

// Service expone scoring ad-hoc sobre fotos ya procesadas, sin pasar por
// el candidate retrieval persistido: el caller elige targets y pesos.
type Service struct {
	photos   pets.PhotoRepository
	detector vision.Detector
	base     matching.Config
}

func NewService(photos pets.PhotoRepository, detector vision.Detector, base matching.Config) *Service {
	return &Service{photos: photos, detector: detector, base: base}
}

// AnalyzeImage es el passthrough a detect_and_embed.
func (s *Service) AnalyzeImage(ctx context.Context, image io.Reader) (vision.Detection, error) {
	if image == nil {
		return vision.Detection{}, ErrInvalidInput
	}
	return s.detector.DetectAndEmbed(ctx, image)
}

// Comparison es el resultado por target de CompareImages.
type Comparison struct {
	TargetID string         `json:"target_id"`
	Scores   matching.Score `json:"similarity"`
}

type CompareInput struct {
	SourcePhotoID  string
	TargetPhotoIDs []string
	Weights        *matching.Weights // nil => pesos configurados del motor
}

// CompareImages puntúa la foto source contra los targets con los pesos del
// caller. Pesos inválidos se rechazan antes de puntuar nada. Targets sin
// vector o con dimensión incompatible se excluyen, nunca abortan el batch.
func (s *Service) CompareImages(ctx context.Context, in CompareInput) ([]Comparison, error) {
	if in.SourcePhotoID == "" || len(in.TargetPhotoIDs) == 0 {
		return nil, ErrInvalidInput
	}

	cfg := s.base
	if in.Weights != nil {
		if err := in.Weights.Validate(); err != nil {
			return nil, err
		}
		cfg.Weights = *in.Weights
	}

	source, err := s.photos.GetByID(ctx, in.SourcePhotoID)
	if err != nil || len(source.Vector) == 0 {
		return nil, ErrPhotoNotReady
	}

	subject := matching.Subject{Vector: source.Vector}
	if source.Attributes != nil {
		subject.Attributes = *source.Attributes
	}

	candidates := make([]matching.Candidate, 0, len(in.TargetPhotoIDs))
	for _, id := range in.TargetPhotoIDs {
		ph, err := s.photos.GetByID(ctx, id)
		if err != nil || len(ph.Vector) == 0 {
			continue
		}
		c := matching.Candidate{PetID: ph.ID, Vector: ph.Vector}
		if ph.Attributes != nil {
			c.Attributes = *ph.Attributes
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil, ErrPhotoNotReady
	}

	// La comparación ad-hoc no conoce ubicación ni fechas: esos componentes
	// puntúan como ausentes según la política configurada.
	ranked, _ := matching.ScoreCandidates(ctx, cfg, subject, candidates)

	out := make([]Comparison, 0, len(ranked))
	for _, rm := range ranked {
		out = append(out, Comparison{TargetID: rm.PetID, Scores: rm.Score})
	}
	return out, nil
}
