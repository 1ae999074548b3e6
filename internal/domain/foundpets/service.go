package foundpets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"petradar/internal/domain/matches"
	"petradar/internal/domain/matching"
	"petradar/internal/platform/logger"
	"petradar/internal/ports/geocode"
	"petradar/internal/ports/objstore"
	"petradar/internal/ports/vision"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

type Service struct {
	repo     Repository
	engine   *matching.Engine
	matches  *matches.Service
	geocoder geocode.Geocoder
	detector vision.Detector
	store    objstore.Store
	log      logger.Logger
	now      func() time.Time
}

func NewService(
	repo Repository,
	engine *matching.Engine,
	matchesSvc *matches.Service,
	geocoder geocode.Geocoder,
	detector vision.Detector,
	store objstore.Store,
	log logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		engine:   engine,
		matches:  matchesSvc,
		geocoder: geocoder,
		detector: detector,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

type ReportInput struct {
	Species             string
	Colors              []string
	DistinctiveFeatures string
	ApproximateAge      string
	Size                string
	Description         string
	FoundDate           time.Time
	FoundLocation       string

	Photo            io.Reader
	PhotoSize        int64
	PhotoContentType string
}

// Report crea el registro del found pet: guarda la foto, corre
// detect_and_embed y geocodifica la ubicación. Ningún fallo de los
// colaboradores externos es fatal: sin detección el registro queda sin
// vector (no participa del matching visual); sin geocoding queda sin
// coordenadas (búsqueda degradada).
func (s *Service) Report(ctx context.Context, finderUserID string, in ReportInput) (FoundPet, error) {
	if strings.TrimSpace(finderUserID) == "" {
		return FoundPet{}, ErrInvalidInput
	}
	species := matching.Species(strings.TrimSpace(in.Species))
	if species != matching.SpeciesDog && species != matching.SpeciesCat {
		return FoundPet{}, ErrInvalidInput
	}
	if in.FoundDate.IsZero() || strings.TrimSpace(in.FoundLocation) == "" {
		return FoundPet{}, ErrInvalidInput
	}
	if in.Photo == nil {
		return FoundPet{}, ErrInvalidInput
	}

	id := uuid.NewString()
	key := fmt.Sprintf("found_pets/%s", id)

	url, err := s.store.Put(ctx, key, in.Photo, in.PhotoSize, in.PhotoContentType)
	if err != nil {
		return FoundPet{}, err
	}

	fp := FoundPet{
		ID:                  id,
		FinderUserID:        finderUserID,
		Species:             species,
		Colors:              in.Colors,
		DistinctiveFeatures: strings.TrimSpace(in.DistinctiveFeatures),
		ApproximateAge:      matching.AgeBucket(strings.TrimSpace(in.ApproximateAge)),
		Size:                matching.SizeBucket(strings.TrimSpace(in.Size)),
		Description:         strings.TrimSpace(in.Description),
		FoundDate:           in.FoundDate,
		FoundLocation:       strings.TrimSpace(in.FoundLocation),
		PhotoURL:            url,
		PhotoPath:           key,
		CreatedAt:           s.now(),
	}

	if pt, err := s.geocoder.Geocode(ctx, fp.FoundLocation); err == nil {
		fp.FoundPoint = &pt
	} else {
		s.log.Warn("geocoding failed, degraded search", map[string]any{
			"found_pet_id": id, "location": fp.FoundLocation,
		})
	}

	if obj, err := s.store.Get(ctx, key); err == nil {
		det, derr := s.detector.DetectAndEmbed(ctx, obj)
		_ = obj.Close()
		if derr == nil {
			attrs := det.Attributes
			// La especie declarada por el finder manda sobre la detectada.
			attrs.Species = species
			fp.Attributes = &attrs
			fp.Vector = det.Vector
		} else {
			s.log.Warn("detection failed, record kept without vector", map[string]any{
				"found_pet_id": id, "error": derr.Error(),
			})
		}
	}

	if err := s.repo.Create(ctx, fp); err != nil {
		return FoundPet{}, err
	}
	return fp, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (FoundPet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByFinder(ctx context.Context, finderUserID string) ([]FoundPet, error) {
	return s.repo.ListByFinder(ctx, finderUserID)
}

// PotentialMatch es una fila del resultado del pase de scoring.
type PotentialMatch struct {
	MatchID    string         `json:"match_id"`
	LostPetID  string         `json:"pet_id"`
	Similarity float64        `json:"similarity"`
	Scores     matching.Score `json:"scores"`
	LostDate   *time.Time     `json:"lost_date,omitempty"`
}

// MatchResult agrupa los matches rankeados con la metadata de búsqueda.
type MatchResult struct {
	Matches  []PotentialMatch  `json:"potential_matches"`
	Metadata matching.Metadata `json:"search_metadata"`
}

// FindMatches corre el pase completo para un found pet ya registrado y
// persiste cada candidato que superó el threshold como Match (upsert
// idempotente: correr dos veces no duplica filas ni cambia el ranking).
func (s *Service) FindMatches(ctx context.Context, foundPetID string) (MatchResult, error) {
	fp, err := s.repo.GetByID(ctx, foundPetID)
	if err != nil {
		return MatchResult{}, err
	}
	if len(fp.Vector) == 0 {
		// Sin vector no hay comparación visual posible.
		return MatchResult{}, nil
	}

	subject := s.subjectFor(fp)

	ranked, md, err := s.engine.FindMatches(ctx, subject)
	if err != nil {
		return MatchResult{}, err
	}

	out := MatchResult{Metadata: md, Matches: make([]PotentialMatch, 0, len(ranked))}
	for _, rm := range ranked {
		m, _, err := s.matches.CreateFromScore(ctx, rm.PetID, fp.ID, rm.Score)
		if err != nil {
			// Un fallo de persistencia por par no aborta el batch.
			s.log.Error("match upsert failed", map[string]any{
				"lost_pet_id": rm.PetID, "found_pet_id": fp.ID, "error": err.Error(),
			})
			out.Metadata.FilteredCandidates++
			continue
		}
		out.Matches = append(out.Matches, PotentialMatch{
			MatchID:    m.ID,
			LostPetID:  rm.PetID,
			Similarity: rm.Score.Overall,
			Scores:     rm.Score,
			LostDate:   rm.LostDate,
		})
	}

	s.log.Info("match pass completed", map[string]any{
		"found_pet_id": fp.ID,
		"matches":      len(out.Matches),
		"considered":   md.TotalCandidatesConsidered,
		"degraded":     md.DegradedSearch,
	})

	return out, nil
}

func (s *Service) subjectFor(fp FoundPet) matching.Subject {
	attrs := matching.Attributes{
		Species: fp.Species,
		Colors:  fp.Colors,
		Age:     fp.ApproximateAge,
		Size:    fp.Size,
	}
	if fp.Attributes != nil {
		attrs = *fp.Attributes
		attrs.Species = fp.Species
		// Lo declarado por el finder complementa lo detectado.
		if len(attrs.Colors) == 0 {
			attrs.Colors = fp.Colors
		}
		if attrs.Age == "" {
			attrs.Age = fp.ApproximateAge
		}
		if attrs.Size == "" {
			attrs.Size = fp.Size
		}
	}

	date := fp.FoundDate
	return matching.Subject{
		Vector:     fp.Vector,
		Attributes: attrs,
		Location:   fp.FoundPoint,
		Date:       &date,
	}
}
