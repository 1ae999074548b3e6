package pets

import (
	"context"

	"petradar/internal/domain/matching"
)

// CandidateSource adapta los repos de pets al motor de matching:
// lista los lost pets de la especie y los mapea a candidatos puntuables.
// Pets sin foto procesada (sin vector) no son comparables y se omiten.
type CandidateSource struct {
	repo   Repository
	photos PhotoRepository
}

func NewCandidateSource(repo Repository, photos PhotoRepository) *CandidateSource {
	return &CandidateSource{repo: repo, photos: photos}
}

func (cs *CandidateSource) ListLostCandidates(ctx context.Context, f matching.CandidateFilter) ([]matching.Candidate, error) {
	lost, err := cs.repo.ListLost(ctx, LostFilter{
		Species:    f.Species,
		Center:     f.Center,
		RadiusKm:   f.RadiusKm,
		Date:       f.Date,
		WindowDays: f.WindowDays,
		Limit:      1000,
	})
	if err != nil {
		return nil, err
	}

	out := make([]matching.Candidate, 0, len(lost))
	for _, p := range lost {
		photo, ok := cs.mainProcessedPhoto(ctx, p.ID)
		if !ok {
			continue
		}

		attrs := matching.Attributes{Species: p.Species}
		if photo.Attributes != nil {
			attrs = *photo.Attributes
			// La especie declarada por el dueño manda sobre la detectada.
			attrs.Species = p.Species
		}
		// Lo declarado en el registro complementa lo detectado.
		if attrs.Breed == nil && p.Breed != "" {
			attrs.Breed = &matching.BreedRef{Name: p.Breed, Confidence: 1.0}
		}
		if len(attrs.Colors) == 0 {
			attrs.Colors = p.Colors
		}
		if attrs.Age == "" {
			attrs.Age = p.Age
		}

		out = append(out, matching.Candidate{
			PetID:      p.ID,
			Vector:     photo.Vector,
			Attributes: attrs,
			Location:   p.LostPoint,
			LostDate:   p.LostDate,
		})
	}

	return out, nil
}

// mainProcessedPhoto elige la foto principal si está procesada,
// si no la primera con vector disponible.
func (cs *CandidateSource) mainProcessedPhoto(ctx context.Context, petID string) (PetPhoto, bool) {
	photos, err := cs.photos.ListByPet(ctx, petID)
	if err != nil || len(photos) == 0 {
		return PetPhoto{}, false
	}

	var fallback *PetPhoto
	for i := range photos {
		ph := photos[i]
		if ph.ProcessingStatus != ProcessingCompleted || len(ph.Vector) == 0 {
			continue
		}
		if ph.IsMain {
			return ph, true
		}
		if fallback == nil {
			fallback = &photos[i]
		}
	}

	if fallback != nil {
		return *fallback, true
	}
	return PetPhoto{}, false
}
