package pets

import (
	"context"
	"time"

	"petradar/internal/domain/matching"
)

// LostFilter es el filtro grueso para la población de lost pets.
// Las implementaciones pueden ignorar Center/Radius (filtro fino lo hace
// el retrieval), pero Species y Status=lost son obligatorios.
type LostFilter struct {
	Species    matching.Species
	Center     *matching.Point
	RadiusKm   float64
	Date       *time.Time
	WindowDays int
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error)
	ListLost(ctx context.Context, f LostFilter) ([]Pet, error)
}

type PhotoRepository interface {
	Create(ctx context.Context, ph PetPhoto) error
	GetByID(ctx context.Context, id string) (PetPhoto, error)
	ListByPet(ctx context.Context, petID string) ([]PetPhoto, error)
	// UpdateProcessing avanza el estado del pipeline y, si status=completed,
	// persiste atributos y vector detectados.
	UpdateProcessing(ctx context.Context, photoID string, status ProcessingStatus, attrs *matching.Attributes, vector []float32) error
}
