package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"petradar/internal/domain/matching"
	"petradar/internal/domain/pets"
)

type photoRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.PetPhoto
}

func NewPhotoRepo() pets.PhotoRepository {
	return &photoRepo{
		byID: make(map[string]pets.PetPhoto),
	}
}

func (r *photoRepo) Create(ctx context.Context, ph pets.PetPhoto) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(ph.ID) == "" {
		return errors.New("photo id required")
	}
	if _, exists := r.byID[ph.ID]; exists {
		return errors.New("photo already exists")
	}
	r.byID[ph.ID] = ph
	return nil
}

func (r *photoRepo) GetByID(ctx context.Context, id string) (pets.PetPhoto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ph, ok := r.byID[id]
	if !ok {
		return pets.PetPhoto{}, ErrNotFound
	}
	return ph, nil
}

func (r *photoRepo) ListByPet(ctx context.Context, petID string) ([]pets.PetPhoto, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.PetPhoto, 0)
	for _, ph := range r.byID {
		if ph.PetID == petID {
			out = append(out, ph)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *photoRepo) UpdateProcessing(ctx context.Context, photoID string, status pets.ProcessingStatus, attrs *matching.Attributes, vector []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ph, ok := r.byID[photoID]
	if !ok {
		return ErrNotFound
	}

	ph.ProcessingStatus = status
	if status == pets.ProcessingCompleted {
		ph.Attributes = attrs
		ph.Vector = vector
	}
	ph.UpdatedAt = time.Now()
	r.byID[photoID] = ph
	return nil
}
