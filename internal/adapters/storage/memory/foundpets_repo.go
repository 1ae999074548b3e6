package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petradar/internal/domain/foundpets"
)

// FoundPetRepo es exportado porque además de foundpets.Repository implementa
// FinderOf, que matches consume como FoundPetLookup.
type FoundPetRepo struct {
	mu   sync.RWMutex
	byID map[string]foundpets.FoundPet
}

func NewFoundPetRepo() *FoundPetRepo {
	return &FoundPetRepo{
		byID: make(map[string]foundpets.FoundPet),
	}
}

func (r *FoundPetRepo) Create(ctx context.Context, fp foundpets.FoundPet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(fp.ID) == "" {
		return errors.New("found pet id required")
	}
	if _, exists := r.byID[fp.ID]; exists {
		return errors.New("found pet already exists")
	}
	r.byID[fp.ID] = fp
	return nil
}

func (r *FoundPetRepo) Update(ctx context.Context, fp foundpets.FoundPet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[fp.ID]; !exists {
		return ErrNotFound
	}
	r.byID[fp.ID] = fp
	return nil
}

func (r *FoundPetRepo) GetByID(ctx context.Context, id string) (foundpets.FoundPet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fp, ok := r.byID[id]
	if !ok {
		return foundpets.FoundPet{}, ErrNotFound
	}
	return fp, nil
}

func (r *FoundPetRepo) ListByFinder(ctx context.Context, finderUserID string) ([]foundpets.FoundPet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]foundpets.FoundPet, 0)
	for _, fp := range r.byID {
		if fp.FinderUserID == finderUserID {
			out = append(out, fp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *FoundPetRepo) FinderOf(ctx context.Context, foundPetID string) (string, error) {
	fp, err := r.GetByID(ctx, foundPetID)
	if err != nil {
		return "", err
	}
	return fp.FinderUserID, nil
}
