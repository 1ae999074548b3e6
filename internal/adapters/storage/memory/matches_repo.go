package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"petradar/internal/domain/matches"
	"petradar/internal/domain/pets"
)

type matchRepo struct {
	mu     sync.Mutex
	byID   map[string]matches.Match
	byPair map[string]string // "lostID|foundID" -> match id

	pets      pets.Repository
	foundPets matches.FoundPetLookup
}

// NewMatchRepo necesita los repos vecinos para resolver ownership en los
// listados (en Postgres esto es un JOIN).
func NewMatchRepo(petsRepo pets.Repository, foundPets matches.FoundPetLookup) matches.Repository {
	return &matchRepo{
		byID:      make(map[string]matches.Match),
		byPair:    make(map[string]string),
		pets:      petsRepo,
		foundPets: foundPets,
	}
}

func pairKey(lostPetID, foundPetID string) string {
	return lostPetID + "|" + foundPetID
}

// Upsert es atómico bajo el mutex: dos pases concurrentes sobre el mismo par
// nunca producen dos filas.
func (r *matchRepo) Upsert(ctx context.Context, m matches.Match) (matches.Match, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.LostPetID) == "" || strings.TrimSpace(m.FoundPetID) == "" {
		return matches.Match{}, false, errors.New("match pair required")
	}

	key := pairKey(m.LostPetID, m.FoundPetID)
	if existingID, ok := r.byPair[key]; ok {
		return r.byID[existingID], false, nil
	}

	r.byID[m.ID] = m
	r.byPair[key] = m.ID
	return m, true, nil
}

func (r *matchRepo) Update(ctx context.Context, m matches.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[m.ID]; !exists {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *matchRepo) GetByID(ctx context.Context, id string) (matches.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return matches.Match{}, ErrNotFound
	}
	return m, nil
}

func (r *matchRepo) GetByPair(ctx context.Context, lostPetID, foundPetID string) (matches.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byPair[pairKey(lostPetID, foundPetID)]
	if !ok {
		return matches.Match{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *matchRepo) ListByLostPetOwner(ctx context.Context, ownerUserID string, f matches.ListFilter) ([]matches.Match, error) {
	all := r.snapshot()

	out := make([]matches.Match, 0)
	for _, m := range all {
		p, err := r.pets.GetByID(ctx, m.LostPetID)
		if err != nil || p.OwnerUserID != ownerUserID {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, m)
	}

	return paginate(out, f), nil
}

func (r *matchRepo) ListByFinder(ctx context.Context, finderUserID string, f matches.ListFilter) ([]matches.Match, error) {
	all := r.snapshot()

	out := make([]matches.Match, 0)
	for _, m := range all {
		finder, err := r.foundPets.FinderOf(ctx, m.FoundPetID)
		if err != nil || finder != finderUserID {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		out = append(out, m)
	}

	return paginate(out, f), nil
}

// snapshot copia los matches fuera del lock: los listados consultan repos
// vecinos y no queremos hacerlo con el mutex tomado.
func (r *matchRepo) snapshot() []matches.Match {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]matches.Match, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	return out
}

// paginate ordena por similarity desc y aplica offset/limit.
func paginate(items []matches.Match, f matches.ListFilter) []matches.Match {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Score.Overall > items[j].Score.Overall
	})

	if f.Offset > 0 {
		if f.Offset >= len(items) {
			return []matches.Match{}
		}
		items = items[f.Offset:]
	}
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items
}
