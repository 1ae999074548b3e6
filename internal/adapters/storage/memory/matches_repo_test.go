package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"petradar/internal/domain/foundpets"
	"petradar/internal/domain/matches"
	"petradar/internal/domain/matching"
	"petradar/internal/domain/pets"
)

func seedMatchWorld(t *testing.T) (matches.Repository, pets.Repository, *FoundPetRepo) {
	t.Helper()
	ctx := context.Background()

	petRepo := NewPetRepo()
	fpRepo := NewFoundPetRepo()
	repo := NewMatchRepo(petRepo, fpRepo)

	for i, owner := range []string{"owner-a", "owner-a", "owner-b"} {
		if err := petRepo.Create(ctx, pets.Pet{
			ID:          fmt.Sprintf("lost-%d", i),
			OwnerUserID: owner,
			Species:     matching.SpeciesDog,
			Status:      pets.StatusLost,
			CreatedAt:   time.Now(),
		}); err != nil {
			t.Fatalf("seed pet: %v", err)
		}
	}
	for i, finder := range []string{"finder-a", "finder-b"} {
		if err := fpRepo.Create(ctx, foundpets.FoundPet{
			ID:           fmt.Sprintf("found-%d", i),
			FinderUserID: finder,
			Species:      matching.SpeciesDog,
			CreatedAt:    time.Now(),
		}); err != nil {
			t.Fatalf("seed found pet: %v", err)
		}
	}

	return repo, petRepo, fpRepo
}

func mustUpsert(t *testing.T, repo matches.Repository, id, lostID, foundID string, overall float64, st matches.Status) {
	t.Helper()

	m := matches.Match{
		ID:         id,
		LostPetID:  lostID,
		FoundPetID: foundID,
		Score:      matching.Score{Overall: overall},
		Status:     st,
		CreatedAt:  time.Now(),
	}
	if _, created, err := repo.Upsert(context.Background(), m); err != nil || !created {
		t.Fatalf("upsert %s: created=%v err=%v", id, created, err)
	}
}

func TestMatchRepo_UpsertIsUniquePerPair(t *testing.T) {
	repo, _, _ := seedMatchWorld(t)
	ctx := context.Background()

	first := matches.Match{ID: "m1", LostPetID: "lost-0", FoundPetID: "found-0", Score: matching.Score{Overall: 0.8}}
	if _, created, err := repo.Upsert(ctx, first); err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}

	dup := matches.Match{ID: "m2", LostPetID: "lost-0", FoundPetID: "found-0", Score: matching.Score{Overall: 0.9}}
	got, created, err := repo.Upsert(ctx, dup)
	if err != nil {
		t.Fatalf("dup upsert: %v", err)
	}
	if created || got.ID != "m1" {
		t.Fatalf("expected existing match back, got created=%v id=%s", created, got.ID)
	}

	if _, err := repo.GetByPair(ctx, "lost-0", "found-0"); err != nil {
		t.Fatalf("get by pair: %v", err)
	}
}

func TestMatchRepo_ListByLostPetOwner(t *testing.T) {
	repo, _, _ := seedMatchWorld(t)
	ctx := context.Background()

	mustUpsert(t, repo, "m1", "lost-0", "found-0", 0.7, matches.StatusPending)
	mustUpsert(t, repo, "m2", "lost-1", "found-1", 0.9, matches.StatusConfirmed)
	mustUpsert(t, repo, "m3", "lost-2", "found-0", 0.8, matches.StatusPending) // owner-b

	got, err := repo.ListByLostPetOwner(ctx, "owner-a", matches.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// Ordenado por similarity desc
	if len(got) != 2 || got[0].ID != "m2" || got[1].ID != "m1" {
		t.Fatalf("unexpected listing: %+v", got)
	}

	pending, err := repo.ListByLostPetOwner(ctx, "owner-a", matches.ListFilter{Status: matches.StatusPending})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "m1" {
		t.Fatalf("expected only m1 pending, got %+v", pending)
	}
}

func TestMatchRepo_ListByFinder(t *testing.T) {
	repo, _, _ := seedMatchWorld(t)
	ctx := context.Background()

	mustUpsert(t, repo, "m1", "lost-0", "found-0", 0.7, matches.StatusPending) // finder-a
	mustUpsert(t, repo, "m2", "lost-1", "found-1", 0.9, matches.StatusPending) // finder-b

	got, err := repo.ListByFinder(ctx, "finder-b", matches.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != "m2" {
		t.Fatalf("expected only finder-b match, got %+v", got)
	}
}

func TestMatchRepo_Pagination(t *testing.T) {
	repo, _, _ := seedMatchWorld(t)
	ctx := context.Background()

	mustUpsert(t, repo, "m1", "lost-0", "found-0", 0.9, matches.StatusPending)
	mustUpsert(t, repo, "m2", "lost-1", "found-0", 0.8, matches.StatusPending)
	mustUpsert(t, repo, "m3", "lost-0", "found-1", 0.7, matches.StatusPending)

	page, err := repo.ListByLostPetOwner(ctx, "owner-a", matches.ListFilter{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || page[0].ID != "m2" {
		t.Fatalf("expected second page [m2], got %+v", page)
	}

	empty, err := repo.ListByLostPetOwner(ctx, "owner-a", matches.ListFilter{Offset: 10})
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %+v", empty)
	}
}
