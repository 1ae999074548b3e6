package cv_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	mem "petradar/internal/adapters/storage/memory"
	visionstub "petradar/internal/adapters/vision/stub"
	"petradar/internal/domain/cv"
	"petradar/internal/domain/matching"
	"petradar/internal/domain/pets"
)

func seedPhoto(t *testing.T, repo pets.PhotoRepository, id string, vector []float32) {
	t.Helper()
	ctx := context.Background()

	if err := repo.Create(ctx, pets.PetPhoto{ID: id, PetID: "pet-" + id}); err != nil {
		t.Fatalf("seed photo %s: %v", id, err)
	}
	if len(vector) > 0 {
		if err := repo.UpdateProcessing(ctx, id, pets.ProcessingCompleted, nil, vector); err != nil {
			t.Fatalf("complete photo %s: %v", id, err)
		}
	}
}

func newService(t *testing.T) (*cv.Service, pets.PhotoRepository) {
	t.Helper()
	repo := mem.NewPhotoRepo()
	return cv.NewService(repo, visionstub.New(), matching.DefaultConfig()), repo
}

func TestAnalyzeImage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	det, err := svc.AnalyzeImage(ctx, bytes.NewReader([]byte("dog-photo-bytes")))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(det.Vector) == 0 || det.Confidence <= 0 {
		t.Fatalf("expected detection with vector, got %+v", det)
	}

	if _, err := svc.AnalyzeImage(ctx, nil); !errors.Is(err, cv.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for nil image, got %v", err)
	}
}

func TestCompareImages_RanksBySimilarity(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	seedPhoto(t, repo, "source", []float32{1, 0, 0})
	seedPhoto(t, repo, "same", []float32{1, 0, 0})
	seedPhoto(t, repo, "opposite", []float32{-1, 0, 0})

	got, err := svc.CompareImages(ctx, cv.CompareInput{
		SourcePhotoID:  "source",
		TargetPhotoIDs: []string{"opposite", "same"},
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 comparisons, got %d", len(got))
	}
	if got[0].TargetID != "same" || got[1].TargetID != "opposite" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Scores.Visual != 1.0 {
		t.Fatalf("expected visual 1.0 for identical vectors, got %f", got[0].Scores.Visual)
	}
}

func TestCompareImages_InvalidWeightsRejectedBeforeScoring(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	seedPhoto(t, repo, "source", []float32{1, 0})
	seedPhoto(t, repo, "target", []float32{1, 0})

	bad := matching.Weights{Visual: 0.9, Attribute: 0.9}
	if _, err := svc.CompareImages(ctx, cv.CompareInput{
		SourcePhotoID:  "source",
		TargetPhotoIDs: []string{"target"},
		Weights:        &bad,
	}); err == nil {
		t.Fatal("expected error for invalid weights")
	}
}

func TestCompareImages_CustomWeightsChangeOverall(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	seedPhoto(t, repo, "source", []float32{1, 0})
	seedPhoto(t, repo, "target", []float32{1, 0})

	allVisual := matching.Weights{Visual: 1.0}
	got, err := svc.CompareImages(ctx, cv.CompareInput{
		SourcePhotoID:  "source",
		TargetPhotoIDs: []string{"target"},
		Weights:        &allVisual,
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if got[0].Scores.Overall != 1.0 {
		t.Fatalf("expected overall 1.0 with all-visual weights, got %f", got[0].Scores.Overall)
	}
}

func TestCompareImages_SourceWithoutVector(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	seedPhoto(t, repo, "pending", nil) // sin procesar
	seedPhoto(t, repo, "target", []float32{1, 0})

	if _, err := svc.CompareImages(ctx, cv.CompareInput{
		SourcePhotoID:  "pending",
		TargetPhotoIDs: []string{"target"},
	}); !errors.Is(err, cv.ErrPhotoNotReady) {
		t.Fatalf("expected ErrPhotoNotReady, got %v", err)
	}

	if _, err := svc.CompareImages(ctx, cv.CompareInput{
		SourcePhotoID:  "missing",
		TargetPhotoIDs: []string{"target"},
	}); !errors.Is(err, cv.ErrPhotoNotReady) {
		t.Fatalf("expected ErrPhotoNotReady for missing source, got %v", err)
	}
}

func TestCompareImages_UnreadyTargetsAreExcluded(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	seedPhoto(t, repo, "source", []float32{1, 0})
	seedPhoto(t, repo, "ready", []float32{0, 1})
	seedPhoto(t, repo, "pending", nil)

	got, err := svc.CompareImages(ctx, cv.CompareInput{
		SourcePhotoID:  "source",
		TargetPhotoIDs: []string{"ready", "pending", "missing"},
	})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(got) != 1 || got[0].TargetID != "ready" {
		t.Fatalf("expected only the processed target, got %+v", got)
	}

	// Ningún target utilizable
	if _, err := svc.CompareImages(ctx, cv.CompareInput{
		SourcePhotoID:  "source",
		TargetPhotoIDs: []string{"pending", "missing"},
	}); !errors.Is(err, cv.ErrPhotoNotReady) {
		t.Fatalf("expected ErrPhotoNotReady without usable targets, got %v", err)
	}
}
