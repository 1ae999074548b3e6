package matching

import (
	"context"
	"testing"
	"time"
)

func TestNewEngine_RejectsInvalidWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights = Weights{Visual: 0.9, Attribute: 0.9}

	if _, err := NewEngine(cfg, DefaultRetrieval(), &fakeSource{}); err == nil {
		t.Fatal("expected error for invalid weights")
	}
}

func TestEngine_FindMatches_ThresholdAndMetadata(t *testing.T) {
	center := Point{Lat: 0, Lon: 0}
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	lost := now.AddDate(0, 0, -2)

	vec := []float32{1, 0, 0}
	opposite := []float32{-1, 0, 0}

	src := &fakeSource{candidates: []Candidate{
		{
			PetID:      "good",
			Vector:     vec,
			Attributes: Attributes{Species: SpeciesDog, Colors: []string{"black"}},
			Location:   &Point{Lat: 0.001, Lon: 0},
			LostDate:   &lost,
		},
		{
			PetID:      "bad-visual",
			Vector:     opposite,
			Attributes: Attributes{Species: SpeciesDog, Colors: []string{"black"}},
			Location:   &Point{Lat: 0.001, Lon: 0},
			LostDate:   &lost,
		},
		{
			PetID:      "wrong-species",
			Vector:     vec,
			Attributes: Attributes{Species: SpeciesCat},
			Location:   &Point{Lat: 0.001, Lon: 0},
			LostDate:   &lost,
		},
	}}

	engine, err := NewEngine(DefaultConfig(), DefaultRetrieval(), src)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	ranked, md, err := engine.FindMatches(context.Background(), Subject{
		Vector:     vec,
		Attributes: Attributes{Species: SpeciesDog, Colors: []string{"black"}},
		Location:   &center,
		Date:       &now,
	})
	if err != nil {
		t.Fatalf("find matches: %v", err)
	}

	if len(ranked) != 1 || ranked[0].PetID != "good" {
		t.Fatalf("expected only 'good' above threshold, got %+v", ranked)
	}
	if md.TotalCandidatesConsidered != 3 {
		t.Fatalf("expected 3 considered, got %d", md.TotalCandidatesConsidered)
	}
	// bad-visual queda bajo el threshold; wrong-species se descarta por par
	if md.FilteredCandidates != 2 {
		t.Fatalf("expected 2 filtered, got %d", md.FilteredCandidates)
	}
	if md.DegradedSearch {
		t.Fatal("expected non-degraded search")
	}
}

func TestEngine_FindMatches_DegradedWithoutLocation(t *testing.T) {
	vec := []float32{1, 0}
	src := &fakeSource{candidates: []Candidate{
		{PetID: "a", Vector: vec, Attributes: Attributes{Species: SpeciesCat}},
	}}

	engine, err := NewEngine(DefaultConfig(), DefaultRetrieval(), src)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	_, md, err := engine.FindMatches(context.Background(), Subject{
		Vector:     vec,
		Attributes: Attributes{Species: SpeciesCat},
	})
	if err != nil {
		t.Fatalf("find matches: %v", err)
	}
	if !md.DegradedSearch {
		t.Fatal("expected DegradedSearch flag")
	}
}
