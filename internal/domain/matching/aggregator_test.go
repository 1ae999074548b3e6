package matching

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestScorePair_WorkedExample(t *testing.T) {
	cfg := DefaultConfig()

	vec := []float32{0.1, 0.9, -0.3, 0.5}
	here := &Point{Lat: -12.0464, Lon: -77.0428}

	s := Subject{
		Vector:     vec,
		Attributes: Attributes{Species: SpeciesDog, Colors: []string{"black", "white"}},
		Location:   here,
		Date:       date(2026, 8, 3),
	}
	c := Candidate{
		PetID:      "pet-1",
		Vector:     vec,
		Attributes: Attributes{Species: SpeciesDog, Colors: []string{"black", "white"}},
		Location:   here,
		LostDate:   date(2026, 8, 1),
	}

	got, err := ScorePair(cfg, s, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// visual 1.0, attribute 1.0, location 1.0, time e^-0.2
	timeScore := math.Exp(-0.2)
	want := 0.6*1.0 + 0.2*1.0 + 0.1*1.0 + 0.1*timeScore

	if math.Abs(got.Time-timeScore) > 1e-9 {
		t.Fatalf("expected time %f for a 2-day gap, got %f", timeScore, got.Time)
	}
	if math.Abs(got.Overall-want) > 1e-9 {
		t.Fatalf("expected overall %f, got %f", want, got.Overall)
	}
	if len(got.Unavailable) != 0 {
		t.Fatalf("expected no unavailable components, got %v", got.Unavailable)
	}
}

// El orden temporal normal es lost antes que found: esa dirección recibe
// el decay exponencial; la invertida cae al piso de gap negativo.
func TestScorePair_TimeGapDirection(t *testing.T) {
	cfg := DefaultConfig()
	vec := []float32{1, 0}

	s := Subject{Vector: vec, Attributes: Attributes{Species: SpeciesDog}, Date: date(2026, 8, 11)}
	c := Candidate{Vector: vec, Attributes: Attributes{Species: SpeciesDog}, LostDate: date(2026, 8, 1)}

	got, err := ScorePair(cfg, s, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10 días lost -> found con decay 10 => e^-1
	if math.Abs(got.Time-math.Exp(-1)) > 1e-9 {
		t.Fatalf("expected exp decay %f for found-after-lost, got %f", math.Exp(-1), got.Time)
	}

	// found reportado antes de la pérdida: piso
	s.Date, c.LostDate = c.LostDate, s.Date
	got, err = ScorePair(cfg, s, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Time != cfg.GeoTime.NegativeGapScore {
		t.Fatalf("expected floor %f for found-before-lost, got %f", cfg.GeoTime.NegativeGapScore, got.Time)
	}
}

func TestScorePair_SpeciesMismatchDisqualifies(t *testing.T) {
	cfg := DefaultConfig()
	vec := []float32{1, 0}

	s := Subject{Vector: vec, Attributes: Attributes{Species: SpeciesDog}}
	c := Candidate{Vector: vec, Attributes: Attributes{Species: SpeciesCat}}

	_, err := ScorePair(cfg, s, c)
	if !errors.Is(err, ErrSpeciesMismatch) {
		t.Fatalf("expected ErrSpeciesMismatch, got %v", err)
	}
}

func TestScorePair_UnknownSpeciesStillScores(t *testing.T) {
	cfg := DefaultConfig()
	vec := []float32{1, 0}

	s := Subject{Vector: vec}
	c := Candidate{Vector: vec, Attributes: Attributes{Species: SpeciesCat}}

	got, err := ScorePair(cfg, s, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Visual != 1.0 {
		t.Fatalf("expected visual 1.0, got %f", got.Visual)
	}
	if got.Attribute != 0 {
		t.Fatalf("expected attribute 0 without species signal, got %f", got.Attribute)
	}
}

func TestScorePair_MissingComponentsAreNeutralAndFlagged(t *testing.T) {
	cfg := DefaultConfig()
	vec := []float32{1, 0}

	s := Subject{Vector: vec, Attributes: Attributes{Species: SpeciesDog}}
	c := Candidate{Vector: vec, Attributes: Attributes{Species: SpeciesDog}}

	got, err := ScorePair(cfg, s, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Location != 0.5 || got.Time != 0.5 {
		t.Fatalf("expected neutral 0.5 location/time, got %f/%f", got.Location, got.Time)
	}
	if len(got.Unavailable) != 2 {
		t.Fatalf("expected location+time unavailable, got %v", got.Unavailable)
	}
}

func TestScorePair_MatchingFeatures(t *testing.T) {
	cfg := DefaultConfig()
	vec := []float32{0.2, 0.4}
	here := &Point{Lat: 10, Lon: 10}

	s := Subject{
		Vector:     vec,
		Attributes: Attributes{Species: SpeciesCat, Colors: []string{"gray"}, Age: AgeAdult},
		Location:   here,
		Date:       date(2026, 8, 1),
	}
	c := Candidate{
		Vector:     vec,
		Attributes: Attributes{Species: SpeciesCat, Colors: []string{"gray"}, Age: AgeAdult},
		Location:   here,
		LostDate:   date(2026, 8, 1),
	}

	got, err := ScorePair(cfg, s, c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{"color": true, "age": true, "location": true, "time": true}
	if len(got.MatchingFeatures) != len(want) {
		t.Fatalf("expected features %v, got %v", want, got.MatchingFeatures)
	}
	for _, f := range got.MatchingFeatures {
		if !want[f] {
			t.Fatalf("unexpected feature %q in %v", f, got.MatchingFeatures)
		}
	}
}

func TestRank_DescendingWithLostDateTieBreak(t *testing.T) {
	older := date(2026, 7, 1)
	newer := date(2026, 8, 1)

	items := []RankedMatch{
		{PetID: "low", Score: Score{Overall: 0.7}},
		{PetID: "tie-old", LostDate: older, Score: Score{Overall: 0.9}},
		{PetID: "tie-new", LostDate: newer, Score: Score{Overall: 0.9}},
		{PetID: "top", Score: Score{Overall: 0.95}},
	}

	Rank(items)

	wantOrder := []string{"top", "tie-new", "tie-old", "low"}
	for i, want := range wantOrder {
		if items[i].PetID != want {
			t.Fatalf("position %d: expected %s, got %s (full: %+v)", i, want, items[i].PetID, items)
		}
	}
}

func TestRank_NilLostDateSortsLastOnTie(t *testing.T) {
	d := date(2026, 8, 1)
	items := []RankedMatch{
		{PetID: "no-date", Score: Score{Overall: 0.8}},
		{PetID: "dated", LostDate: d, Score: Score{Overall: 0.8}},
	}

	Rank(items)

	if items[0].PetID != "dated" {
		t.Fatalf("expected dated first on tie, got %s", items[0].PetID)
	}
}

func TestScoreCandidates_SkipsBadPairsAndRanks(t *testing.T) {
	cfg := DefaultConfig()
	vec := []float32{1, 0, 0}

	s := Subject{Vector: vec, Attributes: Attributes{Species: SpeciesDog}}

	candidates := []Candidate{
		{PetID: "wrong-dim", Vector: []float32{1, 0}, Attributes: Attributes{Species: SpeciesDog}},
		{PetID: "wrong-species", Vector: vec, Attributes: Attributes{Species: SpeciesCat}},
		{PetID: "similar", Vector: vec, Attributes: Attributes{Species: SpeciesDog}},
		{PetID: "dissimilar", Vector: []float32{-1, 0, 0}, Attributes: Attributes{Species: SpeciesDog}},
	}

	ranked, skipped := ScoreCandidates(context.Background(), cfg, s, candidates)

	if skipped != 2 {
		t.Fatalf("expected 2 skipped, got %d", skipped)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked, got %d", len(ranked))
	}
	if ranked[0].PetID != "similar" || ranked[1].PetID != "dissimilar" {
		t.Fatalf("unexpected order: %+v", ranked)
	}
}

func TestScoreCandidates_ConcurrencyMatchesSerial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Concurrency = 4

	vec := make([]float32, 16)
	for i := range vec {
		vec[i] = float32(i%5) - 2
	}
	s := Subject{Vector: vec, Attributes: Attributes{Species: SpeciesDog}}

	candidates := make([]Candidate, 50)
	for i := range candidates {
		cv := make([]float32, 16)
		for j := range cv {
			cv[j] = float32((i+j)%7) - 3
		}
		candidates[i] = Candidate{
			PetID:      string(rune('a' + i%26)),
			Vector:     cv,
			Attributes: Attributes{Species: SpeciesDog},
		}
	}

	parallel, skippedP := ScoreCandidates(context.Background(), cfg, s, candidates)

	serial := cfg
	serial.Concurrency = 1
	sequential, skippedS := ScoreCandidates(context.Background(), serial, s, candidates)

	if skippedP != skippedS || len(parallel) != len(sequential) {
		t.Fatalf("parallel/serial divergence: %d/%d items, %d/%d skipped",
			len(parallel), len(sequential), skippedP, skippedS)
	}
	for i := range parallel {
		if math.Abs(parallel[i].Score.Overall-sequential[i].Score.Overall) > 1e-12 {
			t.Fatalf("score divergence at %d: %f vs %f",
				i, parallel[i].Score.Overall, sequential[i].Score.Overall)
		}
	}
}
