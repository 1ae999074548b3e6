package matching

import (
	"math"
	"testing"
	"time"
)

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Lima centro a Callao: ~8 km
	lima := Point{Lat: -12.0464, Lon: -77.0428}
	callao := Point{Lat: -12.0566, Lon: -77.1181}

	d := HaversineKm(lima, callao)
	if d < 7 || d > 10 {
		t.Fatalf("expected ~8km Lima-Callao, got %f", d)
	}
}

func TestHaversineKm_SamePoint(t *testing.T) {
	p := Point{Lat: 40.7128, Lon: -74.0060}
	if d := HaversineKm(p, p); d != 0 {
		t.Fatalf("expected 0 for same point, got %f", d)
	}
}

func TestLocationScore_Decay(t *testing.T) {
	cfg := DefaultGeoTime()
	a := &Point{Lat: 0, Lon: 0}

	// Distancia cero => score 1
	got, ok := LocationScore(cfg, a, a)
	if !ok || math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected 1.0 at zero distance, got %f", got)
	}

	// Más lejos => score estrictamente menor
	b := &Point{Lat: 0.2, Lon: 0}
	far, ok := LocationScore(cfg, a, b)
	if !ok || far >= got {
		t.Fatalf("expected decay with distance, got %f", far)
	}
}

func TestLocationScore_MissingIsNeutral(t *testing.T) {
	cfg := DefaultGeoTime()

	got, ok := LocationScore(cfg, nil, &Point{})
	if ok {
		t.Fatal("expected unavailable for nil point")
	}
	if got != 0.5 {
		t.Fatalf("expected neutral 0.5, got %f", got)
	}
}

func TestLocationScore_IgnoreMissing(t *testing.T) {
	cfg := DefaultGeoTime()
	cfg.IgnoreMissing = true

	got, ok := LocationScore(cfg, nil, nil)
	if ok || got != 1.0 {
		t.Fatalf("expected 1.0 with IgnoreMissing, got %f (ok=%v)", got, ok)
	}
}

func TestTimeScore_Decay(t *testing.T) {
	cfg := DefaultGeoTime()
	lost := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	found := lost.AddDate(0, 0, 10)

	got, ok := TimeScore(cfg, &lost, &found)
	if !ok {
		t.Fatal("expected available")
	}
	// 10 días con decay 10 => e^-1
	want := math.Exp(-1)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f at 10 days, got %f", want, got)
	}
}

func TestTimeScore_SameDayIsOne(t *testing.T) {
	cfg := DefaultGeoTime()
	d := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	got, ok := TimeScore(cfg, &d, &d)
	if !ok || math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected 1.0 same day, got %f", got)
	}
}

func TestTimeScore_NegativeGapClampsToFloor(t *testing.T) {
	cfg := DefaultGeoTime()
	lost := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	found := lost.AddDate(0, 0, -5) // found antes que lost

	got, ok := TimeScore(cfg, &lost, &found)
	if !ok {
		t.Fatal("expected available")
	}
	if got != cfg.NegativeGapScore {
		t.Fatalf("expected floor %f for negative gap, got %f", cfg.NegativeGapScore, got)
	}
}

func TestTimeScore_MissingIsNeutral(t *testing.T) {
	cfg := DefaultGeoTime()
	d := time.Now()

	got, ok := TimeScore(cfg, nil, &d)
	if ok || got != 0.5 {
		t.Fatalf("expected neutral 0.5 for missing date, got %f (ok=%v)", got, ok)
	}
}

func TestWeights_Validate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights must be valid: %v", err)
	}

	bad := []Weights{
		{Visual: 0.5, Attribute: 0.5, Location: 0.5, Time: 0.5}, // suma 2
		{Visual: 1.2, Attribute: -0.2, Location: 0, Time: 0},    // negativo
		{},                                                      // suma 0
	}
	for _, w := range bad {
		if err := w.Validate(); err == nil {
			t.Fatalf("expected invalid weights %+v", w)
		}
	}

	custom := Weights{Visual: 0.25, Attribute: 0.25, Location: 0.25, Time: 0.25}
	if err := custom.Validate(); err != nil {
		t.Fatalf("uniform weights must be valid: %v", err)
	}
}
