package matching

import (
	"context"
	"time"
)

// CandidateFilter es el filtro que recibe la fuente de candidatos.
// La fuente puede pre-filtrar grueso (bbox/date-range en SQL); el retrieval
// aplica después los predicados exactos (haversine + ventana simétrica).
type CandidateFilter struct {
	Species    Species
	Center     *Point // nil => búsqueda degradada solo por especie
	RadiusKm   float64
	Date       *time.Time
	WindowDays int
}

// CandidateSource abstrae la población de lost pets (status=lost).
type CandidateSource interface {
	ListLostCandidates(ctx context.Context, f CandidateFilter) ([]Candidate, error)
}

// RetrievalConfig parametriza el acotamiento del candidate set.
type RetrievalConfig struct {
	RadiusKm         float64 // radio inicial, default 10
	WindowDays       int     // ventana simétrica |found-lost|, default 60
	MinCandidates    int     // por debajo de esto se ensancha el radio
	RadiusMultiplier float64 // factor de ensanche, default 2
	MaxExpansions    int     // tope duro de iteraciones del loop
}

func DefaultRetrieval() RetrievalConfig {
	return RetrievalConfig{
		RadiusKm:         10,
		WindowDays:       60,
		MinCandidates:    3,
		RadiusMultiplier: 2,
		MaxExpansions:    3,
	}
}

// RetrievalResult incluye metadata contractual sobre cómo se buscó.
type RetrievalResult struct {
	Candidates           []Candidate
	RadiusKm             float64
	SearchRadiusExpanded bool
	DegradedSearch       bool
}

// RetrieveCandidates acota la población a puntuar. Si el subject no tiene
// ubicación resuelta cae a filtro solo-especie con flag de búsqueda degradada.
// El loop de ensanche es secuencial y con tope duro para garantizar término.
func RetrieveCandidates(ctx context.Context, src CandidateSource, cfg RetrievalConfig, s Subject) (RetrievalResult, error) {
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = 10
	}
	if cfg.RadiusMultiplier <= 1 {
		cfg.RadiusMultiplier = 2
	}

	base := CandidateFilter{
		Species:    s.Attributes.Species,
		Date:       s.Date,
		WindowDays: cfg.WindowDays,
	}

	if s.Location == nil {
		all, err := src.ListLostCandidates(ctx, base)
		if err != nil {
			return RetrievalResult{}, err
		}
		return RetrievalResult{
			Candidates:     filterByDate(all, s.Date, cfg.WindowDays),
			DegradedSearch: true,
		}, nil
	}

	radius := cfg.RadiusKm
	expanded := false

	for attempt := 0; ; attempt++ {
		f := base
		f.Center = s.Location
		f.RadiusKm = radius

		all, err := src.ListLostCandidates(ctx, f)
		if err != nil {
			return RetrievalResult{}, err
		}

		candidates := filterByDate(filterByRadius(all, *s.Location, radius), s.Date, cfg.WindowDays)

		if len(candidates) >= cfg.MinCandidates || attempt >= cfg.MaxExpansions {
			return RetrievalResult{
				Candidates:           candidates,
				RadiusKm:             radius,
				SearchRadiusExpanded: expanded,
			}, nil
		}

		radius *= cfg.RadiusMultiplier
		expanded = true
	}
}

func filterByRadius(in []Candidate, center Point, radiusKm float64) []Candidate {
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if c.Location == nil {
			// Sin ubicación no se puede descartar por radio; el scorer
			// lo puntuará neutro.
			out = append(out, c)
			continue
		}
		if HaversineKm(center, *c.Location) <= radiusKm {
			out = append(out, c)
		}
	}
	return out
}

func filterByDate(in []Candidate, date *time.Time, windowDays int) []Candidate {
	if date == nil || windowDays <= 0 {
		return in
	}

	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		if c.LostDate == nil {
			out = append(out, c)
			continue
		}
		days := date.Sub(*c.LostDate).Hours() / 24
		if days < 0 {
			days = -days
		}
		if days <= float64(windowDays) {
			out = append(out, c)
		}
	}
	return out
}
