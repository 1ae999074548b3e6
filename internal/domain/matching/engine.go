package matching

import (
	"context"
	"sync"
)

// Metadata describe cómo se ejecutó un pase de scoring.
type Metadata struct {
	TotalCandidatesConsidered int     `json:"total_candidates_considered"`
	FilteredCandidates        int     `json:"filtered_candidates"`
	SearchRadiusKm            float64 `json:"search_radius_km,omitempty"`
	SearchRadiusExpanded      bool    `json:"search_radius_expanded"`
	DegradedSearch            bool    `json:"degraded_search"`
}

// Engine combina retrieval + scoring concurrente + agregación.
// Es read-only sobre sus entradas; la persistencia de matches es del caller.
type Engine struct {
	cfg       Config
	retrieval RetrievalConfig
	source    CandidateSource
}

func NewEngine(cfg Config, retrieval RetrievalConfig, source CandidateSource) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, retrieval: retrieval, source: source}, nil
}

func (e *Engine) Config() Config { return e.cfg }

// FindMatches corre el pase completo para un found pet: acota candidatos,
// puntúa en paralelo y devuelve solo los que superan el threshold, rankeados.
func (e *Engine) FindMatches(ctx context.Context, s Subject) ([]RankedMatch, Metadata, error) {
	retrieved, err := RetrieveCandidates(ctx, e.source, e.retrieval, s)
	if err != nil {
		return nil, Metadata{}, err
	}

	ranked, skipped := ScoreCandidates(ctx, e.cfg, s, retrieved.Candidates)

	threshold := e.cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.6
	}

	out := ranked[:0]
	below := 0
	for _, m := range ranked {
		if m.Score.Overall >= threshold {
			out = append(out, m)
		} else {
			below++
		}
	}

	md := Metadata{
		TotalCandidatesConsidered: len(retrieved.Candidates),
		FilteredCandidates:        skipped + below,
		SearchRadiusKm:            retrieved.RadiusKm,
		SearchRadiusExpanded:      retrieved.SearchRadiusExpanded,
		DegradedSearch:            retrieved.DegradedSearch,
	}

	return out, md, nil
}

// ScoreCandidates puntúa cada par (subject, candidato) con un fan-out acotado.
// Devuelve los pares puntuados ya rankeados y cuántos candidatos se
// excluyeron por errores por-par (especie, dimensión). Ningún error por-par
// aborta el batch.
func ScoreCandidates(ctx context.Context, cfg Config, s Subject, candidates []Candidate) ([]RankedMatch, int) {
	if len(candidates) == 0 {
		return nil, 0
	}

	workers := cfg.Concurrency
	if workers <= 0 {
		workers = 8
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	type slot struct {
		match RankedMatch
		ok    bool
	}

	results := make([]slot, len(candidates))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := candidates[i]
				score, err := ScorePair(cfg, s, c)
				if err != nil {
					continue
				}
				results[i] = slot{
					match: RankedMatch{PetID: c.PetID, LostDate: c.LostDate, Score: score},
					ok:    true,
				}
			}
		}()
	}

feed:
	for i := range candidates {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	out := make([]RankedMatch, 0, len(candidates))
	skipped := 0
	for _, r := range results {
		if r.ok {
			out = append(out, r.match)
		} else {
			skipped++
		}
	}

	Rank(out)
	return out, skipped
}
