package matching

import (
	"errors"
	"math"
	"sort"
	"time"
)

var (
	// ErrSpeciesMismatch descalifica al candidato antes de cualquier scoring.
	ErrSpeciesMismatch = errors.New("species mismatch")
)

// Subject es el lado "found pet" de una comparación.
type Subject struct {
	Vector     []float32
	Attributes Attributes
	Location   *Point
	Date       *time.Time
}

// Candidate es un lost pet listo para puntuar (ya mapeado desde el repo).
type Candidate struct {
	PetID      string
	Vector     []float32
	Attributes Attributes
	Location   *Point
	LostDate   *time.Time
}

// Score es el resultado por par: componentes + overall, todos en [0,1].
type Score struct {
	Visual    float64 `json:"visual"`
	Attribute float64 `json:"attribute"`
	Location  float64 `json:"location"`
	Time      float64 `json:"time"`
	Overall   float64 `json:"overall"`

	// MatchingFeatures: sub-categorías con score >= StrongMatchCutoff,
	// para explicar el match en la UI/notificación.
	MatchingFeatures []string `json:"matching_features,omitempty"`

	// Unavailable: componentes sin señal que puntuaron neutro.
	Unavailable []string `json:"unavailable_components,omitempty"`
}

// Config agrupa los parámetros del agregador.
type Config struct {
	Weights             Weights
	GeoTime             GeoTimeConfig
	SimilarityThreshold float64 // default 0.6
	StrongMatchCutoff   float64 // default 0.8
	Concurrency         int     // workers del fan-out, default 8
}

// DefaultConfig devuelve la configuración canónica del motor.
func DefaultConfig() Config {
	return Config{
		Weights:             DefaultWeights(),
		GeoTime:             DefaultGeoTime(),
		SimilarityThreshold: 0.6,
		StrongMatchCutoff:   0.8,
		Concurrency:         8,
	}
}

func (c Config) Validate() error {
	return c.Weights.Validate()
}

// ScorePair puntúa un par (found, lost). Errores por par (especie, dimensión)
// excluyen al candidato pero nunca abortan el batch completo.
func ScorePair(cfg Config, s Subject, c Candidate) (Score, error) {
	// Especies conocidas y distintas descalifican. Especie desconocida en
	// algún lado (comparación ad-hoc) no es mismatch: se puntúa igual y el
	// componente de atributos queda en 0 por falta de señal.
	if s.Attributes.Species != "" && c.Attributes.Species != "" &&
		s.Attributes.Species != c.Attributes.Species {
		return Score{}, ErrSpeciesMismatch
	}

	visual, err := VisualSimilarity(s.Vector, c.Vector)
	if err != nil {
		return Score{}, err
	}

	attribute, bd := CompareAttributes(s.Attributes, c.Attributes)

	location, locOK := LocationScore(cfg.GeoTime, s.Location, c.Location)
	timeScore, timeOK := TimeScore(cfg.GeoTime, c.LostDate, s.Date)

	out := Score{
		Visual:    visual,
		Attribute: attribute,
		Location:  location,
		Time:      timeScore,
	}
	out.Overall = cfg.Weights.Visual*visual +
		cfg.Weights.Attribute*attribute +
		cfg.Weights.Location*location +
		cfg.Weights.Time*timeScore

	if !locOK {
		out.Unavailable = append(out.Unavailable, "location")
	}
	if !timeOK {
		out.Unavailable = append(out.Unavailable, "time")
	}

	out.MatchingFeatures = strongFeatures(cfg, bd, location, locOK, timeScore, timeOK)

	return out, nil
}

func strongFeatures(cfg Config, bd AttributeBreakdown, loc float64, locOK bool, t float64, timeOK bool) []string {
	cutoff := cfg.StrongMatchCutoff
	if cutoff <= 0 {
		cutoff = 0.8
	}

	var out []string
	if bd.Breed != nil && *bd.Breed >= cutoff {
		out = append(out, "breed")
	}
	if bd.Color != nil && *bd.Color >= cutoff {
		out = append(out, "color")
	}
	if bd.Age != nil && *bd.Age >= cutoff {
		out = append(out, "age")
	}
	if bd.Size != nil && *bd.Size >= cutoff {
		out = append(out, "size")
	}
	if locOK && loc >= cutoff {
		out = append(out, "location")
	}
	if timeOK && t >= cutoff {
		out = append(out, "time")
	}
	return out
}

// RankedMatch es un candidato que superó el threshold, con su score.
type RankedMatch struct {
	PetID    string
	LostDate *time.Time
	Score    Score
}

const rankEpsilon = 1e-9

// Rank ordena descendente por overall. Empates (dentro de epsilon) se
// resuelven por lost_date más reciente primero: pérdidas viejas sin resolver
// son estadísticamente matches menos probables.
func Rank(items []RankedMatch) {
	sort.SliceStable(items, func(i, j int) bool {
		di := items[i].Score.Overall - items[j].Score.Overall
		if math.Abs(di) > rankEpsilon {
			return di > 0
		}
		li, lj := items[i].LostDate, items[j].LostDate
		switch {
		case li == nil && lj == nil:
			return false
		case lj == nil:
			return true
		case li == nil:
			return false
		default:
			return li.After(*lj)
		}
	})
}
