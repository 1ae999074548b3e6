package matching

import (
	"errors"
	"math"
)

var (
	ErrInvalidWeights = errors.New("weights must be non-negative and sum to 1.0")
)

const weightEpsilon = 1e-6

// Weights son los pesos de nivel superior del agregador.
// Deben sumar 1.0; se validan al cargar configuración, nunca durante scoring.
type Weights struct {
	Visual    float64 `json:"visual"`
	Attribute float64 `json:"attribute"`
	Location  float64 `json:"location"`
	Time      float64 `json:"time"`
}

// DefaultWeights es el default canónico (visual 0.6, attribute 0.2,
// location 0.1, time 0.1).
func DefaultWeights() Weights {
	return Weights{Visual: 0.6, Attribute: 0.2, Location: 0.1, Time: 0.1}
}

func (w Weights) Validate() error {
	if w.Visual < 0 || w.Attribute < 0 || w.Location < 0 || w.Time < 0 {
		return ErrInvalidWeights
	}
	sum := w.Visual + w.Attribute + w.Location + w.Time
	if math.Abs(sum-1.0) > weightEpsilon {
		return ErrInvalidWeights
	}
	return nil
}
