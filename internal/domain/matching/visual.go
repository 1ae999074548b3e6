package matching

import (
	"errors"
	"math"
)

var (
	// ErrDimensionMismatch indica skew de versión de modelo upstream:
	// los vectores no son comparables y el candidato se descarta, no se trunca.
	ErrDimensionMismatch = errors.New("feature vector dimension mismatch")
)

// VisualSimilarity calcula similitud coseno entre dos vectores de features
// y la reescala de [-1,1] a [0,1]. Función pura, sin side effects.
//
// Vectores idénticos => 1.0; ortogonales => 0.5.
// Un vector de norma cero no aporta señal => 0.
func VisualSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, ErrDimensionMismatch
	}
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Ruido de float: coseno puede salir apenas fuera de [-1,1].
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}

	return (cos + 1) / 2, nil
}
