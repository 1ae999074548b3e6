package stub

import (
	"context"
	"crypto/sha256"
	"io"
	"math"

	"petradar/internal/domain/matching"
	"petradar/internal/ports/vision"
)

const vectorDim = 64

// Detector es determinista: deriva el vector del hash de la imagen.
// La misma imagen siempre produce el mismo vector, imágenes distintas
// producen vectores distintos. Para dev sin servicio de inferencia.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

func (d *Detector) DetectAndEmbed(ctx context.Context, image io.Reader) (vision.Detection, error) {
	h := sha256.New()
	n, err := io.Copy(h, image)
	if err != nil {
		return vision.Detection{}, err
	}
	if n == 0 {
		return vision.Detection{}, vision.ErrNoAnimalDetected
	}

	sum := h.Sum(nil)

	// Expandir los 32 bytes del hash a vectorDim floats en [-1,1].
	vec := make([]float32, vectorDim)
	for i := range vec {
		b := sum[i%len(sum)]
		angle := float64(b) / 255.0 * 2 * math.Pi * float64(i+1)
		vec[i] = float32(math.Sin(angle))
	}

	return vision.Detection{
		Attributes: matching.Attributes{},
		Confidence: 0.9,
		Vector:     vec,
	}, nil
}
