package vision

import (
	"context"
	"errors"
	"io"

	"petradar/internal/domain/matching"
)

var (
	ErrNoAnimalDetected = errors.New("no animal detected")
	ErrLowConfidence    = errors.New("detection confidence too low")
)

// Detection es la salida de detect_and_embed: atributos estructurados
// + vector de features de dimensión fija.
type Detection struct {
	Attributes matching.Attributes
	Confidence float64
	Vector     []float32
}

// Detector abstrae el servicio de inferencia (colaborador externo).
// El core de matching no depende de ningún runtime de modelos; esta
// interfaz es la costura para tests con vectores deterministas.
type Detector interface {
	DetectAndEmbed(ctx context.Context, image io.Reader) (Detection, error)
}
