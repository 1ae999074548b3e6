package geocode

import (
	"context"
	"errors"

	"petradar/internal/domain/matching"
)

var (
	ErrGeocodingFailed = errors.New("geocoding failed")
)

// Geocoder resuelve una ubicación en texto libre a coordenadas.
// Un fallo no es fatal: el pipeline degrada a búsqueda solo-especie.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (matching.Point, error)
}
