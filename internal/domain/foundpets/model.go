package foundpets

import (
	"time"

	"petradar/internal/domain/matching"
)

// FoundPet es el reporte de un animal encontrado en la calle.
// Inmutable después de la creación, salvo el fill-in de atributos/vector
// que completa el pipeline de CV.
type FoundPet struct {
	ID           string
	FinderUserID string

	Species             matching.Species
	Colors              []string
	DistinctiveFeatures string
	ApproximateAge      matching.AgeBucket
	Size                matching.SizeBucket
	Description         string

	FoundDate     time.Time
	FoundLocation string          // texto libre
	FoundPoint    *matching.Point // geocodificado; nil => búsqueda degradada

	PhotoURL  string
	PhotoPath string

	Attributes *matching.Attributes
	Vector     []float32

	CreatedAt time.Time
}
