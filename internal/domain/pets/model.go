package pets

import (
	"time"

	"petradar/internal/domain/matching"
)

// Gender define el sexo de la mascota.
// @Enum male, female, unknown
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Status es el ciclo de vida del registro.
// @Enum normal, lost, found
type Status string

const (
	StatusNormal Status = "normal"
	StatusLost   Status = "lost"
	StatusFound  Status = "found"
)

// ProcessingStatus es el estado del pipeline de CV sobre una foto.
// @Enum pending, processing, completed, failed
type ProcessingStatus string

const (
	ProcessingPending    ProcessingStatus = "pending"
	ProcessingProcessing ProcessingStatus = "processing"
	ProcessingCompleted  ProcessingStatus = "completed"
	ProcessingFailed     ProcessingStatus = "failed"
)

// Pet representa una mascota registrada por su dueño.
// Cuando status=lost, los campos Lost* alimentan el candidate retrieval.
type Pet struct {
	ID          string
	OwnerUserID string

	Name    string
	Species matching.Species
	Breed   string
	Colors  []string
	Age     matching.AgeBucket
	Gender  Gender

	Status      Status
	Description string

	LostDate        *time.Time
	LostLocation    string          // texto libre ingresado por el usuario
	LostPoint       *matching.Point // geocodificado; nil si falló
	LostDescription string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PetPhoto pertenece a exactamente un Pet. El vector y los atributos los
// completa el pipeline asíncrono al pasar a completed.
type PetPhoto struct {
	ID    string
	PetID string

	URL         string
	Path        string // key en el object store
	IsMain      bool
	Description string

	ProcessingStatus ProcessingStatus
	Attributes       *matching.Attributes
	Vector           []float32

	CreatedAt time.Time
	UpdatedAt time.Time
}
