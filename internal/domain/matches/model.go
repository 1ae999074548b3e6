package matches

import (
	"time"

	"petradar/internal/domain/matching"
)

// Status es la máquina de estados del match.
// pending -> confirmed | rejected; ambos finales.
// @Enum pending, confirmed, rejected
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
)

// CanTransition valida una transición. Solo pending tiene salidas.
func CanTransition(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusConfirmed || to == StatusRejected
}

// Match relaciona un lost pet con un found pet. Lo crea siempre el
// agregador (nunca un usuario); su estado lo avanza solo el dueño del
// lost pet. A lo sumo existe un Match por par (lost, found).
type Match struct {
	ID         string
	LostPetID  string
	FoundPetID string

	Score matching.Score // componentes + overall en [0,1]

	Status           Status
	ConfirmationDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
