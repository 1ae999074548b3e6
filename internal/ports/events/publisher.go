package events

import "context"

// MatchFound es el evento saliente cuando el agregador persiste un match
// nuevo por encima del threshold.
type MatchFound struct {
	MatchID          string   `json:"match_id"`
	LostPetID        string   `json:"lost_pet_id"`
	FoundPetID       string   `json:"found_pet_id"`
	Similarity       float64  `json:"similarity"`
	MatchingFeatures []string `json:"matching_features,omitempty"`
}

// MatchConfirmed se emite cuando el dueño confirma un match.
type MatchConfirmed struct {
	MatchID    string `json:"match_id"`
	LostPetID  string `json:"lost_pet_id"`
	FoundPetID string `json:"found_pet_id"`
}

// Publisher es el bus saliente hacia el colaborador de notificaciones.
// La entrega (email/webhook) ocurre del otro lado del bus, no acá.
type Publisher interface {
	PublishMatchFound(ctx context.Context, ev MatchFound) error
	PublishMatchConfirmed(ctx context.Context, ev MatchConfirmed) error
}
