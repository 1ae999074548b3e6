package matches

import "context"

// ListFilter pagina los listados de matches por usuario.
type ListFilter struct {
	Status Status
	Offset int
	Limit  int
}

type Repository interface {
	// Upsert crea el match si el par (lost, found) no existe; si existe,
	// devuelve el existente (created=false). Debe ser atómico frente a
	// pases de scoring concurrentes: nunca dos filas para el mismo par.
	Upsert(ctx context.Context, m Match) (Match, bool, error)

	Update(ctx context.Context, m Match) error
	GetByID(ctx context.Context, id string) (Match, error)
	GetByPair(ctx context.Context, lostPetID, foundPetID string) (Match, error)
	ListByLostPetOwner(ctx context.Context, ownerUserID string, f ListFilter) ([]Match, error)
	ListByFinder(ctx context.Context, finderUserID string, f ListFilter) ([]Match, error)
}
