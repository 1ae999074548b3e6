package foundpets

import "context"

type Repository interface {
	Create(ctx context.Context, fp FoundPet) error
	// Update solo se usa para el fill-in de atributos/vector post-creación.
	Update(ctx context.Context, fp FoundPet) error
	GetByID(ctx context.Context, id string) (FoundPet, error)
	ListByFinder(ctx context.Context, finderUserID string) ([]FoundPet, error)
}
