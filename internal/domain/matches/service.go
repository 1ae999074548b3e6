package matches

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"petradar/internal/domain/matching"
	"petradar/internal/domain/pets"
	"petradar/internal/ports/events"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// ErrInvalidStateTransition: confirmed y rejected son estados finales.
	ErrInvalidStateTransition = errors.New("invalid match state transition")
)

// FoundPetLookup resuelve el finder de un found pet sin acoplar este
// paquete a foundpets (que ya depende de matches).
type FoundPetLookup interface {
	FinderOf(ctx context.Context, foundPetID string) (string, error)
}

type Service struct {
	repo      Repository
	pets      pets.Repository
	foundPets FoundPetLookup
	publisher events.Publisher
	now       func() time.Time
}

func NewService(repo Repository, petsRepo pets.Repository, foundPets FoundPetLookup, publisher events.Publisher) *Service {
	return &Service{
		repo:      repo,
		pets:      petsRepo,
		foundPets: foundPets,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateFromScore persiste el resultado del agregador para un par.
// Es un upsert condicional por (lost, found): pases duplicados no crean
// filas nuevas; un re-score solo refresca si el overall mejoró.
// Por cada match creado se emite match.found hacia el bus.
func (s *Service) CreateFromScore(ctx context.Context, lostPetID, foundPetID string, score matching.Score) (Match, bool, error) {
	if strings.TrimSpace(lostPetID) == "" || strings.TrimSpace(foundPetID) == "" {
		return Match{}, false, ErrInvalidInput
	}

	now := s.now()
	m := Match{
		ID:         uuid.NewString(),
		LostPetID:  lostPetID,
		FoundPetID: foundPetID,
		Score:      score,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	stored, created, err := s.repo.Upsert(ctx, m)
	if err != nil {
		return Match{}, false, err
	}

	if !created && score.Overall > stored.Score.Overall {
		stored.Score = score
		stored.UpdatedAt = now
		if err := s.repo.Update(ctx, stored); err != nil {
			return Match{}, false, err
		}
	}

	if created && s.publisher != nil {
		// Entrega de notificaciones desacoplada: solo se publica el evento.
		_ = s.publisher.PublishMatchFound(ctx, events.MatchFound{
			MatchID:          stored.ID,
			LostPetID:        stored.LostPetID,
			FoundPetID:       stored.FoundPetID,
			Similarity:       stored.Score.Overall,
			MatchingFeatures: stored.Score.MatchingFeatures,
		})
	}

	return stored, created, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Match, error) {
	return s.repo.GetByID(ctx, id)
}

// CanView: dueño del lost pet o finder del found pet.
func (s *Service) CanView(ctx context.Context, m Match, userID string) bool {
	if p, err := s.pets.GetByID(ctx, m.LostPetID); err == nil && p.OwnerUserID == userID {
		return true
	}
	if finder, err := s.foundPets.FinderOf(ctx, m.FoundPetID); err == nil && finder == userID {
		return true
	}
	return false
}

// UpdateStatus avanza la máquina de estados. Solo el dueño del lost pet.
// Transiciones desde confirmed/rejected fallan con ErrInvalidStateTransition.
func (s *Service) UpdateStatus(ctx context.Context, matchID, actorUserID string, to Status) (Match, error) {
	if to != StatusConfirmed && to != StatusRejected {
		return Match{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return Match{}, err
	}

	p, err := s.pets.GetByID(ctx, m.LostPetID)
	if err != nil {
		return Match{}, err
	}
	if p.OwnerUserID != actorUserID {
		return Match{}, ErrForbidden
	}

	if !CanTransition(m.Status, to) {
		return Match{}, ErrInvalidStateTransition
	}

	now := s.now()
	m.Status = to
	m.UpdatedAt = now
	if to == StatusConfirmed {
		m.ConfirmationDate = &now
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return Match{}, err
	}

	if to == StatusConfirmed && s.publisher != nil {
		_ = s.publisher.PublishMatchConfirmed(ctx, events.MatchConfirmed{
			MatchID:    m.ID,
			LostPetID:  m.LostPetID,
			FoundPetID: m.FoundPetID,
		})
	}

	return m, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string, f ListFilter) ([]Match, error) {
	return s.repo.ListByLostPetOwner(ctx, ownerUserID, f)
}

func (s *Service) ListByFinder(ctx context.Context, finderUserID string, f ListFilter) ([]Match, error) {
	return s.repo.ListByFinder(ctx, finderUserID, f)
}
