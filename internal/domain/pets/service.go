package pets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"petradar/internal/domain/matching"
	"petradar/internal/ports/geocode"
	"petradar/internal/ports/objstore"
	"petradar/internal/ports/vision"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo     Repository
	photos   PhotoRepository
	geocoder geocode.Geocoder
	store    objstore.Store
	detector vision.Detector
	now      func() time.Time
}

func NewService(repo Repository, photos PhotoRepository, geocoder geocode.Geocoder, store objstore.Store, detector vision.Detector) *Service {
	return &Service{
		repo:     repo,
		photos:   photos,
		geocoder: geocoder,
		store:    store,
		detector: detector,
		now:      time.Now,
	}
}

type CreateInput struct {
	Name        string
	Species     string
	Breed       string
	Colors      []string
	Age         string
	Gender      string
	Description string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Pet{}, ErrInvalidInput
	}
	species := matching.Species(strings.TrimSpace(in.Species))
	if species != matching.SpeciesDog && species != matching.SpeciesCat {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Name:        strings.TrimSpace(in.Name),
		Species:     species,
		Breed:       strings.TrimSpace(in.Breed),
		Colors:      in.Colors,
		Age:         matching.AgeBucket(strings.TrimSpace(in.Age)),
		Gender:      Gender(strings.TrimSpace(in.Gender)),
		Status:      StatusNormal,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

type StatusUpdateInput struct {
	Status          Status
	LostDate        *time.Time
	LostLocation    string
	LostDescription string
}

// UpdateStatus avanza el ciclo normal/lost/found. Solo el dueño.
// Al pasar a lost se exige fecha + ubicación y se intenta geocodificar;
// si la geocodificación falla el pet queda sin coordenadas y las búsquedas
// que lo incluyan degradan a solo-especie (no es un error).
func (s *Service) UpdateStatus(ctx context.Context, petID, actorUserID string, in StatusUpdateInput) (Pet, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return Pet{}, err
	}
	if p.OwnerUserID != actorUserID {
		return Pet{}, ErrForbidden
	}

	switch in.Status {
	case StatusNormal, StatusFound:
		p.Status = in.Status
		p.LostDate = nil
		p.LostLocation = ""
		p.LostPoint = nil
		p.LostDescription = ""

	case StatusLost:
		if in.LostDate == nil || strings.TrimSpace(in.LostLocation) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Status = StatusLost
		p.LostDate = in.LostDate
		p.LostLocation = strings.TrimSpace(in.LostLocation)
		p.LostDescription = strings.TrimSpace(in.LostDescription)

		if s.geocoder != nil {
			if pt, err := s.geocoder.Geocode(ctx, p.LostLocation); err == nil {
				p.LostPoint = &pt
			} else {
				p.LostPoint = nil
			}
		}

	default:
		return Pet{}, ErrInvalidInput
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

type AddPhotoInput struct {
	Content     io.Reader
	Size        int64
	ContentType string
	IsMain      bool
	Description string
}

// AddPhoto sube la foto al store y crea el registro en pending.
// El procesamiento de CV corre fuera de banda (ver ProcessPhoto).
func (s *Service) AddPhoto(ctx context.Context, petID, actorUserID string, in AddPhotoInput) (PetPhoto, error) {
	p, err := s.repo.GetByID(ctx, petID)
	if err != nil {
		return PetPhoto{}, err
	}
	if p.OwnerUserID != actorUserID {
		return PetPhoto{}, ErrForbidden
	}
	if in.Content == nil {
		return PetPhoto{}, ErrInvalidInput
	}

	id := uuid.NewString()
	key := fmt.Sprintf("pets/%s/%s", petID, id)

	url, err := s.store.Put(ctx, key, in.Content, in.Size, in.ContentType)
	if err != nil {
		return PetPhoto{}, err
	}

	now := s.now()
	ph := PetPhoto{
		ID:               id,
		PetID:            petID,
		URL:              url,
		Path:             key,
		IsMain:           in.IsMain,
		Description:      strings.TrimSpace(in.Description),
		ProcessingStatus: ProcessingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.photos.Create(ctx, ph); err != nil {
		return PetPhoto{}, err
	}
	return ph, nil
}

func (s *Service) GetPhoto(ctx context.Context, photoID string) (PetPhoto, error) {
	return s.photos.GetByID(ctx, photoID)
}

func (s *Service) ListPhotos(ctx context.Context, petID string) ([]PetPhoto, error) {
	return s.photos.ListByPet(ctx, petID)
}

// ProcessPhoto corre detect_and_embed sobre una foto pending y persiste
// el resultado. Lo invoca el worker pool de tasks, no el request.
func (s *Service) ProcessPhoto(ctx context.Context, photoID string) error {
	ph, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return err
	}

	if err := s.photos.UpdateProcessing(ctx, photoID, ProcessingProcessing, nil, nil); err != nil {
		return err
	}

	obj, err := s.store.Get(ctx, ph.Path)
	if err != nil {
		_ = s.photos.UpdateProcessing(ctx, photoID, ProcessingFailed, nil, nil)
		return err
	}
	defer obj.Close()

	det, err := s.detector.DetectAndEmbed(ctx, obj)
	if err != nil {
		_ = s.photos.UpdateProcessing(ctx, photoID, ProcessingFailed, nil, nil)
		return err
	}

	attrs := det.Attributes
	return s.photos.UpdateProcessing(ctx, photoID, ProcessingCompleted, &attrs, det.Vector)
}
