package postgres

import (
	"context"
	"database/sql"
	"time"

	"petradar/internal/domain/matching"
	"petradar/internal/domain/pets"
)

type PhotosRepo struct {
	db *sql.DB
}

func NewPhotosRepo(db *sql.DB) *PhotosRepo {
	return &PhotosRepo{db: db}
}

const photoColumns = `
	id, pet_id,
	url, path, is_main, description,
	processing_status, attributes, feature_vector,
	created_at, updated_at
`

func (r *PhotosRepo) Create(ctx context.Context, ph pets.PetPhoto) error {
	attrs, err := encodeAttrs(ph.Attributes)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pet_photos (`+photoColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		ph.ID,
		ph.PetID,
		ph.URL,
		ph.Path,
		ph.IsMain,
		ph.Description,
		ph.ProcessingStatus,
		attrs,
		encodeVector(ph.Vector),
		ph.CreatedAt,
		ph.UpdatedAt,
	)
	return err
}

func (r *PhotosRepo) GetByID(ctx context.Context, id string) (pets.PetPhoto, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+photoColumns+`
		FROM pet_photos
		WHERE id = $1
	`, id)

	ph, err := scanPhoto(row)
	if err == sql.ErrNoRows {
		return pets.PetPhoto{}, ErrNotFound
	}
	return ph, err
}

func (r *PhotosRepo) ListByPet(ctx context.Context, petID string) ([]pets.PetPhoto, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+photoColumns+`
		FROM pet_photos
		WHERE pet_id = $1
		ORDER BY created_at ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pets.PetPhoto, 0)
	for rows.Next() {
		ph, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ph)
	}
	return out, rows.Err()
}

func (r *PhotosRepo) UpdateProcessing(ctx context.Context, photoID string, status pets.ProcessingStatus, attrs *matching.Attributes, vector []float32) error {
	encoded, err := encodeAttrs(attrs)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE pet_photos
		SET
			processing_status = $2,
			attributes = COALESCE($3, attributes),
			feature_vector = COALESCE($4, feature_vector),
			updated_at = $5
		WHERE id = $1
	`,
		photoID,
		status,
		encoded,
		encodeVector(vector),
		time.Now(),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPhoto(row rowScanner) (pets.PetPhoto, error) {
	var (
		ph     pets.PetPhoto
		attrs  []byte
		vector []byte
	)
	if err := row.Scan(
		&ph.ID,
		&ph.PetID,
		&ph.URL,
		&ph.Path,
		&ph.IsMain,
		&ph.Description,
		&ph.ProcessingStatus,
		&attrs,
		&vector,
		&ph.CreatedAt,
		&ph.UpdatedAt,
	); err != nil {
		return pets.PetPhoto{}, err
	}

	a, err := decodeAttrs(attrs)
	if err != nil {
		return pets.PetPhoto{}, err
	}
	ph.Attributes = a
	ph.Vector = decodeVector(vector)

	return ph, nil
}
