package postgres

import (
	"context"
	"database/sql"

	"petradar/internal/domain/foundpets"
)

type FoundPetsRepo struct {
	db *sql.DB
}

func NewFoundPetsRepo(db *sql.DB) *FoundPetsRepo {
	return &FoundPetsRepo{db: db}
}

const foundPetColumns = `
	id, finder_user_id,
	species, colors, distinctive_features, approximate_age, size, description,
	found_date, found_location, found_lat, found_lon,
	photo_url, photo_path,
	attributes, feature_vector,
	created_at
`

func (r *FoundPetsRepo) Create(ctx context.Context, fp foundpets.FoundPet) error {
	colors, err := encodeStrings(fp.Colors)
	if err != nil {
		return err
	}
	attrs, err := encodeAttrs(fp.Attributes)
	if err != nil {
		return err
	}
	lat, lon := toNullPoint(fp.FoundPoint)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO found_pets (`+foundPetColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		fp.ID,
		fp.FinderUserID,
		fp.Species,
		colors,
		fp.DistinctiveFeatures,
		fp.ApproximateAge,
		fp.Size,
		fp.Description,
		fp.FoundDate,
		fp.FoundLocation,
		lat,
		lon,
		fp.PhotoURL,
		fp.PhotoPath,
		attrs,
		encodeVector(fp.Vector),
		fp.CreatedAt,
	)
	return err
}

// Update solo toca el fill-in de CV: el resto del reporte es inmutable.
func (r *FoundPetsRepo) Update(ctx context.Context, fp foundpets.FoundPet) error {
	attrs, err := encodeAttrs(fp.Attributes)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE found_pets
		SET
			attributes = $2,
			feature_vector = $3
		WHERE id = $1
	`,
		fp.ID,
		attrs,
		encodeVector(fp.Vector),
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

func (r *FoundPetsRepo) GetByID(ctx context.Context, id string) (foundpets.FoundPet, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+foundPetColumns+`
		FROM found_pets
		WHERE id = $1
	`, id)

	fp, err := scanFoundPet(row)
	if err == sql.ErrNoRows {
		return foundpets.FoundPet{}, ErrNotFound
	}
	return fp, err
}

func (r *FoundPetsRepo) ListByFinder(ctx context.Context, finderUserID string) ([]foundpets.FoundPet, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+foundPetColumns+`
		FROM found_pets
		WHERE finder_user_id = $1
		ORDER BY created_at ASC
	`, finderUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]foundpets.FoundPet, 0)
	for rows.Next() {
		fp, err := scanFoundPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, fp)
	}
	return out, rows.Err()
}

func (r *FoundPetsRepo) FinderOf(ctx context.Context, foundPetID string) (string, error) {
	var finder string
	err := r.db.QueryRowContext(ctx, `
		SELECT finder_user_id FROM found_pets WHERE id = $1
	`, foundPetID).Scan(&finder)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return finder, err
}

func scanFoundPet(row rowScanner) (foundpets.FoundPet, error) {
	var (
		fp       foundpets.FoundPet
		colors   []byte
		attrs    []byte
		vector   []byte
		lat, lon sql.NullFloat64
	)
	if err := row.Scan(
		&fp.ID,
		&fp.FinderUserID,
		&fp.Species,
		&colors,
		&fp.DistinctiveFeatures,
		&fp.ApproximateAge,
		&fp.Size,
		&fp.Description,
		&fp.FoundDate,
		&fp.FoundLocation,
		&lat,
		&lon,
		&fp.PhotoURL,
		&fp.PhotoPath,
		&attrs,
		&vector,
		&fp.CreatedAt,
	); err != nil {
		return foundpets.FoundPet{}, err
	}

	cs, err := decodeStrings(colors)
	if err != nil {
		return foundpets.FoundPet{}, err
	}
	fp.Colors = cs

	a, err := decodeAttrs(attrs)
	if err != nil {
		return foundpets.FoundPet{}, err
	}
	fp.Attributes = a
	fp.Vector = decodeVector(vector)
	fp.FoundPoint = fromNullPoint(lat, lon)

	return fp, nil
}
