package postgres

import (
	"context"
	"database/sql"
	"strings"

	"petradar/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, owner_user_id,
	name, species, breed, colors, age, gender,
	status, description,
	lost_date, lost_location, lost_lat, lost_lon, lost_description,
	created_at, updated_at
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	colors, err := encodeStrings(p.Colors)
	if err != nil {
		return err
	}
	lat, lon := toNullPoint(p.LostPoint)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`,
		p.ID,
		p.OwnerUserID,
		p.Name,
		p.Species,
		p.Breed,
		colors,
		p.Age,
		p.Gender,
		p.Status,
		p.Description,
		toNullDate(p.LostDate),
		p.LostLocation,
		lat,
		lon,
		p.LostDescription,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	colors, err := encodeStrings(p.Colors)
	if err != nil {
		return err
	}
	lat, lon := toNullPoint(p.LostPoint)

	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			colors = $5,
			age = $6,
			gender = $7,
			status = $8,
			description = $9,
			lost_date = $10,
			lost_location = $11,
			lost_lat = $12,
			lost_lon = $13,
			lost_description = $14,
			updated_at = $15
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Species,
		p.Breed,
		colors,
		p.Age,
		p.Gender,
		p.Status,
		p.Description,
		toNullDate(p.LostDate),
		p.LostLocation,
		lat,
		lon,
		p.LostDescription,
		p.UpdatedAt,
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

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err == sql.ErrNoRows {
		return pets.Pet{}, ErrNotFound
	}
	return p, err
}

func (r *PetsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]pets.Pet, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPets(rows)
}

// ListLost hace el filtro grueso en SQL: status=lost + especie, con Limit.
// El recorte fino por radio y ventana temporal corre en memoria sobre el
// resultado, para que la lógica de widening viva en un solo lugar.
func (r *PetsRepo) ListLost(ctx context.Context, f pets.LostFilter) ([]pets.Pet, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE status = 'lost' AND species = $1
		ORDER BY lost_date DESC NULLS LAST
		LIMIT $2
	`, f.Species, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPets(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var (
		p        pets.Pet
		colors   []byte
		lostDate sql.NullTime
		lat, lon sql.NullFloat64
	)
	if err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Name,
		&p.Species,
		&p.Breed,
		&colors,
		&p.Age,
		&p.Gender,
		&p.Status,
		&p.Description,
		&lostDate,
		&p.LostLocation,
		&lat,
		&lon,
		&p.LostDescription,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	cs, err := decodeStrings(colors)
	if err != nil {
		return pets.Pet{}, err
	}
	p.Colors = cs

	if lostDate.Valid {
		t := lostDate.Time
		p.LostDate = &t
	}
	p.LostPoint = fromNullPoint(lat, lon)

	return p, nil
}

func collectPets(rows *sql.Rows) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
