package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"petradar/internal/domain/matches"
	"petradar/internal/domain/matching"
)

type MatchesRepo struct {
	db *sql.DB
}

func NewMatchesRepo(db *sql.DB) *MatchesRepo {
	return &MatchesRepo{db: db}
}

const matchColumns = `
	id, lost_pet_id, found_pet_id,
	score, similarity,
	status, confirmation_date,
	created_at, updated_at
`

// Upsert se apoya en el UNIQUE (lost_pet_id, found_pet_id): ON CONFLICT DO
// NOTHING y, si la fila ya existía, se lee la existente. Atómico frente a
// pases de scoring concurrentes.
func (r *MatchesRepo) Upsert(ctx context.Context, m matches.Match) (matches.Match, bool, error) {
	score, err := json.Marshal(m.Score)
	if err != nil {
		return matches.Match{}, false, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (lost_pet_id, found_pet_id) DO NOTHING
	`,
		m.ID,
		m.LostPetID,
		m.FoundPetID,
		score,
		m.Score.Overall,
		m.Status,
		toNullDate(m.ConfirmationDate),
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return matches.Match{}, false, err
	}

	n, _ := res.RowsAffected()
	if n == 1 {
		return m, true, nil
	}

	existing, err := r.GetByPair(ctx, m.LostPetID, m.FoundPetID)
	if err != nil {
		return matches.Match{}, false, err
	}
	return existing, false, nil
}

func (r *MatchesRepo) Update(ctx context.Context, m matches.Match) error {
	score, err := json.Marshal(m.Score)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE matches
		SET
			score = $2,
			similarity = $3,
			status = $4,
			confirmation_date = $5,
			updated_at = $6
		WHERE id = $1
	`,
		m.ID,
		score,
		m.Score.Overall,
		m.Status,
		toNullDate(m.ConfirmationDate),
		m.UpdatedAt,
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

func (r *MatchesRepo) GetByID(ctx context.Context, id string) (matches.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE id = $1
	`, id)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return matches.Match{}, ErrNotFound
	}
	return m, err
}

func (r *MatchesRepo) GetByPair(ctx context.Context, lostPetID, foundPetID string) (matches.Match, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE lost_pet_id = $1 AND found_pet_id = $2
	`, lostPetID, foundPetID)

	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return matches.Match{}, ErrNotFound
	}
	return m, err
}

func (r *MatchesRepo) ListByLostPetOwner(ctx context.Context, ownerUserID string, f matches.ListFilter) ([]matches.Match, error) {
	return r.list(ctx, `
		SELECT m.id, m.lost_pet_id, m.found_pet_id,
		       m.score, m.similarity,
		       m.status, m.confirmation_date,
		       m.created_at, m.updated_at
		FROM matches m
		JOIN pets p ON p.id = m.lost_pet_id
		WHERE p.owner_user_id = $1
		  AND ($2 = '' OR m.status = $2)
		ORDER BY m.similarity DESC
		OFFSET $3 LIMIT $4
	`, ownerUserID, f)
}

func (r *MatchesRepo) ListByFinder(ctx context.Context, finderUserID string, f matches.ListFilter) ([]matches.Match, error) {
	return r.list(ctx, `
		SELECT m.id, m.lost_pet_id, m.found_pet_id,
		       m.score, m.similarity,
		       m.status, m.confirmation_date,
		       m.created_at, m.updated_at
		FROM matches m
		JOIN found_pets fp ON fp.id = m.found_pet_id
		WHERE fp.finder_user_id = $1
		  AND ($2 = '' OR m.status = $2)
		ORDER BY m.similarity DESC
		OFFSET $3 LIMIT $4
	`, finderUserID, f)
}

func (r *MatchesRepo) list(ctx context.Context, query, userID string, f matches.ListFilter) ([]matches.Match, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, query, userID, string(f.Status), f.Offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matches.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMatch(row rowScanner) (matches.Match, error) {
	var (
		m         matches.Match
		score     []byte
		overall   float64
		confirmed sql.NullTime
	)
	if err := row.Scan(
		&m.ID,
		&m.LostPetID,
		&m.FoundPetID,
		&score,
		&overall,
		&m.Status,
		&confirmed,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return matches.Match{}, err
	}

	var s matching.Score
	if err := json.Unmarshal(score, &s); err != nil {
		return matches.Match{}, err
	}
	m.Score = s
	// similarity es columna denormalizada para el ORDER BY; el jsonb manda.
	_ = overall

	if confirmed.Valid {
		t := confirmed.Time
		m.ConfirmationDate = &t
	}

	return m, nil
}
