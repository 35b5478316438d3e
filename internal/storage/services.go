package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studiobook/internal/db"
	"studiobook/internal/model"
)

type Services struct {
	pool *db.Pool
}

func NewServices(pool *db.Pool) *Services {
	return &Services{pool: pool}
}

func (r *Services) Create(ctx context.Context, svc *model.Service) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, name, description, price, duration_minutes, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, svc.Name, svc.Description, svc.Price, svc.DurationMinutes, svc.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Services) Update(ctx context.Context, svc *model.Service) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET name = $2, description = $3, price = $4, duration_minutes = $5, active = $6
		WHERE id = $1
	`, svc.ID, svc.Name, svc.Description, svc.Price, svc.DurationMinutes, svc.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Services) Get(ctx context.Context, id string) (model.Service, error) {
	var s model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, description, price::text, duration_minutes, active, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMinutes, &s.Active, &s.CreatedAt)
	return s, err
}

// List returns services ordered by name. When activeOnly is set, disabled
// services are filtered out (the public catalog view).
func (r *Services) List(ctx context.Context, activeOnly bool) ([]model.Service, error) {
	query := `
		SELECT id::text, name, description, price::text, duration_minutes, active, created_at
		FROM services
		ORDER BY name ASC`
	if activeOnly {
		query = `
		SELECT id::text, name, description, price::text, duration_minutes, active, created_at
		FROM services
		WHERE active
		ORDER BY name ASC`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.DurationMinutes, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
