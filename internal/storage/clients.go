package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studiobook/internal/db"
	"studiobook/internal/model"
)

type Clients struct {
	pool *db.Pool
}

func NewClients(pool *db.Pool) *Clients {
	return &Clients{pool: pool}
}

// GetOrCreate finds a client by email or creates one on first booking.
// Name, surname and phone are refreshed from the latest submission so the
// record tracks the client's current contact details.
func (r *Clients) GetOrCreate(ctx context.Context, tx pgx.Tx, c model.Client) (model.Client, error) {
	id := uuid.NewString()
	var out model.Client
	err := tx.QueryRow(ctx, `
		INSERT INTO clients (id, name, surname, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			surname = EXCLUDED.surname,
			phone = EXCLUDED.phone
		RETURNING id::text, name, surname, email, phone, created_at
	`, id, c.Name, c.Surname, c.Email, c.Phone).Scan(
		&out.ID, &out.Name, &out.Surname, &out.Email, &out.Phone, &out.CreatedAt,
	)
	return out, err
}

func (r *Clients) Get(ctx context.Context, id string) (model.Client, error) {
	var c model.Client
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, surname, email, phone, created_at
		FROM clients
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Surname, &c.Email, &c.Phone, &c.CreatedAt)
	return c, err
}

func (r *Clients) List(ctx context.Context, limit int) ([]model.Client, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, surname, email, phone, created_at
		FROM clients
		ORDER BY surname ASC, name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Client
	for rows.Next() {
		var c model.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Surname, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// Delete removes a client. Their appointments go with them; the foreign key
// cascades by an explicit policy choice.
func (r *Clients) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
