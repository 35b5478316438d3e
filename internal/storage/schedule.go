package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"studiobook/internal/db"
	"studiobook/internal/model"
)

// Schedule persists the weekday business-hours configuration and the blackout
// date registry.
type Schedule struct {
	pool *db.Pool
}

func NewSchedule(pool *db.Pool) *Schedule {
	return &Schedule{pool: pool}
}

// HoursFor returns the configuration for a weekday, or found=false when the
// weekday has no row. Callers treat the absent case as closed.
func (r *Schedule) HoursFor(ctx context.Context, q Querier, weekday int) (model.BusinessHours, bool, error) {
	var h model.BusinessHours
	err := q.QueryRow(ctx, `
		SELECT weekday, active, open_minute, close_minute
		FROM business_hours
		WHERE weekday = $1
	`, weekday).Scan(&h.Weekday, &h.Active, &h.OpenMinute, &h.CloseMinute)
	if err == pgx.ErrNoRows {
		return model.BusinessHours{}, false, nil
	}
	if err != nil {
		return model.BusinessHours{}, false, err
	}
	return h, true, nil
}

func (r *Schedule) ListHours(ctx context.Context, activeOnly bool) ([]model.BusinessHours, error) {
	query := `
		SELECT weekday, active, open_minute, close_minute
		FROM business_hours
		ORDER BY weekday ASC`
	if activeOnly {
		query = `
		SELECT weekday, active, open_minute, close_minute
		FROM business_hours
		WHERE active
		ORDER BY weekday ASC`
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BusinessHours
	for rows.Next() {
		var h model.BusinessHours
		if err := rows.Scan(&h.Weekday, &h.Active, &h.OpenMinute, &h.CloseMinute); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Schedule) UpsertHours(ctx context.Context, h model.BusinessHours) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO business_hours (weekday, active, open_minute, close_minute)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (weekday) DO UPDATE
		SET active = EXCLUDED.active,
			open_minute = EXCLUDED.open_minute,
			close_minute = EXCLUDED.close_minute
	`, h.Weekday, h.Active, h.OpenMinute, h.CloseMinute)
	return err
}

// BlackoutExists is the fast path used by both the slot generator and the
// booking validator.
func (r *Schedule) BlackoutExists(ctx context.Context, q Querier, date time.Time) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM blackout_dates WHERE date = $1)
	`, date).Scan(&exists)
	return exists, err
}

func (r *Schedule) CreateBlackout(ctx context.Context, b model.BlackoutDate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blackout_dates (date, reason)
		VALUES ($1, $2)
	`, b.Date, b.Reason)
	return err
}

func (r *Schedule) ListBlackouts(ctx context.Context, from time.Time, limit int) ([]model.BlackoutDate, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT date, reason, created_at
		FROM blackout_dates
		WHERE date >= $1
		ORDER BY date ASC
		LIMIT $2
	`, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BlackoutDate
	for rows.Next() {
		var b model.BlackoutDate
		if err := rows.Scan(&b.Date, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Schedule) DeleteBlackout(ctx context.Context, date time.Time) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blackout_dates WHERE date = $1`, date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
