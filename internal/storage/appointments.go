package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studiobook/internal/db"
	"studiobook/internal/model"
)

type Appointments struct {
	pool *db.Pool
}

func NewAppointments(pool *db.Pool) *Appointments {
	return &Appointments{pool: pool}
}

func (r *Appointments) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// LockDate takes a transaction-scoped advisory lock on the calendar date,
// serializing concurrent bookings for the same day. The conflict read that
// follows therefore sees every committed appointment, closing the
// check-then-act race between two simultaneous requests. Released on
// commit/rollback.
func (r *Appointments) LockDate(ctx context.Context, tx pgx.Tx, date time.Time) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, date.Format("2006-01-02"))
	return err
}

const appointmentColumns = `
	a.id::text, a.client_id::text, a.service_id::text, a.date, a.start_minute,
	a.status, a.notes, a.created_at, a.updated_at,
	c.name || ' ' || c.surname, c.email, s.name, s.duration_minutes`

const appointmentJoins = `
	FROM appointments a
	JOIN clients c ON c.id = a.client_id
	JOIN services s ON s.id = a.service_id`

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID, &a.ClientID, &a.ServiceID, &a.Date, &a.StartMinute,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
		&a.ClientName, &a.ClientEmail, &a.ServiceName, &a.DurationMinutes,
	)
	return a, err
}

// ActiveByDate returns the non-cancelled appointments for one date, each with
// its service's current duration, ordered by start time. This is the conflict
// set both the slot generator and the validator work from.
func (r *Appointments) ActiveByDate(ctx context.Context, q Querier, date time.Time) ([]model.Appointment, error) {
	rows, err := q.Query(ctx, `
		SELECT`+appointmentColumns+appointmentJoins+`
		WHERE a.date = $1 AND a.status <> $2
		ORDER BY a.start_minute ASC
	`, date, model.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func (r *Appointments) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	id := uuid.NewString()
	_, err := tx.Exec(ctx, `
		INSERT INTO appointments (id, client_id, service_id, date, start_minute, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, appt.ClientID, appt.ServiceID, appt.Date, appt.StartMinute, appt.Status, appt.Notes)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Appointments) Get(ctx context.Context, id string) (model.Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		SELECT`+appointmentColumns+appointmentJoins+`
		WHERE a.id = $1
	`, id))
}

// GetForUpdate loads an appointment inside tx with a row lock, for status
// transitions.
func (r *Appointments) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	return scanAppointment(tx.QueryRow(ctx, `
		SELECT`+appointmentColumns+appointmentJoins+`
		WHERE a.id = $1
		FOR UPDATE OF a
	`, id))
}

func (r *Appointments) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status model.Status) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List returns appointments ordered by (date, start time) ascending,
// optionally filtered to one date.
func (r *Appointments) List(ctx context.Context, date *time.Time, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT` + appointmentColumns + appointmentJoins + `
		ORDER BY a.date ASC, a.start_minute ASC
		LIMIT $1`
	args := []any{limit}
	if date != nil {
		query = `
		SELECT` + appointmentColumns + appointmentJoins + `
		WHERE a.date = $2
		ORDER BY a.date ASC, a.start_minute ASC
		LIMIT $1`
		args = append(args, *date)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAppointments(rows)
}

func collectAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
