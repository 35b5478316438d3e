package model

import "time"

// Status is the closed set of appointment states. Every consumer switches over
// it exhaustively; unknown values are rejected at the edges.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	default:
		return false
	}
}

// Label returns the display name used in admin listings and emails.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusConfirmed:
		return "Confirmed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// CanTransitionTo reports whether an admin may move an appointment from s to
// next. Creation always starts at Pending; Cancelled is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	case StatusCancelled:
		return false
	default:
		return false
	}
}

// Blocking reports whether the appointment occupies its time range for
// conflict purposes. Cancelled appointments stay in the ledger for history but
// never block.
func (s Status) Blocking() bool {
	switch s {
	case StatusPending, StatusConfirmed:
		return true
	case StatusCancelled:
		return false
	default:
		return false
	}
}

type Appointment struct {
	ID          string
	ClientID    string
	ServiceID   string
	Date        time.Time // midnight, business location
	StartMinute int       // minutes from midnight
	Status      Status
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Denormalized for responses and conflict math; populated by joins.
	ClientName      string
	ClientEmail     string
	ServiceName     string
	DurationMinutes int
}

// Start returns the appointment start as an instant on its date.
func (a Appointment) Start() time.Time {
	return a.Date.Add(time.Duration(a.StartMinute) * time.Minute)
}

// End derives the end instant from the linked service's current duration.
func (a Appointment) End() time.Time {
	return a.Start().Add(time.Duration(a.DurationMinutes) * time.Minute)
}
