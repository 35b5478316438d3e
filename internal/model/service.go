package model

import "time"

// Service is an offering clients book appointments for. Services are never
// deleted once appointments reference them; admins disable them instead.
type Service struct {
	ID              string
	Name            string
	Description     string
	Price           string // decimal carried as text, formatting stays with the store
	DurationMinutes int
	Active          bool
	CreatedAt       time.Time
}
