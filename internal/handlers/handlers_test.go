package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	date, err := parseDate("2026-09-07", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, loc), date)

	for _, bad := range []string{"", "07-09-2026", "2026/09/07", "2026-9-7", "2026-13-01", "tomorrow"} {
		_, err := parseDate(bad, loc)
		assert.Error(t, err, bad)
	}
}

func TestServicePayloadValidate(t *testing.T) {
	p := servicePayload{Name: "  Swedish Massage  ", Price: " 45.00 ", DurationMinutes: 60}
	assert.Empty(t, p.validate())
	assert.Equal(t, "Swedish Massage", p.Name)
	assert.Equal(t, "45.00", p.Price)

	p = servicePayload{Price: "45", DurationMinutes: 60}
	assert.NotEmpty(t, p.validate())

	p = servicePayload{Name: "Cut", Price: "45", DurationMinutes: 0}
	assert.NotEmpty(t, p.validate())

	p = servicePayload{Name: "Cut", Price: "lots", DurationMinutes: 30}
	assert.NotEmpty(t, p.validate())

	// Absent price defaults to zero.
	p = servicePayload{Name: "Consultation", DurationMinutes: 15}
	assert.Empty(t, p.validate())
	assert.Equal(t, "0", p.Price)
}
