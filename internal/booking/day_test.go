package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiobook/internal/model"
)

func monday() time.Time {
	// 2026-09-07 is a Monday.
	return time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
}

func openDay(date time.Time, booked ...model.Appointment) Day {
	return Day{
		Date:   date,
		Hours:  &model.BusinessHours{Weekday: model.WeekdayIndex(date), Active: true, OpenMinute: 10 * 60, CloseMinute: 19 * 60},
		Booked: booked,
	}
}

func booked(date time.Time, startMinute, durationMinutes int) model.Appointment {
	return model.Appointment{
		Date:            date,
		StartMinute:     startMinute,
		Status:          model.StatusPending,
		DurationMinutes: durationMinutes,
	}
}

func TestSlotTimes_OpenDay(t *testing.T) {
	date := monday()
	now := date.Add(-24 * time.Hour) // queried the day before

	slots, reason := SlotTimes(openDay(date), 60*time.Minute, now)
	require.Equal(t, ReasonNone, reason)
	// 10:00 through 18:00 on the half-hour grid; 18:30 would end past close.
	require.Len(t, slots, 17)
	assert.Equal(t, "10:00", slots[0])
	assert.Equal(t, "10:30", slots[1])
	assert.Equal(t, "18:00", slots[16])
}

func TestSlotTimes_ExcludesConflicts(t *testing.T) {
	date := monday()
	now := date.Add(-24 * time.Hour)

	day := openDay(date, booked(date, 10*60, 60))
	slots, reason := SlotTimes(day, 60*time.Minute, now)
	require.Equal(t, ReasonNone, reason)

	assert.NotContains(t, slots, "10:00")
	assert.NotContains(t, slots, "10:30") // would run 10:30-11:30, overlapping 10:00-11:00
	assert.Contains(t, slots, "11:00")    // starts exactly at the existing end
	assert.Equal(t, "11:00", slots[0])
}

func TestSlotTimes_SameDayTrimsPast(t *testing.T) {
	date := monday()
	now := date.Add(14*time.Hour + 5*time.Minute)

	slots, reason := SlotTimes(openDay(date), 60*time.Minute, now)
	require.Equal(t, ReasonNone, reason)
	require.NotEmpty(t, slots)
	assert.Equal(t, "14:30", slots[0])
}

func TestSlotTimes_Reasons(t *testing.T) {
	date := monday()
	now := date.Add(12 * time.Hour)

	t.Run("past date", func(t *testing.T) {
		slots, reason := SlotTimes(openDay(date.AddDate(0, 0, -1)), time.Hour, now)
		assert.Empty(t, slots)
		assert.Equal(t, ReasonPastDate, reason)
	})

	t.Run("blackout wins over hours", func(t *testing.T) {
		day := openDay(date)
		day.Blackout = true
		slots, reason := SlotTimes(day, time.Hour, now)
		assert.Empty(t, slots)
		assert.Equal(t, ReasonBlackout, reason)
	})

	t.Run("unconfigured weekday is closed", func(t *testing.T) {
		slots, reason := SlotTimes(Day{Date: date}, time.Hour, now)
		assert.Empty(t, slots)
		assert.Equal(t, ReasonNoConfig, reason)
	})

	t.Run("inactive weekday", func(t *testing.T) {
		day := openDay(date)
		day.Hours.Active = false
		slots, reason := SlotTimes(day, time.Hour, now)
		assert.Empty(t, slots)
		assert.Equal(t, ReasonDayOff, reason)
	})
}

func TestSlotTimes_Deterministic(t *testing.T) {
	date := monday()
	now := date.Add(-24 * time.Hour)
	day := openDay(date, booked(date, 11*60, 90))

	first, _ := SlotTimes(day, 45*time.Minute, now)
	second, _ := SlotTimes(day, 45*time.Minute, now)
	assert.Equal(t, first, second)
}

func TestValidate_Accepts(t *testing.T) {
	date := monday()
	now := date.Add(-24 * time.Hour)
	day := openDay(date, booked(date, 14*60, 60))

	// 15:00 starts exactly when the existing appointment ends.
	assert.Nil(t, Validate(day, 15*60, 60*time.Minute, now))
	// 13:00-14:00 ends exactly when it starts.
	assert.Nil(t, Validate(day, 13*60, 60*time.Minute, now))
}

func TestValidate_Conflict(t *testing.T) {
	date := monday()
	now := date.Add(-24 * time.Hour)
	day := openDay(date, booked(date, 14*60, 60)) // 14:00-15:00

	err := Validate(day, 14*60+30, 60*time.Minute, now)
	require.NotNil(t, err)
	assert.Equal(t, CodeScheduleConflict, err.Code)
	assert.Contains(t, err.Message, "14:00-15:00")
}

func TestValidate_ConflictUsesCurrentDuration(t *testing.T) {
	date := monday()
	now := date.Add(-24 * time.Hour)
	// The existing booking was made when the service ran 30 minutes; it now
	// runs 90, so its window is 14:00-15:30.
	day := openDay(date, booked(date, 14*60, 90))

	err := Validate(day, 15*60, 30*time.Minute, now)
	require.NotNil(t, err)
	assert.Equal(t, CodeScheduleConflict, err.Code)
}

func TestValidate_PastAndBlackout(t *testing.T) {
	date := monday()
	now := date.Add(12 * time.Hour)

	err := Validate(openDay(date.AddDate(0, 0, -1)), 14*60, time.Hour, now)
	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidDate, err.Code)

	day := openDay(date)
	day.Blackout = true
	err = Validate(day, 14*60, time.Hour, now)
	require.NotNil(t, err)
	assert.Equal(t, CodeDateUnavailable, err.Code)
}
