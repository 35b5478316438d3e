package booking

import (
	"fmt"
	"time"

	"studiobook/internal/availability"
	"studiobook/internal/model"
)

// Clock supplies the current time. Handlers inject time.Now in production and
// a fixed value under test; "today" and same-day slot trimming depend on it.
type Clock func() time.Time

// SlotStep is the fixed grid cadence for bookable start times. It is
// deliberately decoupled from service durations so the published schedule
// stays evenly spaced regardless of how long each service runs.
const SlotStep = 30 * time.Minute

// Reason explains an empty slot list. Empty string means the day is open but
// every candidate is taken.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonPastDate Reason = CodeInvalidDate
	ReasonBlackout Reason = CodeDateUnavailable
	ReasonDayOff   Reason = "day-off"
	ReasonNoConfig Reason = "no-config"
)

// Day bundles everything the slot generator and validator need to know about
// one calendar date: the weekday's hours (nil when unconfigured), whether the
// date is blacked out, and the non-cancelled appointments already booked.
type Day struct {
	Date     time.Time // midnight, business location
	Hours    *model.BusinessHours
	Blackout bool
	Booked   []model.Appointment
}

func (d Day) window() (open, close time.Time) {
	open = d.Date.Add(time.Duration(d.Hours.OpenMinute) * time.Minute)
	close = d.Date.Add(time.Duration(d.Hours.CloseMinute) * time.Minute)
	return open, close
}

func (d Day) busyIntervals() []availability.Interval {
	busy := make([]availability.Interval, 0, len(d.Booked))
	for _, appt := range d.Booked {
		busy = append(busy, availability.Interval{Start: appt.Start(), End: appt.End()})
	}
	return busy
}

// SlotTimes produces the bookable start times for a service of the given
// duration on d, formatted as "HH:MM" in ascending order. A pure function of
// its inputs: identical inputs always yield identical output.
func SlotTimes(d Day, duration time.Duration, now time.Time) ([]string, Reason) {
	if d.Date.Before(startOfDay(now)) {
		return nil, ReasonPastDate
	}
	if d.Blackout {
		return nil, ReasonBlackout
	}
	// Unconfigured weekdays are closed. The explicit branch is the fail-closed
	// default; there is no implicit fallback schedule.
	if d.Hours == nil {
		return nil, ReasonNoConfig
	}
	if !d.Hours.Active {
		return nil, ReasonDayOff
	}

	open, close := d.window()
	starts := availability.Slots(open, close, duration, SlotStep, d.busyIntervals(), now)

	slots := make([]string, 0, len(starts))
	for _, s := range starts {
		slots = append(slots, s.Format("15:04"))
	}
	return slots, ReasonNone
}

// Validate checks a booking request for startMinute on d against the ledger.
// Checks run in order and short-circuit on the first failure; a nil return
// means the request may be committed. The conflict intervals are rebuilt from
// each existing appointment's linked service duration at call time.
func Validate(d Day, startMinute int, duration time.Duration, now time.Time) *Error {
	if d.Date.Before(startOfDay(now)) {
		return &Error{Code: CodeInvalidDate, Message: "date is in the past"}
	}
	if d.Blackout {
		return &Error{Code: CodeDateUnavailable, Message: "date is not available for booking"}
	}

	start := d.Date.Add(time.Duration(startMinute) * time.Minute)
	candidate := availability.Interval{Start: start, End: start.Add(duration)}
	for _, appt := range d.Booked {
		existing := availability.Interval{Start: appt.Start(), End: appt.End()}
		if candidate.Overlaps(existing) {
			return &Error{
				Code: CodeScheduleConflict,
				Message: fmt.Sprintf("requested time conflicts with an existing appointment (%s-%s)",
					existing.Start.Format("15:04"), existing.End.Format("15:04")),
			}
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
