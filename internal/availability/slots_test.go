package availability

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	a := Interval{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)}
	b := Interval{Start: day.Add(10*time.Hour + 30*time.Minute), End: day.Add(11*time.Hour + 30*time.Minute)}
	c := Interval{Start: day.Add(11 * time.Hour), End: day.Add(12 * time.Hour)}

	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatalf("expected %v and %v to overlap both ways", a, b)
	}
	// Half-open: a ends exactly where c begins.
	if a.Overlaps(c) || c.Overlaps(a) {
		t.Fatalf("touching intervals must not overlap")
	}
	if !a.Overlaps(a) {
		t.Fatalf("an interval overlaps itself")
	}
}

func TestSlots_Basic(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	open := day.Add(9 * time.Hour)
	close := day.Add(11 * time.Hour)

	busy := []Interval{
		{Start: day.Add(9*time.Hour + 30*time.Minute), End: day.Add(10*time.Hour + 30*time.Minute)},
	}

	slots := Slots(open, close, 30*time.Minute, 30*time.Minute, busy, day)
	// 09:00 fits, 09:30 and 10:00 collide, 10:30 fits.
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Equal(day.Add(9 * time.Hour)) {
		t.Fatalf("expected first slot 09:00, got %s", slots[0].Format(time.RFC3339))
	}
	if !slots[1].Equal(day.Add(10*time.Hour + 30*time.Minute)) {
		t.Fatalf("expected second slot 10:30, got %s", slots[1].Format(time.RFC3339))
	}
}

func TestSlots_StopsBeforeClose(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	open := day.Add(9 * time.Hour)
	close := day.Add(10 * time.Hour)

	slots := Slots(open, close, 45*time.Minute, 30*time.Minute, nil, day)
	// 09:00 ends 09:45 and fits; 09:30 would end 10:15, past close.
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if !slots[0].Equal(open) {
		t.Fatalf("expected slot 09:00, got %s", slots[0].Format(time.RFC3339))
	}
}

func TestSlots_ClampsToNow(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	open := day.Add(9 * time.Hour)
	close := day.Add(19 * time.Hour)

	now := day.Add(14*time.Hour + 5*time.Minute)
	slots := Slots(open, close, 60*time.Minute, 30*time.Minute, nil, now)
	if len(slots) == 0 {
		t.Fatal("expected slots after now")
	}
	// The grid advances in whole steps from open until it reaches now.
	if !slots[0].Equal(day.Add(14*time.Hour + 30*time.Minute)) {
		t.Fatalf("expected first slot 14:30, got %s", slots[0].Format(time.RFC3339))
	}
}

func TestSlots_FutureDayIgnoresNow(t *testing.T) {
	day := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	open := day.Add(9 * time.Hour)
	close := day.Add(10 * time.Hour)

	now := time.Date(2026, 9, 7, 18, 45, 0, 0, time.UTC)
	slots := Slots(open, close, 30*time.Minute, 30*time.Minute, nil, now)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[0].Equal(open) {
		t.Fatalf("expected first slot at open, got %s", slots[0].Format(time.RFC3339))
	}
}

func TestSlots_DegenerateInputs(t *testing.T) {
	day := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	open := day.Add(9 * time.Hour)

	if got := Slots(open, open, 30*time.Minute, 30*time.Minute, nil, day); got != nil {
		t.Fatalf("empty window should yield no slots, got %v", got)
	}
	if got := Slots(open, open.Add(time.Hour), 0, 30*time.Minute, nil, day); got != nil {
		t.Fatalf("zero duration should yield no slots, got %v", got)
	}
}
