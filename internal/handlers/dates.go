package handlers

import (
	"time"
)

// parseDate accepts calendar dates in strict YYYY-MM-DD form, anchored at
// midnight in the business timezone.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", raw, loc)
}
