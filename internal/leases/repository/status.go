package repository

import (
	"fmt"
	"time"
)

// Status is the derived, date-based lease classification. It is never stored;
// both the SQL filter predicates and the classification attached to output
// rows are computed from the same date rules, so a search for one status can
// never return a lease classified as another on the same day.
type Status string

const (
	StatusCurrent    Status = "current"
	StatusUpcoming   Status = "upcoming"
	StatusAboutToEnd Status = "aboutToEnd"
	StatusEnded      Status = "ended"
)

// AllStatuses lists every classification variant.
func AllStatuses() []Status {
	return []Status{StatusCurrent, StatusUpcoming, StatusAboutToEnd, StatusEnded}
}

// ParseStatus validates a public status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusCurrent, StatusUpcoming, StatusAboutToEnd, StatusEnded:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("unknown status %q", raw)
	}
}

// DateOnly truncates a timestamp to day granularity; all status rules
// compare whole days.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Classify derives the status of a lease on the given reference date.
// The variants are mutually exclusive: an unstarted lease is upcoming no
// matter what its end date says.
func Classify(start time.Time, lastDebit *time.Time, today time.Time) Status {
	start = DateOnly(start)
	today = DateOnly(today)

	if start.After(today) {
		return StatusUpcoming
	}
	if lastDebit == nil {
		return StatusCurrent
	}
	if !DateOnly(*lastDebit).Before(today) {
		return StatusAboutToEnd
	}
	return StatusEnded
}

// Matches reports whether a lease with the given dates carries this status on
// the reference date. It is definitionally Classify(...) == s and exists so
// tests can exercise each variant's rule in isolation.
func (s Status) Matches(start time.Time, lastDebit *time.Time, today time.Time) bool {
	return Classify(start, lastDebit, today) == s
}

// predicate returns the SQL term selecting exactly the leases Classify would
// assign this status on the reference date. Because upcoming takes precedence
// over the end-date variants, aboutToEnd and ended both require the lease to
// have started.
func (s Status) predicate(today time.Time) predicate {
	day := DateOnly(today)
	switch s {
	case StatusCurrent:
		return newPredicate("h.avtbeg <= ? AND h.sistadeb IS NULL", day)
	case StatusUpcoming:
		return newPredicate("h.avtbeg > ?", day)
	case StatusAboutToEnd:
		return newPredicate("h.avtbeg <= ? AND h.sistadeb IS NOT NULL AND h.sistadeb >= ?", day, day)
	case StatusEnded:
		return newPredicate("h.avtbeg <= ? AND h.sistadeb IS NOT NULL AND h.sistadeb < ?", day, day)
	default:
		// ParseStatus guards every entry point; reaching this is a bug.
		panic(fmt.Sprintf("no predicate for status %q", s))
	}
}

func newPredicate(expr string, args ...interface{}) predicate {
	return predicate{expr: expr, args: args}
}
