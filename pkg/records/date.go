package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedDate is returned when a date field cannot be parsed.
var ErrMalformedDate = errors.New("malformed date")

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day or zone. Values are stored as
// UTC midnight.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the UTC calendar date of an instant.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp (reduced to its UTC date).
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

// Time returns the date as UTC midnight.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string { return d.t.Format(dateLayout) }

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// DaysFrom returns the number of whole calendar days from the as-of instant's
// UTC date to d. Negative values are in the past.
func (d Date) DaysFrom(asOf time.Time) int {
	return int(d.t.Sub(DateOf(asOf).t).Hours() / 24)
}

// DaysSince returns whole UTC calendar days elapsed from t to asOf.
func DaysSince(t, asOf time.Time) int {
	return -DateOf(t).DaysFrom(asOf)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedDate, string(data))
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsOverdue reports whether a due date lies strictly before the as-of
// calendar day. A nil due date is never overdue.
func IsOverdue(due *Date, asOf time.Time) bool {
	return due != nil && due.DaysFrom(asOf) < 0
}

// WithinDays reports whether a date falls in the forward window [0, days]
// measured from the as-of calendar day.
func WithinDays(d *Date, asOf time.Time, days int) bool {
	if d == nil {
		return false
	}
	n := d.DaysFrom(asOf)
	return n >= 0 && n <= days
}

// DeliverableOverdue applies the shared overdue rule to a deliverable.
func DeliverableOverdue(d Deliverable, asOf time.Time) bool {
	return !d.Status.Completed() && IsOverdue(d.DueDate, asOf)
}

// TaskOverdue applies the shared overdue rule to a task.
func TaskOverdue(t Task, asOf time.Time) bool {
	return !t.Status.Done() && IsOverdue(t.DueDate, asOf)
}
