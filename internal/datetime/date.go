package datetime

import (
	"fmt"
	"time"
)

// Date is a validated calendar day. The zero value is not a valid date; build
// dates with NewDate or Normalize.
type Date struct {
	year  int
	month int
	day   int
}

// NewDate validates the triple and returns the date it names.
func NewDate(year, month, day int) (Date, error) {
	if err := ValidateDate(year, month, day); err != nil {
		return Date{}, err
	}
	return Date{year: year, month: month, day: day}, nil
}

// MustDate is NewDate for literals known to be valid. It panics otherwise.
func MustDate(year, month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// Year is 1900..3000 for a valid date.
func (d Date) Year() int { return d.year }

// Month is 1..12.
func (d Date) Month() int { return d.month }

// Day is the day of the month, starting at 1.
func (d Date) Day() int { return d.day }

// IsZero reports whether d is the unset zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Weekday is the day of the week, or 0 for the zero Date.
func (d Date) Weekday() Weekday {
	w, err := DayOfWeek(d.year, d.month, d.day)
	if err != nil {
		return 0
	}
	return w
}

// Equal reports whether d and o name the same day.
func (d Date) Equal(o Date) bool {
	return d == o
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool {
	return before(d.year, d.month, d.day, o.year, o.month, o.day)
}

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool {
	return o.Before(d)
}

// DaysUntil is the signed day count from d to o.
func (d Date) DaysUntil(o Date) int {
	n := daysBetween(d.year, d.month, d.day, o.year, o.month, o.day)
	if o.Before(d) {
		return -n
	}
	return n
}

// String renders the date the way the calendar file stores it: "2020 01 02".
func (d Date) String() string {
	return fmt.Sprintf("%d %02d %02d", d.year, d.month, d.day)
}

// ISO renders the date as "2020-01-02".
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, d.month, d.day)
}

// Formatted renders the date for people: "January 2, 2020".
func (d Date) Formatted() string {
	name, err := MonthName(d.month)
	if err != nil {
		return d.ISO()
	}
	return fmt.Sprintf("%s %d, %d", name, d.day, d.year)
}

// ParseISO parses "YYYY-MM-DD" into a validated date.
func ParseISO(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// DateOf extracts the calendar day of t in t's location.
func DateOf(t time.Time) (Date, error) {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// At combines the date with a time of day in loc.
func (d Date) At(t Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.year, time.Month(d.month), d.day, t.hour, t.minute, 0, 0, loc)
}
