package datetime

import (
	"fmt"
	"time"
)

// Time is a validated time of day on a 24-hour clock, with minute precision.
type Time struct {
	hour   int
	minute int
}

// NewTime validates hour (0..23) and minute (0..59) and returns the time
// they name, or ErrInvalidTime.
func NewTime(hour, minute int) (Time, error) {
	if err := ValidateTime(hour, minute); err != nil {
		return Time{}, err
	}
	return Time{hour: hour, minute: minute}, nil
}

// MustTime is NewTime for literals known to be valid. It panics otherwise.
func MustTime(hour, minute int) Time {
	t, err := NewTime(hour, minute)
	if err != nil {
		panic(err)
	}
	return t
}

// Hour is 0..23.
func (t Time) Hour() int { return t.hour }

// Minute is 0..59.
func (t Time) Minute() int { return t.minute }

func (t Time) minutes() int {
	return t.hour*60 + t.minute
}

// Before reports whether t is strictly earlier in the day than o.
func (t Time) Before(o Time) bool { return t.minutes() < o.minutes() }

// BeforeOrSame reports whether t is earlier than or equal to o.
func (t Time) BeforeOrSame(o Time) bool { return t.minutes() <= o.minutes() }

// After reports whether t is strictly later in the day than o.
func (t Time) After(o Time) bool { return t.minutes() > o.minutes() }

// AfterOrSame reports whether t is later than or equal to o.
func (t Time) AfterOrSame(o Time) bool { return t.minutes() >= o.minutes() }

// Equal reports whether t and o are the same minute.
func (t Time) Equal(o Time) bool { return t == o }

// Hour12 is the hour on a 12-hour clock (12 for midnight and noon).
func (t Time) Hour12() int {
	if t.hour%12 == 0 {
		return 12
	}
	return t.hour % 12
}

// String renders the time the way the calendar file stores it: "09 05".
func (t Time) String() string {
	return fmt.Sprintf("%02d %02d", t.hour, t.minute)
}

// Clock renders "09:05".
func (t Time) Clock() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// Format12h renders "09:05 am".
func (t Time) Format12h() string {
	ampm := "am"
	if t.hour >= 12 {
		ampm = "pm"
	}
	return fmt.Sprintf("%02d:%02d %s", t.Hour12(), t.minute, ampm)
}

// ParseClock parses "HH:MM" (24-hour).
func ParseClock(s string) (Time, error) {
	v, err := time.Parse("15:04", s)
	if err != nil {
		return Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return NewTime(v.Hour(), v.Minute())
}

// TimeOf extracts the time of day of t, dropping seconds.
func TimeOf(t time.Time) Time {
	return Time{hour: t.Hour(), minute: t.Minute()}
}

// Today is the current local date.
func Today() (Date, error) {
	return DateOf(time.Now())
}

// Now is the current local time of day.
func Now() Time {
	return TimeOf(time.Now())
}
