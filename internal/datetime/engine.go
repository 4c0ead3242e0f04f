// Package datetime implements the calendar's own date and time arithmetic over
// the proleptic Gregorian calendar, restricted to the years 1900 through 3000.
//
// January 1, 1900 (a Monday) is the epoch for day counts and weekday lookups.
package datetime

import "fmt"

const (
	MinYear = 1900
	MaxYear = 3000

	// SlotsPerHour and SlotsPerDay describe the five-minute grid used to
	// lay out events.
	SlotsPerHour = 12
	SlotsPerDay  = 24 * SlotsPerHour
)

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func yearLength(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// ValidateDate fails with ErrInvalidDate unless the triple names a real day
// within the supported year range.
func ValidateDate(year, month, day int) error {
	if year < MinYear || year > MaxYear || month < 1 || month > 12 || day < 1 || day > monthLen(year, month) {
		return fmt.Errorf("%w: y:%d m:%d d:%d", ErrInvalidDate, year, month, day)
	}
	return nil
}

// ValidateTime fails with ErrInvalidTime unless hour is 0..23 and minute 0..59.
func ValidateTime(hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %d:%d", ErrInvalidTime, hour, minute)
	}
	return nil
}

// DayOfWeek returns the weekday of a valid date.
func DayOfWeek(year, month, day int) (Weekday, error) {
	n, err := DaysBetween(MinYear, 1, 1, year, month, day)
	if err != nil {
		return 0, err
	}
	// The epoch is a Monday, which is number 2.
	return Weekday(((n + 1) % 7) + 1), nil
}

// DaysBetween counts the calendar days elapsed between two valid dates. The
// result does not depend on argument order, and is zero for the same date.
func DaysBetween(y1, m1, d1, y2, m2, d2 int) (int, error) {
	if err := ValidateDate(y1, m1, d1); err != nil {
		return 0, err
	}
	if err := ValidateDate(y2, m2, d2); err != nil {
		return 0, err
	}
	return daysBetween(y1, m1, d1, y2, m2, d2), nil
}

func daysBetween(y1, m1, d1, y2, m2, d2 int) int {
	if before(y2, m2, d2, y1, m1, d1) {
		y1, m1, d1, y2, m2, d2 = y2, m2, d2, y1, m1, d1
	}
	if y1 == y2 {
		return daysBetweenSameYear(y1, m1, d1, m2, d2)
	}

	n := 0
	for y := y1 + 1; y <= y2-1; y++ {
		n += yearLength(y)
	}
	// Rest of the first year, then the start of the last one. The +1 covers
	// the step from December 31 into January 1.
	n += daysBetweenSameYear(y1, m1, d1, 12, 31)
	n += daysBetweenSameYear(y2, 1, 1, m2, d2) + 1
	return n
}

// daysBetweenSameYear expects m1/d1 to be on or before m2/d2.
func daysBetweenSameYear(year, m1, d1, m2, d2 int) int {
	if m1 == m2 {
		return d2 - d1
	}
	n := 0
	for m := m1 + 1; m <= m2-1; m++ {
		n += monthLen(year, m)
	}
	n += monthLen(year, m1) - d1
	n += d2
	return n
}

// DatesInOrder reports whether the first date is strictly before the second.
func DatesInOrder(y1, m1, d1, y2, m2, d2 int) (bool, error) {
	if err := ValidateDate(y1, m1, d1); err != nil {
		return false, err
	}
	if err := ValidateDate(y2, m2, d2); err != nil {
		return false, err
	}
	return before(y1, m1, d1, y2, m2, d2), nil
}

func before(y1, m1, d1, y2, m2, d2 int) bool {
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}

// Normalize turns an out-of-range month and/or day into a real date by
// carrying into (or borrowing from) neighbouring months and years, e.g.
// (1914, 24, 62) becomes 1916-01-31 and (2020, 9, -2) becomes 2020-08-29.
// It fails with ErrOutOfRange when the result leaves 1900..3000.
func Normalize(year, month, day int) (Date, error) {
	if month < 1 {
		shift := -month/12 + 1
		month += 12 * shift
		year -= shift
	}
	if month > 12 {
		shift := (month - 1) / 12
		month -= 12 * shift
		year += shift
	}

	for day < 1 {
		if month == 1 {
			month = 12
			year--
		} else {
			month--
		}
		if year < MinYear {
			return Date{}, outOfRange(year, month, day)
		}
		day += monthLen(year, month)
	}

	for day > 31 {
		day -= monthLen(year, month)
		year, month = nextMonth(year, month)
		if year > MaxYear {
			return Date{}, outOfRange(year, month, day)
		}
	}

	if n := monthLen(year, month); day > n {
		day -= n
		year, month = nextMonth(year, month)
	}

	if year < MinYear || year > MaxYear {
		return Date{}, outOfRange(year, month, day)
	}
	return NewDate(year, month, day)
}

func nextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

func outOfRange(year, month, day int) error {
	return fmt.Errorf("%w: normalizing reached y:%d m:%d d:%d", ErrOutOfRange, year, month, day)
}

// StepDays moves n days forward or backward from date.
func StepDays(date Date, n int, forward bool) (Date, error) {
	if forward {
		return Normalize(date.year, date.month, date.day+n)
	}
	return Normalize(date.year, date.month, date.day-n)
}

// GoForwardDays is StepDays for the week grid: when the result would leave the
// supported range the input date is returned unchanged.
func GoForwardDays(date Date, n int) Date {
	d, err := StepDays(date, n, true)
	if err != nil {
		return date
	}
	return d
}

// ForwardWeek is the same weekday one week later. It fails with
// ErrOutOfRange past 3000-12-31.
func ForwardWeek(date Date) (Date, error) {
	return StepDays(date, 7, true)
}

// BackWeek is the same weekday one week earlier. It fails with
// ErrOutOfRange before 1900-01-01.
func BackWeek(date Date) (Date, error) {
	return StepDays(date, 7, false)
}

// SundayOfWeek returns the Sunday that starts date's week. Dates in 1900 with a
// day of month up to 6 clamp to 1900-01-01, the earliest representable day.
func SundayOfWeek(date Date) Date {
	if date.year == MinYear && date.day <= 6 {
		return Date{year: MinYear, month: 1, day: 1}
	}
	back := date.Weekday().Number() - 1
	d, err := Normalize(date.year, date.month, date.day-back)
	if err != nil {
		return date
	}
	return d
}

// FiveMinuteIndex counts the completed five-minute increments between
// midnight and t; the result is in 0..287.
func FiveMinuteIndex(t Time) int {
	return t.hour*SlotsPerHour + t.minute/5
}

// FiveMinuteSpan counts the five-minute increments from start to end on the
// same day. It agrees with FiveMinuteIndex(end) - FiveMinuteIndex(start).
func FiveMinuteSpan(start, end Time) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: %s to %s", ErrInvalidRange, start.Format12h(), end.Format12h())
	}
	if start.hour == end.hour {
		return end.minute/5 - start.minute/5, nil
	}
	startPartial := SlotsPerHour - start.minute/5
	endPartial := end.minute / 5
	whole := (end.hour - start.hour - 1) * SlotsPerHour
	return startPartial + whole + endPartial, nil
}
