package datetime

import "fmt"

// Weekday numbers follow the calendar grid: Sunday is the first column.
type Weekday int

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{
	Sunday:    "Sunday",
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
}

// WeekdayFromNumber returns the weekday for n in 1..7 (1 = Sunday).
func WeekdayFromNumber(n int) (Weekday, error) {
	if n < int(Sunday) || n > int(Saturday) {
		return 0, fmt.Errorf("datetime: weekday number must be within 1 and 7, got %d", n)
	}
	return Weekday(n), nil
}

// Number is 1 for Sunday through 7 for Saturday.
func (w Weekday) Number() int {
	return int(w)
}

// String is the English name, e.g. "Sunday".
func (w Weekday) String() string {
	if w < Sunday || w > Saturday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Short returns the three-letter abbreviation used in grid headers.
func (w Weekday) Short() string {
	s := w.String()
	if len(s) < 3 {
		return s
	}
	return s[:3]
}

type Month int

const (
	January Month = iota + 1
	February
	March
	April
	May
	June
	July
	August
	September
	October
	November
	December
)

var months = [...]struct {
	name string
	days int
}{
	January:   {"January", 31},
	February:  {"February", 28},
	March:     {"March", 31},
	April:     {"April", 30},
	May:       {"May", 31},
	June:      {"June", 30},
	July:      {"July", 31},
	August:    {"August", 31},
	September: {"September", 30},
	October:   {"October", 31},
	November:  {"November", 30},
	December:  {"December", 31},
}

// String is the English name, e.g. "January".
func (m Month) String() string {
	if m < January || m > December {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return months[m].name
}

// MonthName returns the English name of month 1..12.
func MonthName(month int) (string, error) {
	if month < 1 || month > 12 {
		return "", fmt.Errorf("datetime: month number must be between 1 and 12, got %d", month)
	}
	return months[month].name, nil
}

// MonthLength returns the number of days in the given month; February has
// 29 days in leap years.
func MonthLength(year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("datetime: month number must be between 1 and 12, got %d", month)
	}
	if month == int(February) && IsLeapYear(year) {
		return 29, nil
	}
	return months[month].days, nil
}

// monthLen is MonthLength for callers that already hold a valid month.
func monthLen(year, month int) int {
	n, err := MonthLength(year, month)
	if err != nil {
		panic(err)
	}
	return n
}
