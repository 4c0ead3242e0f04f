package datetime

import (
	"errors"
	"testing"
)

func TestNewDateRejectsInvalid(t *testing.T) {
	if _, err := NewDate(2021, 2, 29); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	d, err := NewDate(2024, 2, 29)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected fields %d %d %d", d.Year(), d.Month(), d.Day())
	}
}

func TestDateFormatting(t *testing.T) {
	d := MustDate(2020, 1, 2)
	if got := d.String(); got != "2020 01 02" {
		t.Fatalf("expected %q, got %q", "2020 01 02", got)
	}
	if got := d.ISO(); got != "2020-01-02" {
		t.Fatalf("expected %q, got %q", "2020-01-02", got)
	}
	if got := d.Formatted(); got != "January 2, 2020" {
		t.Fatalf("expected %q, got %q", "January 2, 2020", got)
	}
}

func TestDateComparisons(t *testing.T) {
	a, b := MustDate(2020, 12, 31), MustDate(2021, 1, 1)
	if !a.Before(b) || a.After(b) || !b.After(a) {
		t.Fatalf("ordering of %s and %s is wrong", a, b)
	}
	if a.DaysUntil(b) != 1 || b.DaysUntil(a) != -1 {
		t.Fatalf("expected +1/-1, got %d/%d", a.DaysUntil(b), b.DaysUntil(a))
	}
	if !a.Equal(MustDate(2020, 12, 31)) {
		t.Fatalf("expected equal dates")
	}
	if !(Date{}).IsZero() || a.IsZero() {
		t.Fatalf("IsZero is wrong")
	}
}

func TestParseISO(t *testing.T) {
	d, err := ParseISO("2026-10-19")
	if err != nil || d != MustDate(2026, 10, 19) {
		t.Fatalf("expected 2026-10-19, got %s (%v)", d, err)
	}
	for _, s := range []string{"", "2026-13-01", "1899-12-31", "yesterday"} {
		if _, err := ParseISO(s); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseISO(%q): expected ErrInvalidDate, got %v", s, err)
		}
	}
}

func TestTimeFormattingAndOrder(t *testing.T) {
	cases := []struct {
		t          Time
		file, h12  string
		clock      string
		hourOnDial int
	}{
		{MustTime(0, 0), "00 00", "12:00 am", "00:00", 12},
		{MustTime(9, 5), "09 05", "09:05 am", "09:05", 9},
		{MustTime(12, 30), "12 30", "12:30 pm", "12:30", 12},
		{MustTime(23, 59), "23 59", "11:59 pm", "23:59", 11},
	}
	for _, tc := range cases {
		if tc.t.String() != tc.file || tc.t.Format12h() != tc.h12 || tc.t.Clock() != tc.clock || tc.t.Hour12() != tc.hourOnDial {
			t.Fatalf("unexpected formatting for %s: %q %q %q %d", tc.clock, tc.t.String(), tc.t.Format12h(), tc.t.Clock(), tc.t.Hour12())
		}
	}

	a, b := MustTime(9, 0), MustTime(9, 1)
	if !a.Before(b) || !a.BeforeOrSame(b) || a.After(b) || a.AfterOrSame(b) {
		t.Fatalf("ordering of 09:00 and 09:01 is wrong")
	}
	if !a.BeforeOrSame(a) || !a.AfterOrSame(a) || a.Before(a) || a.After(a) {
		t.Fatalf("a time must be before-or-same and after-or-same itself")
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("07:45")
	if err != nil || got != MustTime(7, 45) {
		t.Fatalf("expected 07:45, got %s (%v)", got.Clock(), err)
	}
	if _, err := ParseClock("25:00"); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
}

func TestWeekdayAndMonthTables(t *testing.T) {
	for n := 1; n <= 7; n++ {
		w, err := WeekdayFromNumber(n)
		if err != nil || w.Number() != n {
			t.Fatalf("WeekdayFromNumber(%d): got %v (%v)", n, w, err)
		}
	}
	if _, err := WeekdayFromNumber(0); err == nil {
		t.Fatalf("expected error for weekday 0")
	}
	if Sunday.String() != "Sunday" || Saturday.Short() != "Sat" {
		t.Fatalf("unexpected weekday names %s %s", Sunday, Saturday.Short())
	}
	name, err := MonthName(9)
	if err != nil || name != "September" {
		t.Fatalf("expected September, got %q (%v)", name, err)
	}
	if _, err := MonthName(0); err == nil {
		t.Fatalf("expected error for month 0")
	}
}
