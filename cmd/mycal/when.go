package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"mycal/internal/datetime"
)

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// parseWhen turns a phrase like "tomorrow at 3pm" into a day and a span of
// length d. Spans that would cross midnight end at 23:59.
func parseWhen(text string, d time.Duration, base time.Time) (datetime.Date, datetime.Time, datetime.Time, error) {
	if d <= 0 {
		return datetime.Date{}, datetime.Time{}, datetime.Time{}, errors.New("--duration must be positive")
	}
	res, err := parser.Parse(text, base)
	if err != nil {
		return datetime.Date{}, datetime.Time{}, datetime.Time{}, fmt.Errorf("parse %q: %w", text, err)
	}
	if res == nil {
		return datetime.Date{}, datetime.Time{}, datetime.Time{}, fmt.Errorf("could not find a date or time in %q", text)
	}

	startAt := res.Time.Truncate(time.Minute)
	date, err := datetime.DateOf(startAt)
	if err != nil {
		return datetime.Date{}, datetime.Time{}, datetime.Time{}, err
	}
	start := datetime.TimeOf(startAt)

	endAt := startAt.Add(d)
	end := datetime.TimeOf(endAt)
	if y1, m1, d1 := startAt.Date(); y1 != endAt.Year() || m1 != endAt.Month() || d1 != endAt.Day() {
		end = datetime.MustTime(23, 59)
	}
	return date, start, end, nil
}
