package model

import (
	"fmt"
	"strings"

	"mycal/internal/datetime"
)

// Event is a single-day calendar entry. Its date is a real date, its color is
// one of Colors, its start is never after its end, and neither title nor
// description is ever the Separator.
//
// Event is a value: copies are independent, and two events are equal exactly
// when their canonical text (String) is identical.
type Event struct {
	date        datetime.Date
	start       datetime.Time
	end         datetime.Time
	title       string
	description string
	color       Color
}

// NewEvent validates and builds an event.
func NewEvent(date datetime.Date, start, end datetime.Time, title, description string, color Color) (Event, error) {
	if err := checkDate(date); err != nil {
		return Event{}, err
	}
	if err := checkColor(color); err != nil {
		return Event{}, err
	}
	if start.After(end) {
		return Event{}, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start.Clock(), end.Clock())
	}
	if isReserved(title) {
		return Event{}, fmt.Errorf("title: %w", ErrReservedToken)
	}
	if isReserved(description) {
		return Event{}, fmt.Errorf("description: %w", ErrReservedToken)
	}
	return Event{
		date:        date,
		start:       start,
		end:         end,
		title:       title,
		description: description,
		color:       color,
	}, nil
}

// Accessors. Event is a value, so every result is a copy.

func (e Event) Date() datetime.Date      { return e.date }
func (e Event) StartTime() datetime.Time { return e.start }
func (e Event) EndTime() datetime.Time   { return e.end }
func (e Event) Title() string            { return e.title }
func (e Event) Description() string      { return e.description }
func (e Event) Color() Color             { return e.color }

// SetDate moves the event. The zero Date is rejected with ErrInvalidDate.
func (e *Event) SetDate(d datetime.Date) error {
	if err := checkDate(d); err != nil {
		return err
	}
	e.date = d
	return nil
}

// SetStartAndEndTimes replaces both times, or neither when end is before start.
func (e *Event) SetStartAndEndTimes(start, end datetime.Time) error {
	if end.Before(start) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start.Clock(), end.Clock())
	}
	e.start = start
	e.end = end
	return nil
}

// SetTitle fails with ErrReservedToken when a line of title is the Separator.
func (e *Event) SetTitle(title string) error {
	if isReserved(title) {
		return fmt.Errorf("title: %w", ErrReservedToken)
	}
	e.title = title
	return nil
}

// SetDescription follows the same rule as SetTitle.
func (e *Event) SetDescription(description string) error {
	if isReserved(description) {
		return fmt.Errorf("description: %w", ErrReservedToken)
	}
	e.description = description
	return nil
}

// SetColor recolors the event. Colors outside Colors() fail with
// ErrUnknownColor.
func (e *Event) SetColor(c Color) error {
	if err := checkColor(c); err != nil {
		return err
	}
	e.color = c
	return nil
}

// validate rechecks the invariants NewEvent enforces. It catches the zero
// Event, which was never built by NewEvent.
func (e Event) validate() error {
	if err := checkDate(e.date); err != nil {
		return err
	}
	if err := checkColor(e.color); err != nil {
		return err
	}
	if e.start.After(e.end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, e.start.Clock(), e.end.Clock())
	}
	if isReserved(e.title) || isReserved(e.description) {
		return ErrReservedToken
	}
	return nil
}

func checkDate(d datetime.Date) error {
	if d.IsZero() {
		return fmt.Errorf("%w: date is not set", ErrInvalidDate)
	}
	return nil
}

func checkColor(c Color) error {
	if !c.valid() {
		return fmt.Errorf("%w: %d", ErrUnknownColor, int(c))
	}
	return nil
}

// Overlap reports whether other collides with e. Events on different dates
// never overlap. On the same date, other overlaps when it starts inside
// [e.start, e.end] (both ends inclusive) or covers exactly the same span.
func (e Event) Overlap(other Event) bool {
	if !e.date.Equal(other.date) {
		return false
	}

	startsBefore := other.start.BeforeOrSame(e.start)
	startsAfter := other.start.AfterOrSame(e.start)
	atStart := startsBefore && startsAfter

	startsWithin := other.start.AfterOrSame(e.start) && other.start.BeforeOrSame(e.end)

	sameSpan := other.start.Equal(e.start) && other.end.Equal(e.end)

	return atStart || startsWithin || sameSpan
}

// Equal compares canonical text.
func (e Event) Equal(other Event) bool {
	return e.String() == other.String()
}

// String is the event's canonical text. It is both the body of an event
// record in a calendar file and the key for event equality.
func (e Event) String() string {
	var b strings.Builder
	writeSection(&b, "date: "+e.date.String()+"\n")
	writeSection(&b, "start_time: "+e.start.String()+"\nend_time: "+e.end.String()+"\n")
	writeSection(&b, "title: \n"+e.title+"\n")
	writeSection(&b, "description: \n"+e.description+"\n")
	writeSection(&b, "color: "+e.color.String()+" - "+e.color.RGBString()+"\n")
	b.WriteString(Separator)
	b.WriteByte('\n')
	return b.String()
}
