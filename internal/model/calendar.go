package model

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"mycal/internal/datetime"
)

// eventKey identifies an event by a digest of its canonical text, so the
// index stays small even for a full calendar.
type eventKey [sha256.Size]byte

func keyOf(e Event) eventKey {
	return sha256.Sum256([]byte(e.String()))
}

// Calendar is an ordered collection of distinct events. It stores its own
// copies, so changing an Event after Add (or one returned by Events) never
// changes the calendar; use Replace to edit.
//
// The zero value is an empty calendar. Calendar is not safe for concurrent use.
type Calendar struct {
	events []Event
	keys   []eventKey
	index  map[eventKey]struct{}
}

// New returns an empty calendar. The zero Calendar is also ready to use.
func New() *Calendar {
	return &Calendar{index: make(map[eventKey]struct{})}
}

// Events returns a copy of the events in insertion order.
func (c *Calendar) Events() []Event {
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Len is the number of events held.
func (c *Calendar) Len() int {
	return len(c.events)
}

// Contains reports whether an event equal to e is present.
func (c *Calendar) Contains(e Event) bool {
	_, ok := c.index[keyOf(e)]
	return ok
}

// Add appends e. It fails with ErrDuplicateEvent when an equal event is
// already present and ErrCapacityExceeded when the calendar is full. An
// event that was not built by NewEvent, such as the zero Event, is rejected
// with its validation error.
func (c *Calendar) Add(e Event) error {
	if err := e.validate(); err != nil {
		return err
	}
	k := keyOf(e)
	if _, ok := c.index[k]; ok {
		return fmt.Errorf("%w: %q on %s", ErrDuplicateEvent, e.title, e.date.ISO())
	}
	if len(c.events) >= MaxEvents {
		return ErrCapacityExceeded
	}
	if c.index == nil {
		c.index = make(map[eventKey]struct{})
	}
	c.events = append(c.events, e)
	c.keys = append(c.keys, k)
	c.index[k] = struct{}{}
	return nil
}

// Remove deletes the event equal to e.
func (c *Calendar) Remove(e Event) error {
	k := keyOf(e)
	i := c.position(k)
	if i < 0 {
		return fmt.Errorf("%w: %q on %s", ErrNotFound, e.title, e.date.ISO())
	}
	c.events = append(c.events[:i], c.events[i+1:]...)
	c.keys = append(c.keys[:i], c.keys[i+1:]...)
	delete(c.index, k)
	return nil
}

// Replace swaps old for updated, keeping old's position.
func (c *Calendar) Replace(old, updated Event) error {
	if err := updated.validate(); err != nil {
		return err
	}
	oldKey := keyOf(old)
	i := c.position(oldKey)
	if i < 0 {
		return fmt.Errorf("%w: %q on %s", ErrNotFound, old.title, old.date.ISO())
	}
	newKey := keyOf(updated)
	if newKey == oldKey {
		return nil
	}
	if _, ok := c.index[newKey]; ok {
		return fmt.Errorf("%w: %q on %s", ErrDuplicateEvent, updated.title, updated.date.ISO())
	}
	c.events[i] = updated
	c.keys[i] = newKey
	delete(c.index, oldKey)
	c.index[newKey] = struct{}{}
	return nil
}

func (c *Calendar) position(k eventKey) int {
	if _, ok := c.index[k]; !ok {
		return -1
	}
	for i := range c.keys {
		if c.keys[i] == k {
			return i
		}
	}
	return -1
}

// EventsOn returns the events on date ordered by start time, then end time.
// Ties keep insertion order.
func (c *Calendar) EventsOn(date datetime.Date) []Event {
	var out []Event
	for _, e := range c.events {
		if e.date.Equal(date) {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out
}

// EventsBetween returns the events dated from..to inclusive, ordered by date
// and then start time.
func (c *Calendar) EventsBetween(from, to datetime.Date) []Event {
	if to.Before(from) {
		from, to = to, from
	}
	var out []Event
	for _, e := range c.events {
		if !e.date.Before(from) && !e.date.After(to) {
			out = append(out, e)
		}
	}
	sortByStart(out)
	return out
}

// Conflicts returns the other events that overlap e in either direction.
func (c *Calendar) Conflicts(e Event) []Event {
	k := keyOf(e)
	var out []Event
	for i, other := range c.events {
		if c.keys[i] == k {
			continue
		}
		if e.Overlap(other) || other.Overlap(e) {
			out = append(out, other)
		}
	}
	return out
}

func sortByStart(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if !a.start.Equal(b.start) {
			return a.start.Before(b.start)
		}
		return a.end.Before(b.end)
	})
}
