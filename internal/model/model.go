// Package model holds the calendar's entities: colored events and the
// ordered, duplicate-free collection that owns them.
package model

import (
	"errors"
	"strings"

	"mycal/internal/datetime"
)

const (
	// Separator delimits the sections of an event's canonical text. No line
	// of a title or description may equal it.
	Separator = "-------------------------------------"

	// Banner delimits event records in a calendar file.
	Banner = "##########################################"

	// MaxEvents is the largest number of events a calendar may hold.
	MaxEvents = 365000
)

var (
	ErrReservedToken    = errors.New("text cannot be the section separator")
	ErrDuplicateEvent   = errors.New("identical event already exists in this calendar")
	ErrCapacityExceeded = errors.New("calendar can hold a maximum of 365,000 events")
	ErrNotFound         = errors.New("event does not exist in this calendar")
	ErrUnknownColor     = errors.New("unknown color")

	// ErrInvalidRange and ErrInvalidDate are shared with the datetime
	// package so callers can match either source with one errors.Is.
	ErrInvalidRange = datetime.ErrInvalidRange
	ErrInvalidDate  = datetime.ErrInvalidDate
)

// isReserved reports whether s is, or has a line that is, the Separator. A
// separator line inside a text block would end the block when read back.
func isReserved(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		if line == Separator {
			return true
		}
	}
	return false
}

// writeSection appends a separator line followed by body.
func writeSection(b *strings.Builder, body string) {
	b.WriteString(Separator)
	b.WriteByte('\n')
	b.WriteString(body)
}
