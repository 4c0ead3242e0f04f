package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"mycal/internal/model"
)

const (
	productID   = "-//mycal//mycal calendar//EN"
	uidDomain   = "@mycal"
	floatLayout = "20060102T150405"
)

// uidNamespace seeds event UIDs so the same event always exports with the
// same UID.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("mycal"))

// EventUID is the stable UID an event exports with. It is derived from the
// event's canonical text.
func EventUID(e model.Event) string {
	return uuid.NewSHA1(uidNamespace, []byte(e.String())).String() + uidDomain
}

// Export writes events as an iCalendar document. Times are floating (no
// zone), matching the calendar's wall-clock model. stamp is used for
// DTSTAMP.
func Export(w io.Writer, events []model.Event, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, e := range events {
		ve := cal.AddEvent(EventUID(e))
		ve.SetDtStampTime(stamp.UTC())

		start := e.Date().At(e.StartTime(), time.UTC)
		end := e.Date().At(e.EndTime(), time.UTC)
		ve.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatLayout))
		ve.SetProperty(ical.ComponentPropertyDtEnd, end.Format(floatLayout))

		ve.SetProperty(ical.ComponentPropertySummary, escapeText(e.Title()))
		if e.Description() != "" {
			ve.SetProperty(ical.ComponentPropertyDescription, escapeText(e.Description()))
		}
		ve.SetProperty(propertyColor, e.Color().String())
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("ics: export: %w", err)
	}
	return nil
}

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// escapeText encodes RFC 5545 TEXT escapes.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}
