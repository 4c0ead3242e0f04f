package ics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"mycal/internal/datetime"
	appLog "mycal/internal/log"
	"mycal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig bounds recurrence expansion.
type ExpandConfig struct {
	// Location is the zone whose wall clock the calendar uses. Nil means
	// time.Local.
	Location *time.Location

	// RangeStart and RangeEnd bound the occurrences, both inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps a single rule. Zero means 5000.
	MaxOccurrencesPerEvent int
}

// ExpandResult holds the single-day events produced by Expand.
type ExpandResult struct {
	Events []model.Event
	// Truncated lists UIDs whose rule hit MaxOccurrencesPerEvent.
	Truncated []string
	// Skipped counts occurrences that could not become events, such as dates
	// outside 1900..3000.
	Skipped int
}

// Expand turns parsed VEVENTs into plain calendar events within the
// configured range. Recurring events become one event per occurrence with
// EXDATE and RECURRENCE-ID overrides applied. An occurrence that spans
// midnight is cut at 23:59 of its first day; an all-day occurrence becomes
// 00:00 to 23:59.
//
// The result is ordered by date, start time and title.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("ics: expand: range end is before range start")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	var uids []string
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	for _, uid := range uids {
		truncated := false
		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, overridesByUID[uid], cfg)
			truncated = truncated || hitCap
			for _, o := range occ {
				e, err := toEvent(o.ev, o.start, o.end, cfg.Location)
				if err != nil {
					result.Skipped++
					appLog.Debug("ics occurrence skipped", "uid", uid, "start", o.start, "reason", err.Error())
					continue
				}
				result.Events = append(result.Events, e)
			}
		}
		if truncated {
			result.Truncated = append(result.Truncated, uid)
			appLog.Warn("ics occurrences truncated", "uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	sort.SliceStable(result.Events, func(i, j int) bool {
		a, b := result.Events[i], result.Events[j]
		switch {
		case !a.Date().Equal(b.Date()):
			return a.Date().Before(b.Date())
		case !a.StartTime().Equal(b.StartTime()):
			return a.StartTime().Before(b.StartTime())
		default:
			return a.Title() < b.Title()
		}
	})
	return result, nil
}

type occurrence struct {
	ev         ParsedEvent
	start, end time.Time
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]occurrence, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []occurrence {
	if !timeRangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	if o, ok := findOverrideForStart(overrides, ev.Start); ok {
		return []occurrence{{ev: o, start: o.Start, end: o.End}}
	}
	return []occurrence{{ev: ev, start: ev.Start, end: ev.End}}
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]occurrence, bool) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("ics rrule parse failed", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	loc := ev.Start.Location()
	starts := set.Between(cfg.RangeStart.In(loc), cfg.RangeEnd.In(loc), true)

	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]occurrence, 0, len(starts))
	for _, start := range starts {
		if o, ok := findOverrideForStart(overrides, start); ok {
			out = append(out, occurrence{ev: o, start: o.Start, end: o.End})
			continue
		}
		out = append(out, occurrence{ev: ev, start: start, end: start.Add(dur)})
	}
	return out, hitCap
}

// findOverrideForStart finds the override whose RECURRENCE-ID is start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// toEvent maps one occurrence onto the single-day event model.
func toEvent(ev ParsedEvent, start, end time.Time, loc *time.Location) (model.Event, error) {
	var date datetime.Date
	var from, to datetime.Time
	var err error

	if ev.AllDay {
		// All-day values name a calendar date, not an instant.
		date, err = datetime.NewDate(start.Year(), int(start.Month()), start.Day())
		from, to = datetime.MustTime(0, 0), datetime.MustTime(23, 59)
	} else {
		if !ev.Floating {
			start, end = start.In(loc), end.In(loc)
		}
		date, err = datetime.DateOf(start)
		from, to = datetime.TimeOf(start), datetime.TimeOf(end)
		if !sameDay(start, end) || to.Before(from) {
			to = datetime.MustTime(23, 59)
			if end.Before(start) {
				to = from
			}
		}
	}
	if err != nil {
		return model.Event{}, err
	}

	color := model.DefaultColor
	if ev.Color != "" {
		if c, cerr := model.ParseColor(ev.Color); cerr == nil {
			color = c
		}
	}

	desc := ev.Description
	if ev.Location != "" {
		desc = strings.TrimLeft(desc+"\nLocation: "+ev.Location, "\n")
	}

	e, err := model.NewEvent(date, from, to, ev.Summary, desc, color)
	if err != nil {
		return model.Event{}, fmt.Errorf("uid %s: %w", ev.UID, err)
	}
	return e, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
