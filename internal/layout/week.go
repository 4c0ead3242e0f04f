// Package layout arranges events on a seven-day grid of five-minute slots.
package layout

import (
	"sort"

	"mycal/internal/datetime"
	"mycal/internal/model"
)

// Block places one event in a day column. StartSlot and Slots count
// five-minute slots from midnight. Events that overlap are spread across
// lanes; Lanes is the lane count of the block's day.
type Block struct {
	Event     model.Event
	StartSlot int
	Slots     int
	Lane      int
	Lanes     int
}

// Day is one column of a week.
type Day struct {
	Date    datetime.Date
	Weekday datetime.Weekday
	Today   bool
	// Beyond is set for columns past the last supported date.
	Beyond bool
	Blocks []Block
}

// WeekView is the grid for the week containing Anchor.
type WeekView struct {
	Anchor datetime.Date
	Days   [7]Day
}

// Bounds is the first and last supported day of the week containing
// anchor. The last day stops at the end of the supported range.
func Bounds(anchor datetime.Date) (first, last datetime.Date) {
	first = datetime.SundayOfWeek(anchor)
	last, err := datetime.StepDays(first, 6, true)
	if err != nil {
		last = datetime.MustDate(datetime.MaxYear, 12, 31)
	}
	return first, last
}

// Week lays out events for the week containing anchor. The first column is
// SundayOfWeek(anchor). Events outside the week are ignored.
func Week(events []model.Event, anchor datetime.Date) WeekView {
	w := WeekView{Anchor: anchor}
	first := datetime.SundayOfWeek(anchor)

	byDate := make(map[datetime.Date][]model.Event)
	for _, e := range events {
		byDate[e.Date()] = append(byDate[e.Date()], e)
	}

	for i := range w.Days {
		date := datetime.GoForwardDays(first, i)
		day := &w.Days[i]
		day.Date = date
		day.Weekday = date.Weekday()
		if i > 0 && (w.Days[i-1].Beyond || !date.After(w.Days[i-1].Date)) {
			day.Beyond = true
			continue
		}
		day.Blocks = place(byDate[date])
	}
	return w
}

// place sorts a day's events by start then end and assigns each the lowest
// lane in which it collides with nothing already placed.
func place(events []model.Event) []Block {
	if len(events) == 0 {
		return nil
	}
	sorted := append([]model.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.StartTime().Equal(b.StartTime()) {
			return a.StartTime().Before(b.StartTime())
		}
		return a.EndTime().Before(b.EndTime())
	})

	blocks := make([]Block, len(sorted))
	var lanes [][]model.Event
	for i, e := range sorted {
		slots, _ := datetime.FiveMinuteSpan(e.StartTime(), e.EndTime())
		blocks[i] = Block{
			Event:     e,
			StartSlot: datetime.FiveMinuteIndex(e.StartTime()),
			Slots:     max(slots, 1),
			Lane:      freeLane(lanes, e),
		}
		if blocks[i].Lane == len(lanes) {
			lanes = append(lanes, nil)
		}
		lanes[blocks[i].Lane] = append(lanes[blocks[i].Lane], e)
	}
	for i := range blocks {
		blocks[i].Lanes = len(lanes)
	}
	return blocks
}

func freeLane(lanes [][]model.Event, e model.Event) int {
	for i, lane := range lanes {
		free := true
		for _, other := range lane {
			if other.Overlap(e) || e.Overlap(other) {
				free = false
				break
			}
		}
		if free {
			return i
		}
	}
	return len(lanes)
}

// MarkToday flags the column for today, if it is in this week.
func (w *WeekView) MarkToday(today datetime.Date) {
	for i := range w.Days {
		w.Days[i].Today = !w.Days[i].Beyond && w.Days[i].Date.Equal(today)
	}
}

// Start is the first column's date.
func (w WeekView) Start() datetime.Date {
	return w.Days[0].Date
}

// Next returns an anchor one week after this one.
func (w WeekView) Next() (datetime.Date, error) {
	return datetime.ForwardWeek(w.Anchor)
}

// Prev returns an anchor one week before this one.
func (w WeekView) Prev() (datetime.Date, error) {
	return datetime.BackWeek(w.Anchor)
}
