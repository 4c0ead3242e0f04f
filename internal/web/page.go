package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"mycal/internal/datetime"
	"mycal/internal/layout"
	appLog "mycal/internal/log"
)

// slotPx is the height of one five-minute slot on the week page.
const slotPx = 4

//go:embed templates/week.html
var templateFS embed.FS

var weekTemplate = template.Must(template.ParseFS(templateFS, "templates/week.html"))

type weekPage struct {
	Title      string
	Prev, Next string
	GridHeight int
	Hours      []hourMark
	Days       []dayColumn
}

type hourMark struct {
	Label string
	Top   int
}

type dayColumn struct {
	Label  string
	Date   string
	Today  bool
	Beyond bool
	Blocks []blockBox
}

type blockBox struct {
	Title string
	Span  string
	Color string
	Top   int
	// Height is in pixels; Left and Width are percentages of the column.
	Height      int
	Left, Width float64
}

// GET /week?date=YYYY-MM-DD renders the week grid. The root element carries
// data-ready="true" once rendered, which the snapshot command waits for.
func (s *Server) handleWeekPage(w http.ResponseWriter, r *http.Request) {
	week, err := s.week(r)
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	var buf bytes.Buffer
	if err := weekTemplate.Execute(&buf, buildWeekPage(week)); err != nil {
		appLog.Error("week page render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func buildWeekPage(week layout.WeekView) weekPage {
	page := weekPage{
		Title:      "Week of " + week.Start().Formatted(),
		GridHeight: datetime.SlotsPerDay * slotPx,
	}
	if d, err := week.Prev(); err == nil {
		page.Prev = d.ISO()
	}
	if d, err := week.Next(); err == nil {
		page.Next = d.ISO()
	}
	for h := 0; h < 24; h++ {
		label := datetime.MustTime(h, 0).Format12h()
		page.Hours = append(page.Hours, hourMark{Label: label, Top: h * datetime.SlotsPerHour * slotPx})
	}

	for _, day := range week.Days {
		col := dayColumn{
			Label:  day.Weekday.Short(),
			Date:   fmt.Sprintf("%s %d", datetime.Month(day.Date.Month()).String()[:3], day.Date.Day()),
			Today:  day.Today,
			Beyond: day.Beyond,
		}
		for _, b := range day.Blocks {
			width := 100 / float64(b.Lanes)
			col.Blocks = append(col.Blocks, blockBox{
				Title:  b.Event.Title(),
				Span:   b.Event.StartTime().Format12h() + " - " + b.Event.EndTime().Format12h(),
				Color:  b.Event.Color().Hex(),
				Top:    b.StartSlot * slotPx,
				Height: b.Slots * slotPx,
				Left:   float64(b.Lane) * width,
				Width:  width,
			})
		}
		page.Days = append(page.Days, col)
	}
	return page
}
