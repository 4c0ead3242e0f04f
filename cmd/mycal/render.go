package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mycal/internal/layout"
	"mycal/internal/model"
)

const columnWidth = 18

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).PaddingBottom(1)
	dayStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1).Width(columnWidth)
	todayStyle  = dayStyle.BorderForeground(lipgloss.Color("10"))
	dayTitle    = lipgloss.NewStyle().Bold(true)
	muted       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// colorStyle paints text in the event's color.
func colorStyle(c model.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// spanText renders "09:00 am - 10:00 am".
func spanText(e model.Event) string {
	return e.StartTime().Format12h() + " - " + e.EndTime().Format12h()
}

// eventLine is one row of `mycal list`.
func eventLine(n int, e model.Event) string {
	chip := colorStyle(e.Color()).Render("■")
	line := fmt.Sprintf("%3d. %s %s %s  %s", n, chip, e.Date().ISO(), spanText(e), e.Title())
	if d := strings.TrimSpace(e.Description()); d != "" {
		first, _, _ := strings.Cut(d, "\n")
		line += muted.Render("  (" + first + ")")
	}
	return line
}

// renderWeek draws the week as seven bordered columns.
func renderWeek(w layout.WeekView) string {
	cols := make([]string, 0, len(w.Days))
	for _, day := range w.Days {
		cols = append(cols, renderDay(day))
	}
	header := headerStyle.Render("Week of " + w.Start().Formatted())
	return lipgloss.JoinVertical(lipgloss.Left, header, lipgloss.JoinHorizontal(lipgloss.Top, cols...))
}

func renderDay(day layout.Day) string {
	style := dayStyle
	if day.Today {
		style = todayStyle
	}

	var b strings.Builder
	b.WriteString(dayTitle.Render(fmt.Sprintf("%s %d", day.Weekday.Short(), day.Date.Day())))
	switch {
	case day.Beyond:
		b.WriteString("\n" + muted.Render("out of range"))
	case len(day.Blocks) == 0:
		b.WriteString("\n" + muted.Render("free"))
	}
	for _, blk := range day.Blocks {
		e := blk.Event
		title := e.Title()
		if title == "" {
			title = "(untitled)"
		}
		b.WriteString("\n" + colorStyle(e.Color()).Render(e.StartTime().Clock()+" "+title))
	}
	return style.Render(b.String())
}
