package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mycal/internal/datetime"
	"mycal/internal/model"
)

var (
	listDate string
	listFrom string
	listTo   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List events, for one day, a range, or everything",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		var events []model.Event
		switch {
		case listDate != "":
			d, err := datetime.ParseISO(listDate)
			if err != nil {
				return err
			}
			events = sess.EventsOn(d)
		case listFrom != "" || listTo != "":
			from, to, err := parseRange(listFrom, listTo)
			if err != nil {
				return err
			}
			events = sess.EventsBetween(from, to)
		default:
			events = sess.Events()
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "no events")
			return nil
		}
		for i, e := range events {
			fmt.Fprintln(out, eventLine(i+1, e))
		}
		return nil
	},
}

var (
	addDate     string
	addStart    string
	addEnd      string
	addWhen     string
	addDuration time.Duration
	addTitle    string
	addDesc     string
	addColor    string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an event",
	Long: `Add an event either with explicit --date/--start/--end or with a natural
language --when such as "tomorrow at 3pm" plus an optional --duration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := eventFromAddFlags(now())
		if err != nil {
			return err
		}

		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		conflicts := sess.Conflicts(e)
		if err := sess.Add(e); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "added %s %s\n", e.Date().ISO(), spanText(e))
		for _, c := range conflicts {
			fmt.Fprintf(out, "  overlaps %s %q\n", spanText(c), c.Title())
		}
		return nil
	},
}

// eventFromAddFlags builds the event described by the add flags. base
// anchors relative --when expressions.
func eventFromAddFlags(base time.Time) (model.Event, error) {
	color := model.DefaultColor
	if addColor != "" {
		c, err := model.ParseColor(addColor)
		if err != nil {
			return model.Event{}, err
		}
		color = c
	}

	if addWhen != "" {
		if addDate != "" || addStart != "" || addEnd != "" {
			return model.Event{}, errors.New("--when cannot be combined with --date, --start or --end")
		}
		date, start, end, err := parseWhen(addWhen, addDuration, base)
		if err != nil {
			return model.Event{}, err
		}
		return model.NewEvent(date, start, end, addTitle, addDesc, color)
	}

	if addDate == "" || addStart == "" || addEnd == "" {
		return model.Event{}, errors.New("either --when or all of --date, --start and --end are required")
	}
	date, err := datetime.ParseISO(addDate)
	if err != nil {
		return model.Event{}, err
	}
	start, err := datetime.ParseClock(addStart)
	if err != nil {
		return model.Event{}, err
	}
	end, err := datetime.ParseClock(addEnd)
	if err != nil {
		return model.Event{}, err
	}
	return model.NewEvent(date, start, end, addTitle, addDesc, color)
}

var removeCmd = &cobra.Command{
	Use:   "remove DATE N",
	Short: "Remove the Nth event listed for DATE",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		e, err := pick(sess.EventsOn, args[0], args[1])
		if err != nil {
			return err
		}
		if err := sess.Remove(e); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s %q\n", e.Date().ISO(), spanText(e), e.Title())
		return nil
	},
}

var (
	editDate  string
	editStart string
	editEnd   string
	editTitle string
	editDesc  string
	editColor string
)

var editCmd = &cobra.Command{
	Use:   "edit DATE N",
	Short: "Change the Nth event listed for DATE",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		old, err := pick(sess.EventsOn, args[0], args[1])
		if err != nil {
			return err
		}
		updated, err := applyEdits(cmd, old)
		if err != nil {
			return err
		}
		if err := sess.Replace(old, updated); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s %q\n", updated.Date().ISO(), spanText(updated), updated.Title())
		return nil
	},
}

// applyEdits returns a copy of e with every flag the user set applied.
func applyEdits(cmd *cobra.Command, e model.Event) (model.Event, error) {
	flags := cmd.Flags()
	if flags.Changed("date") {
		d, err := datetime.ParseISO(editDate)
		if err != nil {
			return e, err
		}
		if err := e.SetDate(d); err != nil {
			return e, err
		}
	}
	if flags.Changed("start") || flags.Changed("end") {
		start, end := e.StartTime(), e.EndTime()
		var err error
		if flags.Changed("start") {
			if start, err = datetime.ParseClock(editStart); err != nil {
				return e, err
			}
		}
		if flags.Changed("end") {
			if end, err = datetime.ParseClock(editEnd); err != nil {
				return e, err
			}
		}
		if err := e.SetStartAndEndTimes(start, end); err != nil {
			return e, err
		}
	}
	if flags.Changed("title") {
		if err := e.SetTitle(editTitle); err != nil {
			return e, err
		}
	}
	if flags.Changed("description") {
		if err := e.SetDescription(editDesc); err != nil {
			return e, err
		}
	}
	if flags.Changed("color") {
		c, err := model.ParseColor(editColor)
		if err != nil {
			return e, err
		}
		if err := e.SetColor(c); err != nil {
			return e, err
		}
	}
	return e, nil
}

// pick resolves "DATE N" to the Nth event (1-based) of that day.
func pick(eventsOn func(datetime.Date) []model.Event, date, n string) (model.Event, error) {
	d, err := datetime.ParseISO(date)
	if err != nil {
		return model.Event{}, err
	}
	i, err := strconv.Atoi(n)
	if err != nil {
		return model.Event{}, fmt.Errorf("invalid event number %q", n)
	}
	events := eventsOn(d)
	if i < 1 || i > len(events) {
		return model.Event{}, fmt.Errorf("%s has %d events, no event number %d: %w", d.ISO(), len(events), i, model.ErrNotFound)
	}
	return events[i-1], nil
}

func parseRange(from, to string) (datetime.Date, datetime.Date, error) {
	if from == "" || to == "" {
		return datetime.Date{}, datetime.Date{}, errors.New("--from and --to must be used together")
	}
	f, err := datetime.ParseISO(from)
	if err != nil {
		return datetime.Date{}, datetime.Date{}, err
	}
	t, err := datetime.ParseISO(to)
	if err != nil {
		return datetime.Date{}, datetime.Date{}, err
	}
	return f, t, nil
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "only events on this day (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listFrom, "from", "", "first day of a range (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "last day of a range (YYYY-MM-DD)")
	listCmd.MarkFlagsMutuallyExclusive("date", "from")
	listCmd.MarkFlagsMutuallyExclusive("date", "to")

	addCmd.Flags().StringVar(&addDate, "date", "", "day of the event (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addStart, "start", "", "start time (HH:MM)")
	addCmd.Flags().StringVar(&addEnd, "end", "", "end time (HH:MM)")
	addCmd.Flags().StringVar(&addWhen, "when", "", `natural language start, e.g. "next friday at 10am"`)
	addCmd.Flags().DurationVar(&addDuration, "duration", time.Hour, "length of a --when event")
	addCmd.Flags().StringVar(&addTitle, "title", "", "event title")
	addCmd.Flags().StringVar(&addDesc, "description", "", "event description")
	addCmd.Flags().StringVar(&addColor, "color", "", "one of Rose, Forest, Ice, Fire (default Fire)")

	editCmd.Flags().StringVar(&editDate, "date", "", "move to this day (YYYY-MM-DD)")
	editCmd.Flags().StringVar(&editStart, "start", "", "new start time (HH:MM)")
	editCmd.Flags().StringVar(&editEnd, "end", "", "new end time (HH:MM)")
	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&editDesc, "description", "", "new description")
	editCmd.Flags().StringVar(&editColor, "color", "", "new color")

	rootCmd.AddCommand(listCmd, addCmd, removeCmd, editCmd)
}
