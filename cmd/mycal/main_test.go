package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mycal/internal/model"
)

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "mycal" {
		t.Fatalf("expected root command name mycal, got %q", rootCmd.Use)
	}
}

func TestCommandsHaveFlags(t *testing.T) {
	cases := []struct {
		cmd   *cobra.Command
		flags []string
	}{
		{listCmd, []string{"date", "from", "to"}},
		{addCmd, []string{"date", "start", "end", "when", "duration", "title", "description", "color"}},
		{editCmd, []string{"date", "start", "end", "title", "description", "color"}},
		{weekCmd, []string{"date"}},
		{exportCmd, []string{"out"}},
		{importCmd, []string{"days"}},
		{serveCmd, []string{"listen", "no-backup"}},
		{snapshotCmd, []string{"out", "date"}},
	}
	for _, tc := range cases {
		t.Run(tc.cmd.Name(), func(t *testing.T) {
			for _, name := range tc.flags {
				if tc.cmd.Flags().Lookup(name) == nil {
					t.Fatalf("expected --%s flag for %s", name, tc.cmd.Name())
				}
			}
		})
	}
	for _, name := range []string{"config", "file", "log-level"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Fatalf("expected persistent --%s flag", name)
		}
	}
	if d := addCmd.Flags().Lookup("duration").DefValue; d != "1h0m0s" {
		t.Fatalf("expected default duration 1h, got %q", d)
	}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// harness runs mycal against a calendar and config in a temp directory.
type harness struct {
	t      *testing.T
	dir    string
	config string
	file   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MYCAL_FILE", "")
	t.Setenv("MYCAL_CONFIG", "")

	prev := now
	now = func() time.Time { return time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local) }
	t.Cleanup(func() { now = prev })

	return &harness{
		t:      t,
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		file:   filepath.Join(dir, "calendar.mycal"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", h.config, "--file", h.file, "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("mycal %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func expectContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q:\n%s", want, out)
		}
	}
}

func TestEventCommands(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("add", "--date", "2026-10-20", "--start", "09:00", "--end", "10:00", "--title", "Dentist", "--color", "Forest")
	expectContains(t, out, "added 2026-10-20 09:00 am - 10:00 am")

	out = h.mustRun("add", "--date", "2026-10-20", "--start", "09:30", "--end", "09:45", "--title", "Call")
	expectContains(t, out, `overlaps 09:00 am - 10:00 am "Dentist"`)

	if _, err := h.run("add", "--date", "2026-10-20", "--start", "09:00", "--end", "10:00", "--title", "Dentist", "--color", "Forest"); !errors.Is(err, model.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
	if _, err := h.run("add", "--date", "2026-10-20", "--start", "09:00"); err == nil {
		t.Fatalf("expected an error without --end")
	}

	out = h.mustRun("list", "--date", "2026-10-20")
	expectContains(t, out, "1.", "Dentist", "2.", "Call")

	out = h.mustRun("edit", "2026-10-20", "2", "--title", "Call mom", "--start", "11:00", "--end", "11:30")
	expectContains(t, out, `updated 2026-10-20 11:00 am - 11:30 am "Call mom"`)

	out = h.mustRun("remove", "2026-10-20", "1")
	expectContains(t, out, `"Dentist"`)
	if _, err := h.run("remove", "2026-10-20", "5"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	out = h.mustRun("list")
	if strings.Contains(out, "Dentist") || !strings.Contains(out, "Call mom") {
		t.Fatalf("unexpected list after remove:\n%s", out)
	}

	data, err := os.ReadFile(h.file)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "Call mom") || strings.Contains(string(data), "Dentist") {
		t.Fatalf("calendar file not updated:\n%s", data)
	}
}

func TestAddWhen(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("add", "--when", "tomorrow at 3pm", "--duration", "30m", "--title", "Walk")
	expectContains(t, out, "added 2026-10-20 03:00 pm - 03:30 pm")

	if _, err := h.run("add", "--when", "tomorrow at 3pm", "--date", "2026-10-20"); err == nil {
		t.Fatalf("expected --when and --date to conflict")
	}
}

func TestWeekCommand(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--date", "2026-10-20", "--start", "09:00", "--end", "10:00", "--title", "Dentist")
	out := h.mustRun("week", "--date", "2026-10-21")
	expectContains(t, out, "Week of October 18, 2026", "Sun 18", "Sat 24", "09:00 Dentist", "free")
}

func TestICSCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--date", "2026-10-20", "--start", "11:00", "--end", "11:30", "--title", "Call mom", "--color", "Ice")

	ics := filepath.Join(h.dir, "out.ics")
	h.mustRun("export-ics", "-o", ics)
	data, err := os.ReadFile(ics)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	expectContains(t, string(data), "SUMMARY:Call mom", "X-MYCAL-COLOR:Ice")

	h.mustRun("remove", "2026-10-20", "1")
	out := h.mustRun("import-ics", ics)
	expectContains(t, out, "imported 1 new of 1 events")
	out = h.mustRun("import-ics", ics)
	expectContains(t, out, "imported 0 new of 1 events")

	out = h.mustRun("list", "--date", "2026-10-20")
	expectContains(t, out, "11:00 am - 11:30 am", "Call mom")

	if _, err := h.run("import-ics"); err == nil {
		t.Fatalf("expected an error with no file and no configured sources")
	}
}

func TestBackupCommand(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "--date", "2026-10-20", "--start", "09:00", "--end", "10:00", "--title", "Dentist")

	out := h.mustRun("backup")
	path := strings.TrimSpace(out)
	if filepath.Dir(path) != filepath.Join(h.dir, "backups") {
		t.Fatalf("expected backup next to the calendar, got %q", path)
	}
	out = h.mustRun("backup")
	expectContains(t, out, "unchanged")
}

func TestSnapshotURL(t *testing.T) {
	if got := snapshotURL("127.0.0.1:9000", ""); got != "http://127.0.0.1:9000/week" {
		t.Fatalf("unexpected url %s", got)
	}
	if got := snapshotURL("127.0.0.1:9000", "2026-10-19"); got != "http://127.0.0.1:9000/week?date=2026-10-19" {
		t.Fatalf("unexpected url %s", got)
	}
}
