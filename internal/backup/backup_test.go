package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeSource struct{ text string }

func (f *fakeSource) Snapshot() string { return f.text }

func clock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestRunWritesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	src := &fakeSource{}
	b := New(src, dir, 2)
	b.now = clock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var written []string
	for _, text := range []string{"one", "two", "three"} {
		src.text = text
		path, err := b.Run()
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if path == "" {
			t.Fatalf("expected a backup for %q", text)
		}
		written = append(written, path)
	}

	left, err := b.list()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 2 || left[0] != written[1] || left[1] != written[2] {
		t.Fatalf("expected the two newest backups to remain, got %v", left)
	}
	data, _ := os.ReadFile(left[1])
	if string(data) != "three" {
		t.Fatalf("expected newest backup to hold %q, got %q", "three", data)
	}
	if filepath.Base(written[0]) != "calendar-20240101-000001.000.mycal" {
		t.Fatalf("unexpected backup name %s", filepath.Base(written[0]))
	}
}

func TestRunSkipsUnchanged(t *testing.T) {
	src := &fakeSource{text: "same"}
	b := New(src, t.TempDir(), 5)
	b.now = clock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	if path, err := b.Run(); err != nil || path == "" {
		t.Fatalf("expected first backup, got %q (%v)", path, err)
	}
	path, err := b.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if path != "" {
		t.Fatalf("expected unchanged calendar to be skipped, got %s", path)
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	b := New(&fakeSource{}, t.TempDir(), 1)
	if _, err := Schedule(context.Background(), "not a schedule", b); err == nil {
		t.Fatalf("expected an error for an invalid cron spec")
	}
}

func TestScheduleStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := New(&fakeSource{text: "x"}, t.TempDir(), 1)
	c, err := Schedule(ctx, "@every 1h", b)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Fatalf("expected one cron entry, got %d", len(c.Entries()))
	}
	cancel()
}
