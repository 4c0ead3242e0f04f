package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"mycal/internal/codec"
	"mycal/internal/datetime"
	"mycal/internal/model"
)

func newEvent(t *testing.T, title string, hour int) model.Event {
	t.Helper()
	e, err := model.NewEvent(datetime.MustDate(2024, 5, 6), datetime.MustTime(hour, 0), datetime.MustTime(hour, 30), title, "", model.Ice)
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	return e
}

func TestOpenCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calendar.mycal")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if info.Size() != 0 {
		t.Fatalf("expected empty file, got %d bytes", info.Size())
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
	if s.Len() != 0 || s.Path() != path {
		t.Fatalf("unexpected session state: len=%d path=%s", s.Len(), s.Path())
	}
}

func TestMutationsPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.mycal")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	a, b := newEvent(t, "A", 9), newEvent(t, "B", 11)
	if err := s.Add(a); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(b); err != nil {
		t.Fatalf("Add: %v", err)
	}
	edited := b
	_ = edited.SetTitle("B2")
	if err := s.Replace(b, edited); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := s.Remove(a); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != s.Snapshot() {
		t.Fatalf("file does not match snapshot:\n%s\nwant:\n%s", data, s.Snapshot())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()
	got := reopened.Events()
	if len(got) != 1 || got[0].Title() != "B2" {
		t.Fatalf("expected only B2 after reopen, got %v", got)
	}
}

func TestFailedMutationDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.mycal")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	a := newEvent(t, "A", 9)
	_ = s.Add(a)
	before, _ := os.ReadFile(path)

	if err := s.Add(a); !errors.Is(err, model.ErrDuplicateEvent) {
		t.Fatalf("expected ErrDuplicateEvent, got %v", err)
	}
	if err := s.Remove(newEvent(t, "missing", 10)); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("failed mutations changed the file")
	}
}

func TestOpenRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.mycal")
	if err := os.WriteFile(path, []byte(model.Banner+"\ndate: 2020 x 1\n"+model.Banner), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := Open(path)
	if !errors.Is(err, codec.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestClosedSession(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "calendar.mycal"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := s.Add(newEvent(t, "A", 9)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Save(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestAddAllSkipsDuplicates(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "calendar.mycal"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	a, b := newEvent(t, "A", 9), newEvent(t, "B", 11)
	_ = s.Add(a)
	n, err := s.AddAll([]model.Event{a, b, b})
	if err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	if n != 1 || s.Len() != 2 {
		t.Fatalf("expected 1 added and 2 total, got %d and %d", n, s.Len())
	}
}

func TestConcurrentAdds(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "calendar.mycal"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	events := make([]model.Event, 20)
	for i := range events {
		events[i] = newEvent(t, "e"+strconv.Itoa(i), i)
	}

	var wg sync.WaitGroup
	for i := range events {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Add(events[i]); err != nil {
				t.Errorf("Add %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	if s.Len() != 20 {
		t.Fatalf("expected 20 events, got %d", s.Len())
	}
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	want := filepath.Join(home, "Documents", "MyCalendar", FileName)
	if path != want {
		t.Fatalf("expected %s, got %s", want, path)
	}
	info, err := os.Stat(filepath.Dir(path))
	if err != nil || !info.IsDir() {
		t.Fatalf("expected directory to be created: %v", err)
	}
}

func TestWriteFailureKeepsChangeInMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.mycal")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	// A directory in place of the file makes the final rename fail.
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	a := newEvent(t, "A", 9)
	err = s.Add(a)
	if !errors.Is(err, ErrNotPersisted) {
		t.Fatalf("expected ErrNotPersisted, got %v", err)
	}
	if errors.Is(err, model.ErrDuplicateEvent) || s.Len() != 1 {
		t.Fatalf("expected the event to be kept in memory, len=%d err=%v", s.Len(), err)
	}
	if err := s.Add(a); !errors.Is(err, model.ErrDuplicateEvent) {
		t.Fatalf("expected a retried Add to report ErrDuplicateEvent, got %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save after recovery: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != s.Snapshot() {
		t.Fatalf("expected the pending change on disk, got %q (%v)", data, err)
	}
}

func TestAddRejectsZeroEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calendar.mycal")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Add(model.Event{}); !errors.Is(err, model.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("the file must stay readable: %v", err)
	}
	defer reopened.Close()
	if reopened.Len() != 0 {
		t.Fatalf("expected an empty calendar, got %d", reopened.Len())
	}
}
