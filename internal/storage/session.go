// Package storage binds a calendar to its file: open, mutate, persist, close.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"mycal/internal/codec"
	"mycal/internal/datetime"
	appLog "mycal/internal/log"
	"mycal/internal/model"
)

var (
	ErrClosed = errors.New("storage: session is closed")

	// ErrNotPersisted reports a mutation that was applied in memory but
	// could not be written. The session stays dirty and the next successful
	// write (a later mutation, Save or Close) persists it. Retrying the same
	// mutation is wrong: an Add would then fail with ErrDuplicateEvent.
	ErrNotPersisted = errors.New("storage: change applied but not saved")
)

// Session owns one open calendar file. Every successful mutation rewrites the
// whole file. A Session is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	path   string
	cal    *model.Calendar
	dirty  bool
	closed bool
}

// Open loads the calendar at path, creating an empty file first if none
// exists.
func Open(path string) (*Session, error) {
	if path == "" {
		return nil, errors.New("storage: calendar path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", path, err)
		}
		if err := writeFileAtomic(path, nil); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", path, err)
		}
		appLog.Info("created calendar file", "path", path)
		data = nil
	}

	cal, err := codec.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("storage: load %s: %w", path, err)
	}
	appLog.Info("calendar opened", "path", path, "events", cal.Len())

	return &Session{path: path, cal: cal}, nil
}

func (s *Session) Path() string { return s.path }

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.Len()
}

func (s *Session) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.Events()
}

func (s *Session) EventsOn(date datetime.Date) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.EventsOn(date)
}

func (s *Session) EventsBetween(from, to datetime.Date) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.EventsBetween(from, to)
}

func (s *Session) Conflicts(e model.Event) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cal.Conflicts(e)
}

func (s *Session) Add(e model.Event) error {
	return s.mutate("add", func(c *model.Calendar) error { return c.Add(e) })
}

func (s *Session) Remove(e model.Event) error {
	return s.mutate("remove", func(c *model.Calendar) error { return c.Remove(e) })
}

func (s *Session) Replace(old, updated model.Event) error {
	return s.mutate("replace", func(c *model.Calendar) error { return c.Replace(old, updated) })
}

// AddAll adds events in order and persists once. Events already present are
// skipped. Any other failure stops the import; what was added before it is
// kept and persisted. The number of events actually added is returned.
func (s *Session) AddAll(events []model.Event) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	added := 0
	var addErr error
	for _, e := range events {
		err := s.cal.Add(e)
		if errors.Is(err, model.ErrDuplicateEvent) {
			continue
		}
		if err != nil {
			addErr = err
			break
		}
		added++
	}
	if added == 0 {
		return 0, addErr
	}

	s.dirty = true
	if err := s.saveLocked(); err != nil {
		appLog.Error("failed to persist calendar", err, "op", "import", "path", s.path)
		return added, errors.Join(addErr, fmt.Errorf("%w: %w", ErrNotPersisted, err))
	}
	return added, addErr
}

// mutate applies fn and persists the result. When fn fails nothing is
// written. When the write fails the change stays in memory, the error wraps
// ErrNotPersisted, and the write is retried by the next mutation, Save or
// Close.
func (s *Session) mutate(op string, fn func(*model.Calendar) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := fn(s.cal); err != nil {
		return err
	}
	s.dirty = true
	if err := s.saveLocked(); err != nil {
		appLog.Error("failed to persist calendar", err, "op", op, "path", s.path)
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	appLog.Debug("calendar persisted", "op", op, "events", s.cal.Len())
	return nil
}

// Save writes the calendar to its file.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.saveLocked()
}

func (s *Session) saveLocked() error {
	if err := writeFileAtomic(s.path, []byte(codec.Encode(s.cal))); err != nil {
		return fmt.Errorf("storage: save %s: %w", s.path, err)
	}
	s.dirty = false
	return nil
}

// Snapshot returns the calendar in file format without touching disk.
func (s *Session) Snapshot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codec.Encode(s.cal)
}

// Close flushes unsaved changes and releases the session. Closing twice is a
// no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.dirty {
		return s.saveLocked()
	}
	return nil
}

// writeFileAtomic writes data to a temp file next to path, then renames it
// over path with 0600 permissions.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".mycal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
