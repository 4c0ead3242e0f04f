// Package backup keeps rotating copies of the calendar file on a cron
// schedule.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	appLog "mycal/internal/log"
)

const (
	filePrefix = "calendar-"
	fileSuffix = ".mycal"
	stampFmt   = "20060102-150405.000"
)

// Source supplies the calendar in file format.
type Source interface {
	Snapshot() string
}

// Backup writes timestamped copies of a Source into a directory and keeps
// the newest Keep of them.
type Backup struct {
	src  Source
	dir  string
	keep int
	now  func() time.Time
}

// New returns a Backup into dir. keep below 1 is treated as 1.
func New(src Source, dir string, keep int) *Backup {
	if keep < 1 {
		keep = 1
	}
	return &Backup{src: src, dir: dir, keep: keep, now: time.Now}
}

// Run writes one backup and prunes old ones. When the calendar is unchanged
// since the newest backup nothing is written and the returned path is empty.
func (b *Backup) Run() (string, error) {
	if err := os.MkdirAll(b.dir, 0o700); err != nil {
		return "", fmt.Errorf("backup: create %s: %w", b.dir, err)
	}

	data := b.src.Snapshot()
	existing, err := b.list()
	if err != nil {
		return "", err
	}
	if n := len(existing); n > 0 {
		last, err := os.ReadFile(existing[n-1])
		if err == nil && string(last) == data {
			appLog.Debug("backup skipped, calendar unchanged", "latest", existing[n-1])
			return "", nil
		}
	}

	path := filepath.Join(b.dir, filePrefix+b.now().UTC().Format(stampFmt)+fileSuffix)
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		return "", fmt.Errorf("backup: write %s: %w", path, err)
	}
	appLog.Info("backup written", "path", path, "bytes", len(data))

	return path, b.prune(append(existing, path))
}

// list returns existing backups, oldest first.
func (b *Backup) list() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("backup: list %s: %w", b.dir, err)
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		out = append(out, filepath.Join(b.dir, name))
	}
	// The timestamp format sorts lexically.
	sort.Strings(out)
	return out, nil
}

func (b *Backup) prune(all []string) error {
	if len(all) <= b.keep {
		return nil
	}
	var errs []error
	for _, path := range all[:len(all)-b.keep] {
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		appLog.Debug("backup pruned", "path", path)
	}
	return errors.Join(errs...)
}

// Schedule runs b on the standard five-field cron spec until ctx is
// cancelled. The returned cron is already started.
func Schedule(ctx context.Context, spec string, b *Backup) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if _, err := b.Run(); err != nil {
			appLog.Error("scheduled backup failed", err, "dir", b.dir)
		}
	}); err != nil {
		return nil, fmt.Errorf("backup: invalid schedule %q: %w", spec, err)
	}
	c.Start()
	appLog.Info("backup schedule started", "cron", spec, "dir", b.dir, "keep", b.keep)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("backup schedule stopped")
	}()
	return c, nil
}
