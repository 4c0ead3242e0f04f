package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the calendar file inside DefaultDir.
const FileName = "calendar.mycal"

// DefaultDir returns ~/Documents/MyCalendar, creating it (0700) if needed.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: locate home directory: %w", err)
	}
	dir := filepath.Join(home, "Documents", "MyCalendar")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultPath returns the default calendar file location.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}
