package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mycal", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" || cfg.Backup.Keep != 24 || cfg.ImportHorizonDays != 90 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestLoadFillsMissingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := strings.Join([]string{
		"calendar_path: /tmp/cal.mycal",
		"log_level: DEBUG",
		"basic_auth:",
		"  username: admin",
		"  password: \"\"",
		"backup:",
		"  cron: \"*/30 * * * *\"",
		"ics:",
		"  - id: team",
		"    url: https://example.com/team.ics",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CalendarPath != "/tmp/cal.mycal" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected values: %+v", cfg)
	}
	if cfg.BasicAuth != nil {
		t.Fatalf("expected incomplete basic auth to be dropped")
	}
	if cfg.Backup.Cron != "*/30 * * * *" || cfg.Backup.Keep != 24 {
		t.Fatalf("unexpected backup config: %+v", cfg.Backup)
	}
	if cfg.Snapshot.Width != 1280 || cfg.Snapshot.TimeoutSeconds != 30 {
		t.Fatalf("unexpected snapshot config: %+v", cfg.Snapshot)
	}
	if len(cfg.ICS) != 1 || cfg.ICS[0].ID != "team" {
		t.Fatalf("unexpected ics config: %+v", cfg.ICS)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad cron":     "backup:\n  cron: \"every tuesday\"\n",
		"bad level":    "log_level: loud\n",
		"missing url":  "ics:\n  - id: a\n",
		"duplicate id": "ics:\n  - id: a\n    url: http://x/a.ics\n  - id: a\n    url: http://x/b.ics\n",
	}
	for name, body := range cases {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.CalendarPath = "/data/cal.mycal"
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	cfg.Backup.Cron = ""
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CalendarPath != cfg.CalendarPath || got.BasicAuth == nil || got.BasicAuth.Username != "u" || got.Backup.Cron != "" {
		t.Fatalf("round trip lost values: %+v", got)
	}
}

func TestBackupDir(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.BackupDir("/data/cal.mycal"); got != filepath.Join("/data", "backups") {
		t.Fatalf("unexpected backup dir %s", got)
	}
	cfg.Backup.Dir = "/elsewhere"
	if got := cfg.BackupDir("/data/cal.mycal"); got != "/elsewhere" {
		t.Fatalf("unexpected backup dir %s", got)
	}
}
