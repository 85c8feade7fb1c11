package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OFFICINE_CONFIG", "")
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path != "inspections.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Fatalf("unexpected session ttl %s", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.BcryptCost != 10 || cfg.Audit.PageSize != 100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "officine.yaml")
	yaml := "database:\n  path: from-file.db\naudit:\n  page_size: 25\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OFFICINE_CONFIG", path)
	t.Setenv("OFFICINE_DB_PATH", "from-env.db")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Path != "from-env.db" {
		t.Fatalf("env must win over file, got %q", cfg.Database.Path)
	}
	if cfg.Audit.PageSize != 25 {
		t.Fatalf("file value must apply, got %d", cfg.Audit.PageSize)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Setenv("OFFICINE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	good := Config{
		Database: Database{Path: "x.db"},
		Auth:     Auth{SessionTTL: time.Hour, BcryptCost: 10},
		Audit:    Audit{PageSize: 50},
	}
	if err := good.Validate(); err != nil {
		t.Fatal(err)
	}

	bad := good
	bad.Auth.BcryptCost = 40
	if err := bad.Validate(); err == nil {
		t.Fatal("expected bcrypt cost error")
	}
	bad = good
	bad.Audit.PageSize = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected page size error")
	}
	bad = good
	bad.Auth.SessionTTL = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("expected session ttl error")
	}
}
