package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODCTL_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if !cfg.Mods.Validate || !cfg.Mods.ShowTerminalOutput {
		t.Fatalf("unexpected mods defaults: %+v", cfg.Mods)
	}
	if filepath.Base(cfg.Mods.InstallLocation) != "fnf-mods" {
		t.Fatalf("unexpected install location: %q", cfg.Mods.InstallLocation)
	}
	if cfg.GameBanana.GameID != 8694 || cfg.GameBanana.PerPage != 20 {
		t.Fatalf("unexpected gamebanana defaults: %+v", cfg.GameBanana)
	}
	if cfg.Server.Addr != "127.0.0.1:7321" {
		t.Fatalf("unexpected server addr: %q", cfg.Server.Addr)
	}
	if cfg.Launcher.Wine != "wine" {
		t.Fatalf("unexpected wine runner: %q", cfg.Launcher.Wine)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[mods]
install_location = "~/fnf"
validate = false

[gamebanana]
per_page = 5

[download]
timeout = "90s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("HOME", home)
	t.Setenv("MODCTL_CONFIG", path)
	t.Setenv("MODCTL_SERVER_ADDR", "127.0.0.1:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Mods.Validate {
		t.Fatal("expected validate disabled by file")
	}
	if cfg.Mods.InstallLocation != filepath.Join(home, "fnf") {
		t.Fatalf("expected ~ expanded, got %q", cfg.Mods.InstallLocation)
	}
	if cfg.GameBanana.PerPage != 5 {
		t.Fatalf("expected per_page from file, got %d", cfg.GameBanana.PerPage)
	}
	if cfg.Download.Timeout != 90*time.Second {
		t.Fatalf("expected 90s timeout, got %v", cfg.Download.Timeout)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Fatalf("expected env override, got %q", cfg.Server.Addr)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[mods\nvalidate = "), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MODCTL_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
