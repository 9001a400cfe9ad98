package binconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if cfg.MaxDataSize != 104857600 {
		t.Errorf("MaxDataSize = %d, want 104857600", cfg.MaxDataSize)
	}
	if cfg.MaxTLSCallbacks != 4096 {
		t.Errorf("MaxTLSCallbacks = %d, want 4096", cfg.MaxTLSCallbacks)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log defaults = %s/%s, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestManagerLoadNoFile(t *testing.T) {
	m := NewManager(nil)
	cfg, err := m.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTLSCallbacks != 4096 {
		t.Errorf("MaxTLSCallbacks = %d, want 4096", cfg.MaxTLSCallbacks)
	}
}

func TestManagerLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "binfmt.toml")
	content := "max_data_size = 2048\nmax_tls_callbacks = 16\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	m := NewManager(nil)
	cfg, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxDataSize != 2048 {
		t.Errorf("MaxDataSize = %d, want 2048", cfg.MaxDataSize)
	}
	if cfg.MaxTLSCallbacks != 16 {
		t.Errorf("MaxTLSCallbacks = %d, want 16", cfg.MaxTLSCallbacks)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
}

func TestManagerLoadMissingFileFallsBackToDefaults(t *testing.T) {
	m := NewManager(nil)
	cfg, err := m.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxTLSCallbacks != 4096 {
		t.Errorf("MaxTLSCallbacks = %d, want 4096 (default)", cfg.MaxTLSCallbacks)
	}
}
