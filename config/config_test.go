package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PreviewWidth != 280 || cfg.RestorePath != "/api/restore" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestSaveLoad_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"cfg.json", "cfg.yaml"} {
		path := filepath.Join(dir, name)
		cfg := DefaultConfig()
		cfg.ServerURL = "http://restorer:8080/"
		cfg.SelectionX, cfg.SelectionY, cfg.SelectionW, cfg.SelectionH = 10, 20, 300, 200
		if err := cfg.Save(path); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}
		got, err := Load(path)
		if err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got.ServerURL != "http://restorer:8080" {
			t.Fatalf("%s: expected trailing slash trimmed, got %q", name, got.ServerURL)
		}
		if got.SelectionW != 300 || got.SelectionH != 200 || got.SelectionX != 10 {
			t.Fatalf("%s: selection not persisted: %+v", name, got)
		}
		if got.RestoreURL() != "http://restorer:8080/api/restore" {
			t.Fatalf("%s: restore url %q", name, got.RestoreURL())
		}
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("server_url: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
	if cfg == nil || cfg.PreviewWidth != 280 {
		t.Fatalf("expected defaults alongside error, got %+v", cfg)
	}
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{RestorePath: "api/restore", RequestTimeoutSeconds: -3, SelectionW: -1}
	_ = cfg.Validate()
	if cfg.RestorePath != "/api/restore" {
		t.Fatalf("restore path not normalized: %q", cfg.RestorePath)
	}
	if cfg.RequestTimeoutSeconds != 0 || cfg.PreviewWidth != 280 || cfg.TickMillis != 50 {
		t.Fatalf("clamps not applied: %+v", cfg)
	}
	if cfg.SelectionW != 0 || cfg.SelectionH != 0 {
		t.Fatalf("negative selection not cleared: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvServerURL, "http://env-host:9000")
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	if cfg.ServerURL != "http://env-host:9000" {
		t.Fatalf("env override not applied: %q", cfg.ServerURL)
	}
}
