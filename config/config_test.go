package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  port: 8080
  timeout: 10s
data:
  path: data/exoplanets.csv
  watch: true
model:
  path: models/rf.json
  n_estimators: 50
log:
  level: debug
  file: logs/exohab.log
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Http.Port != 8080 || cfg.Http.Timeout != 10*time.Second {
		t.Fatalf("unexpected http config: %+v", cfg.Http)
	}
	if cfg.Data.Path != "data/exoplanets.csv" || !cfg.Data.Watch {
		t.Fatalf("unexpected data config: %+v", cfg.Data)
	}
	if cfg.Model.NEstimators != 50 || cfg.Model.Seed != 42 || cfg.Model.TestRatio != 0.2 {
		t.Fatalf("unexpected model config: %+v", cfg.Model)
	}
	if cfg.Data.DisplayLimit != 20 {
		t.Fatalf("expected default display limit, got %d", cfg.Data.DisplayLimit)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "logs/exohab.log" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Http.Port != 5001 {
		t.Fatalf("expected default port 5001, got %d", cfg.Http.Port)
	}
	if cfg.Model.Type != "random_forest" || cfg.Model.NEstimators != 100 {
		t.Fatalf("unexpected model defaults: %+v", cfg.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	cfg.Model.TestRatio = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for test ratio")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := Default()
	cfg.Database.Path = "exohab.db"
	abs := filepath.Join(t.TempDir(), "data.csv")
	cfg.Data.Path = abs

	cfg.ResolvePaths("..")

	if cfg.Model.Path != filepath.Join("..", "models", "habitability_model.json") {
		t.Fatalf("unexpected model path %q", cfg.Model.Path)
	}
	if cfg.Database.Path != filepath.Join("..", "exohab.db") {
		t.Fatalf("unexpected database path %q", cfg.Database.Path)
	}
	if cfg.Data.Path != abs {
		t.Fatalf("absolute path must be kept, got %q", cfg.Data.Path)
	}
	if cfg.Log.File != "" {
		t.Fatalf("empty path must stay empty, got %q", cfg.Log.File)
	}
}
