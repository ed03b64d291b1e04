package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/splitfire/splitfire/internal/estimate"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got := cfg.MaxFileSizeMB.Int(0); got != DefaultMaxFileSizeMB {
		t.Errorf("max file size = %d, want %d", got, DefaultMaxFileSizeMB)
	}
	if cfg.MaxFileSizeMB.Source != SourceDefault {
		t.Errorf("source = %s, want default", cfg.MaxFileSizeMB.Source)
	}
	if cfg.Encoding.Value != DefaultEncoding {
		t.Errorf("encoding = %s, want %s", cfg.Encoding.Value, DefaultEncoding)
	}
	if cfg.OutputDir.Value != "" {
		t.Errorf("output dir should stay unset, got %q", cfg.OutputDir.Value)
	}
}

func TestResolveFromFile(t *testing.T) {
	path := writeConfig(t, `
max_file_size_mb: 100
max_pages_per_chunk: 50
default_output_dir: /tmp/pdf-out
`)

	cfg, err := Resolve(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if got := cfg.MaxFileSizeMB.Int(0); got != 100 {
		t.Errorf("max file size = %d, want 100", got)
	}
	if cfg.MaxFileSizeMB.Source != SourceConfig || cfg.MaxFileSizeMB.From != path {
		t.Errorf("provenance = %s/%s, want config/%s", cfg.MaxFileSizeMB.Source, cfg.MaxFileSizeMB.From, path)
	}
	if cfg.OutputDir.Value != "/tmp/pdf-out" {
		t.Errorf("output dir = %q", cfg.OutputDir.Value)
	}
	// Keys the file omits still get defaults.
	if got := cfg.MaxTokenLimit.Int(0); got != DefaultMaxTokenLimit {
		t.Errorf("token limit = %d, want default %d", got, DefaultMaxTokenLimit)
	}
}

func TestResolvePrecedence(t *testing.T) {
	path := writeConfig(t, "max_file_size_mb: 100\ndefault_output_dir: /from/file\n")

	t.Setenv("SPLITFIRE_MAX_FILE_SIZE_MB", "200")
	t.Setenv("SPLITFIRE_OUTPUT_DIR", "/from/env")

	cfg, err := Resolve(ResolveOptions{
		ConfigPath:   path,
		CLIOutputDir: "/from/cli",
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Env beats file.
	if got := cfg.MaxFileSizeMB.Int(0); got != 200 {
		t.Errorf("max file size = %d, want env value 200", got)
	}
	if cfg.MaxFileSizeMB.Source != SourceEnv {
		t.Errorf("source = %s, want env", cfg.MaxFileSizeMB.Source)
	}

	// CLI beats env.
	if cfg.OutputDir.Value != "/from/cli" || cfg.OutputDir.Source != SourceCLI {
		t.Errorf("output dir = %q from %s, want /from/cli from cli", cfg.OutputDir.Value, cfg.OutputDir.Source)
	}
}

func TestResolveRejectsBadValues(t *testing.T) {
	t.Run("non-numeric env", func(t *testing.T) {
		t.Setenv("SPLITFIRE_MAX_TOKEN_LIMIT", "lots")
		if _, err := Resolve(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "none.yaml")}); err == nil {
			t.Error("expected error for non-numeric limit")
		}
	})

	t.Run("non-positive file value", func(t *testing.T) {
		path := writeConfig(t, "max_pages_per_chunk: -5\n")
		if _, err := Resolve(ResolveOptions{ConfigPath: path}); err == nil {
			t.Error("expected error for negative limit")
		}
	})
}

func TestResolveEstimatorThresholds(t *testing.T) {
	t.Run("defaults when absent", func(t *testing.T) {
		cfg, err := Resolve(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "none.yaml")})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if cfg.Thresholds != estimate.DefaultThresholds() {
			t.Errorf("thresholds = %+v, want defaults", cfg.Thresholds)
		}
	})

	t.Run("file overrides set fields only", func(t *testing.T) {
		path := writeConfig(t, `
estimator:
  min_pages_per_chunk: 3
  heavy_bytes_per_page: 1
`)
		cfg, err := Resolve(ResolveOptions{ConfigPath: path})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if cfg.Thresholds.MinPagesPerChunk != 3 {
			t.Errorf("min pages per chunk = %d, want 3", cfg.Thresholds.MinPagesPerChunk)
		}
		if cfg.Thresholds.HeavyBytesPerPage != 1 {
			t.Errorf("heavy bytes per page = %d, want 1", cfg.Thresholds.HeavyBytesPerPage)
		}
		// Keys the block omits keep their defaults.
		if want := estimate.DefaultThresholds().MaxPagesPerChunk; cfg.Thresholds.MaxPagesPerChunk != want {
			t.Errorf("max pages per chunk = %d, want default %d", cfg.Thresholds.MaxPagesPerChunk, want)
		}
		if want := estimate.DefaultThresholds().ManyPages; cfg.Thresholds.ManyPages != want {
			t.Errorf("many pages = %d, want default %d", cfg.Thresholds.ManyPages, want)
		}
	})
}

func TestExpandUserPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	t.Setenv("SPLITFIRE_OUTPUT_DIR", "~/pdf-chunks")
	cfg, err := Resolve(ResolveOptions{ConfigPath: filepath.Join(t.TempDir(), "none.yaml")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := filepath.Join(home, "pdf-chunks"); cfg.OutputDir.Value != want {
		t.Errorf("output dir = %q, want %q", cfg.OutputDir.Value, want)
	}
}
