// Package config resolves runtime settings from, in rising precedence,
// a yaml config file, SPLITFIRE_* environment variables, and CLI flags.
// Every resolved value keeps its provenance so diagnostics can say where a
// limit came from.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/splitfire/splitfire/internal/estimate"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is a setting plus where it came from.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// Built-in defaults, applied when file, env, and CLI are all silent.
const (
	DefaultMaxFileSizeMB    = 500
	DefaultMaxPagesPerChunk = 200
	DefaultMaxTokenLimit    = 32000
	DefaultEncoding         = "cl100k_base"
)

// ResolveOptions carries CLI-provided overrides into resolution.
type ResolveOptions struct {
	ConfigPath     string
	CLIOutputDir   string
	CLIEncoding    string
	CLIMaxFileSize string
}

// ResolvedConfig is the full resolved settings set.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	MaxFileSizeMB    ResolvedValue `json:"max_file_size_mb"`
	MaxPagesPerChunk ResolvedValue `json:"max_pages_per_chunk"`
	MaxTokenLimit    ResolvedValue `json:"max_token_limit"`
	OutputDir        ResolvedValue `json:"default_output_dir"`
	Encoding         ResolvedValue `json:"encoding"`

	// Thresholds is the estimator policy table: defaults overlaid with any
	// estimator block from the config file. File-only; no env or CLI form.
	Thresholds estimate.Thresholds `json:"estimator"`
}

type fileConfig struct {
	MaxFileSizeMB    int                 `yaml:"max_file_size_mb"`
	MaxPagesPerChunk int                 `yaml:"max_pages_per_chunk"`
	MaxTokenLimit    int                 `yaml:"max_token_limit"`
	OutputDir        string              `yaml:"default_output_dir"`
	Encoding         string              `yaml:"encoding"`
	Estimator        estimate.Thresholds `yaml:"estimator"`
}

// DefaultConfigPath is ~/.splitfire/config.yaml.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".splitfire", "config.yaml")
}

// Resolve merges config file, environment, CLI, and defaults.
func Resolve(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{ConfigPath: path}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}

	if cfg != nil {
		applyInt(&out.MaxFileSizeMB, cfg.MaxFileSizeMB, SourceConfig, path)
		applyInt(&out.MaxPagesPerChunk, cfg.MaxPagesPerChunk, SourceConfig, path)
		applyInt(&out.MaxTokenLimit, cfg.MaxTokenLimit, SourceConfig, path)
		apply(&out.OutputDir, cfg.OutputDir, SourceConfig, path)
		apply(&out.Encoding, cfg.Encoding, SourceConfig, path)
	}
	out.Thresholds = mergeThresholds(cfg)

	applyEnv(&out.MaxFileSizeMB, "SPLITFIRE_MAX_FILE_SIZE_MB")
	applyEnv(&out.MaxPagesPerChunk, "SPLITFIRE_MAX_PAGES_PER_CHUNK")
	applyEnv(&out.MaxTokenLimit, "SPLITFIRE_MAX_TOKEN_LIMIT")
	applyEnv(&out.OutputDir, "SPLITFIRE_OUTPUT_DIR")
	applyEnv(&out.Encoding, "SPLITFIRE_ENCODING")

	apply(&out.OutputDir, opts.CLIOutputDir, SourceCLI, "--output")
	apply(&out.Encoding, opts.CLIEncoding, SourceCLI, "--encoding")
	apply(&out.MaxFileSizeMB, opts.CLIMaxFileSize, SourceCLI, "--max-file-size")

	applyDefaultInt(&out.MaxFileSizeMB, DefaultMaxFileSizeMB)
	applyDefaultInt(&out.MaxPagesPerChunk, DefaultMaxPagesPerChunk)
	applyDefaultInt(&out.MaxTokenLimit, DefaultMaxTokenLimit)
	applyDefault(&out.Encoding, DefaultEncoding)

	if out.OutputDir.Value != "" {
		out.OutputDir.Value = expandUserPath(out.OutputDir.Value)
	}

	if err := validate(out); err != nil {
		return out, err
	}
	return out, nil
}

// Int returns the value parsed as an integer, or fallback when unset or
// malformed.
func (v ResolvedValue) Int(fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v.Value))
	if err != nil {
		return fallback
	}
	return n
}

func validate(c ResolvedConfig) error {
	checks := []struct {
		name string
		v    ResolvedValue
	}{
		{"max_file_size_mb", c.MaxFileSizeMB},
		{"max_pages_per_chunk", c.MaxPagesPerChunk},
		{"max_token_limit", c.MaxTokenLimit},
	}
	for _, ck := range checks {
		n, err := strconv.Atoi(ck.v.Value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number (from %s)", ck.name, ck.v.Value, ck.v.From)
		}
		if n <= 0 {
			return fmt.Errorf("%s must be positive, got %d (from %s)", ck.name, n, ck.v.From)
		}
	}
	return nil
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyInt(dst *ResolvedValue, raw int, source ValueSource, from string) {
	if raw == 0 {
		return
	}
	*dst = ResolvedValue{Value: strconv.Itoa(raw), Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func applyDefault(dst *ResolvedValue, value string) {
	if dst.Value == "" {
		*dst = ResolvedValue{Value: value, Source: SourceDefault, From: "built-in default"}
	}
}

func applyDefaultInt(dst *ResolvedValue, value int) {
	applyDefault(dst, strconv.Itoa(value))
}

// mergeThresholds overlays the file's estimator block onto the default policy
// table. Unset (zero) fields keep their defaults, same as the numeric keys.
func mergeThresholds(cfg *fileConfig) estimate.Thresholds {
	th := estimate.DefaultThresholds()
	if cfg == nil {
		return th
	}
	o := cfg.Estimator
	if o.MinPagesPerChunk > 0 {
		th.MinPagesPerChunk = o.MinPagesPerChunk
	}
	if o.MaxPagesPerChunk > 0 {
		th.MaxPagesPerChunk = o.MaxPagesPerChunk
	}
	if o.HeavyBytesPerPage > 0 {
		th.HeavyBytesPerPage = o.HeavyBytesPerPage
	}
	if o.LightBytesPerPage > 0 {
		th.LightBytesPerPage = o.LightBytesPerPage
	}
	if o.DenseCharsPerPage > 0 {
		th.DenseCharsPerPage = o.DenseCharsPerPage
	}
	if o.SparseCharsPerPage > 0 {
		th.SparseCharsPerPage = o.SparseCharsPerPage
	}
	if o.ManyPages > 0 {
		th.ManyPages = o.ManyPages
	}
	return th
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
