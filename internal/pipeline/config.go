package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config describes one pipeline run: where the raw extracts are, where
// cleansed output goes, and whether/where to load the relational store.
type Config struct {
	Job string `json:"job"`

	Customers string `json:"customers"`
	Products  string `json:"products"`
	Sales     string `json:"sales"`

	OutDir     string `json:"out_dir"`
	SaveOutput bool   `json:"save_output"`

	LoadDB  bool          `json:"load_db"`
	Storage StorageConfig `json:"storage"`
}

// StorageConfig selects the storage backend. DSN may contain ${VAR}
// references expanded from the environment at run time.
type StorageConfig struct {
	Kind string `json:"kind"`
	DSN  string `json:"dsn"`
}

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding, addressed by a config path.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

var knownKinds = map[string]bool{
	"mysql":    true,
	"postgres": true,
	"sqlite":   true,
	"mssql":    true,
}

// Load reads and decodes a JSON config file.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every problem it can find rather than stopping at the
// first, so operators fix a config in one pass. Errors block a run; warnings
// do not.
func Validate(cfg Config) []Issue {
	var issues []Issue

	add := func(sev Severity, path, format string, v ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, v...)})
	}

	inputs := []struct {
		path  string
		value string
	}{
		{"customers", cfg.Customers},
		{"products", cfg.Products},
		{"sales", cfg.Sales},
	}
	for _, in := range inputs {
		if in.value == "" {
			add(SeverityError, in.path, "input path is required")
			continue
		}
		if _, err := os.Stat(in.value); err != nil {
			add(SeverityWarning, in.path, "cannot stat %s: %v", in.value, err)
		}
	}

	if cfg.SaveOutput && cfg.OutDir == "" {
		add(SeverityError, "out_dir", "required when save_output is set")
	}

	if cfg.LoadDB {
		if cfg.Storage.Kind == "" {
			add(SeverityError, "storage.kind", "required when load_db is set")
		} else if !knownKinds[cfg.Storage.Kind] {
			add(SeverityError, "storage.kind", "unknown kind %q", cfg.Storage.Kind)
		}
		if cfg.Storage.DSN == "" {
			add(SeverityError, "storage.dsn", "required when load_db is set")
		}
	}

	return issues
}

// HasError reports whether any issue is severe enough to block a run.
func HasError(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}
