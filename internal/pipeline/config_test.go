package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_DecodesJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.json", `{
		"job": "retail",
		"customers": "data/customers_raw.csv",
		"products": "data/products_raw.csv",
		"sales": "data/sales_raw.csv",
		"out_dir": "out",
		"save_output": true,
		"load_db": true,
		"storage": {"kind": "mysql", "dsn": "user:pw@tcp(localhost:3306)/fleximart"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Job != "retail" || cfg.Storage.Kind != "mysql" || !cfg.LoadDB {
		t.Fatalf("decoded config: %+v", cfg)
	}
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.json", `{"job": "x", "nope": 1}`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "c.csv", "customer_id\n")

	tests := []struct {
		name      string
		cfg       Config
		wantError bool
	}{
		{
			name:      "missing_inputs",
			cfg:       Config{},
			wantError: true,
		},
		{
			name: "ok_without_load",
			cfg: Config{
				Customers: existing, Products: existing, Sales: existing,
			},
			wantError: false,
		},
		{
			name: "load_requires_kind_and_dsn",
			cfg: Config{
				Customers: existing, Products: existing, Sales: existing,
				LoadDB: true,
			},
			wantError: true,
		},
		{
			name: "unknown_storage_kind",
			cfg: Config{
				Customers: existing, Products: existing, Sales: existing,
				LoadDB:  true,
				Storage: StorageConfig{Kind: "oracle", DSN: "x"},
			},
			wantError: true,
		},
		{
			name: "save_requires_out_dir",
			cfg: Config{
				Customers: existing, Products: existing, Sales: existing,
				SaveOutput: true,
			},
			wantError: true,
		},
		{
			name: "full_valid",
			cfg: Config{
				Customers: existing, Products: existing, Sales: existing,
				SaveOutput: true, OutDir: dir,
				LoadDB:  true,
				Storage: StorageConfig{Kind: "sqlite", DSN: "file:test.db"},
			},
			wantError: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := Validate(tc.cfg)
			if got := HasError(issues); got != tc.wantError {
				t.Fatalf("HasError=%v, want %v; issues=%+v", got, tc.wantError, issues)
			}
		})
	}
}

func TestValidate_MissingFileIsWarningOnly(t *testing.T) {
	cfg := Config{
		Customers: "does/not/exist.csv",
		Products:  "also/missing.csv",
		Sales:     "gone.csv",
	}
	issues := Validate(cfg)
	if len(issues) != 3 {
		t.Fatalf("issues = %+v, want 3 warnings", issues)
	}
	if HasError(issues) {
		t.Fatalf("missing files should warn, not error: %+v", issues)
	}
}
