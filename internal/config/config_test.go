package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFullConfig(t *testing.T) {
	data := []byte(`
host: /opt/blender/blender
import_paths:
  - lib
  - addons
verbose: true
journal:
  enabled: true
  path: /tmp/runs.db
`)
	cfg, err := Parse(data, "/proj/hostbridge.yaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Host != "/opt/blender/blender" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if len(cfg.ImportPaths) != 2 || cfg.ImportPaths[0] != "lib" {
		t.Errorf("ImportPaths = %v", cfg.ImportPaths)
	}
	if !cfg.Verbose {
		t.Error("Verbose not set")
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "/tmp/runs.db" {
		t.Errorf("Journal = %+v", cfg.Journal)
	}
}

func TestParseEmptyConfig(t *testing.T) {
	cfg, err := Parse(nil, "hostbridge.yaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Host != "" || cfg.Journal.Enabled {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseJournalDefaultPath(t *testing.T) {
	cfg, err := Parse([]byte("journal:\n  enabled: true\n"), "/proj/hostbridge.yaml")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := filepath.Join("/proj", ProjectDirName, "journal.db")
	if cfg.Journal.Path != want {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, want)
	}
}

func TestParseRejectsEmptyImportPath(t *testing.T) {
	if _, err := Parse([]byte(`import_paths: ["lib", ""]`), "hostbridge.yaml"); err == nil {
		t.Error("empty import path accepted")
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("host: [unclosed"), "hostbridge.yaml"); err == nil {
		t.Error("malformed yaml accepted")
	}
}

func TestFindWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	cfgPath := filepath.Join(root, ConfigFileName)
	if err := os.WriteFile(cfgPath, []byte("verbose: true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found != cfgPath {
		t.Errorf("Find = %q, want %q", found, cfgPath)
	}
}

func TestFindNoConfig(t *testing.T) {
	found, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if found != "" {
		t.Errorf("Find = %q, want empty", found)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
