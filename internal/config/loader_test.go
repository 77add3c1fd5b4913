package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "aiko.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  provider.openai:
    api_key: sk-test
    model: gpt-4o-mini
  gateway.http:
    bind: 127.0.0.1:8420
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if cfg.Version != "1" {
		t.Errorf("Version = %q, want %q", cfg.Version, "1")
	}
	ids := Resolve(cfg)
	want := []string{"gateway.http", "provider.openai"}
	if len(ids) != len(want) {
		t.Fatalf("Resolve: got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Resolve[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load(missing): expected error")
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("AIKO_TEST_KEY", "sk-from-env")

	path := writeConfig(t, `
version: "1"
modules:
  provider.openai:
    api_key: ${AIKO_TEST_KEY}
    model: ${AIKO_TEST_MODEL:-gpt-4o-mini}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}

	node := cfg.Modules["provider.openai"]
	var section struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	}
	if err := node.Decode(&section); err != nil {
		t.Fatalf("decoding module section: %v", err)
	}
	if section.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q, want %q", section.APIKey, "sk-from-env")
	}
	if section.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want default %q", section.Model, "gpt-4o-mini")
	}
}

func TestLoadUnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  provider.openai:
    api_key: ${AIKO_DEFINITELY_UNSET_VAR}
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load: expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "AIKO_DEFINITELY_UNSET_VAR") {
		t.Errorf("error %q does not name the unresolved variable", err)
	}
}
