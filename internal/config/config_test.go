package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
  extra: true
database:
  url: postgres://localhost:5432/morphik
auth:
  jwt_secret: test-secret
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadValidatesGraphMode(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/morphik
auth:
  jwt_secret: test-secret
rag:
  graph_mode: nope
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "graph_mode") {
		t.Fatalf("expected graph_mode error, got %v", err)
	}
}

func TestLoadValidatesGraphAPIBaseURLRequiredForAPIMode(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/morphik
auth:
  jwt_secret: test-secret
rag:
  graph_mode: api
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "graph_api_base_url") {
		t.Fatalf("expected graph_api_base_url error, got %v", err)
	}
}

func TestLoadValidatesMode(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/morphik
auth:
  jwt_secret: test-secret
rag:
  mode: nope
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "rag.mode") {
		t.Fatalf("expected rag.mode error, got %v", err)
	}
}

func TestLoadRequiresJWTSecretUnlessDev(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/morphik
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Fatalf("expected jwt_secret error, got %v", err)
	}
}

func TestLoadAllowsMissingJWTSecretInDevMode(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/morphik
auth:
  dev: true
rag:
  document_service_base_url: http://localhost:8000
`)

	if _, err := Load(path); err != nil {
		t.Fatalf("expected dev config to load, got %v", err)
	}
}

func TestLoadValidatesRegisteredModelProvider(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/morphik
auth:
  jwt_secret: test-secret
llm:
  models:
    claude:
      provider: bogus
      model: claude-sonnet
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "llm.models[claude].provider") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestLoadValidatesDefaultModelIsRegistered(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/morphik
auth:
  jwt_secret: test-secret
llm:
  default_model: missing
  models:
    claude:
      provider: anthropic
      model: claude-sonnet-4
`)

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "default_model") {
		t.Fatalf("expected default_model error, got %v", err)
	}
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 0.0.0.0
database:
  url: postgres://localhost:5432/morphik
auth:
  jwt_secret: test-secret
rag:
  mode: cloud
  graph_mode: local
  document_service_base_url: http://localhost:8000
llm:
  default_model: claude
  models:
    claude:
      provider: anthropic
      model: claude-sonnet-4
      context_window: 200000
    local-llama:
      provider: ollama
      model: llama3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.RAG.Mode != ModeCloud {
		t.Fatalf("expected cloud mode, got %q", cfg.RAG.Mode)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("MORPHIK_HOST", "127.0.0.1")
	t.Setenv("MORPHIK_HTTP_PORT", "9999")
	t.Setenv("DATABASE_URL", "postgres://override@localhost:5432/morphik")

	path := writeConfig(t, `
server:
  host: 0.0.0.0
  http_port: 8080
database:
  url: postgres://default@localhost:5432/morphik
auth:
  jwt_secret: test-secret
rag:
  document_service_base_url: http://localhost:8000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Fatalf("expected host override, got %q", cfg.Server.Host)
	}
	if cfg.Server.HTTPPort != 9999 {
		t.Fatalf("expected http port override, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Database.URL != "postgres://override@localhost:5432/morphik" {
		t.Fatalf("expected database url override, got %q", cfg.Database.URL)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  url: postgres://localhost:5432/morphik
auth:
  jwt_secret: test-secret
rag:
  document_service_base_url: http://localhost:8000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RAG.Mode != ModeSelfHosted {
		t.Fatalf("expected default mode self_hosted, got %q", cfg.RAG.Mode)
	}
	if cfg.RAG.GraphMode != "local" {
		t.Fatalf("expected default graph_mode local, got %q", cfg.RAG.GraphMode)
	}
	if cfg.Quota.MaxQueriesPerMonth == 0 {
		t.Fatalf("expected default quota to be applied")
	}
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "morphik.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}
