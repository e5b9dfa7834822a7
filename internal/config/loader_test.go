package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Registry.StaleAfter != 60*time.Second {
		t.Fatalf("expected 60s stale-after, got %v", cfg.Registry.StaleAfter)
	}
	if cfg.Store.SweepInterval != 5*time.Minute {
		t.Fatalf("expected 5m sweep interval, got %v", cfg.Store.SweepInterval)
	}
}

func TestLoadFrom_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentrelay.yaml")
	yaml := `
server:
  port: "9090"
delegation:
  dispatch_timeout: 5s
  retry_attempts: 7
worker:
  capabilities: [research]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Delegation.DispatchTimeout != 5*time.Second {
		t.Fatalf("expected 5s dispatch timeout, got %v", cfg.Delegation.DispatchTimeout)
	}
	if cfg.Delegation.RetryAttempts != 7 {
		t.Fatalf("expected 7 retry attempts, got %d", cfg.Delegation.RetryAttempts)
	}
	if len(cfg.Worker.Capabilities) != 1 || cfg.Worker.Capabilities[0] != "research" {
		t.Fatalf("expected [research], got %v", cfg.Worker.Capabilities)
	}
	// Untouched sections keep defaults.
	if cfg.Rate.Burst != 100 {
		t.Fatalf("expected default burst 100, got %d", cfg.Rate.Burst)
	}
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentrelay.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	t.Setenv("AGENTRELAY_PORT", "7070")
	t.Setenv("AGENTRELAY_AUTH_ENABLED", "false")
	t.Setenv("RELAY_WORKER_CAPABILITIES", "research, summarize ,")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port 7070, got %q", cfg.Server.Port)
	}
	if cfg.Auth.Enabled {
		t.Fatal("expected auth disabled via env")
	}
	if len(cfg.Worker.Capabilities) != 2 {
		t.Fatalf("expected 2 capabilities, got %v", cfg.Worker.Capabilities)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentrelay.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.Delegation.DispatchTimeout = 0
	if err := validate(&cfg); err == nil {
		t.Fatal("expected error for zero dispatch timeout")
	}

	cfg = Defaults()
	cfg.Server.Port = ""
	if err := validate(&cfg); err == nil {
		t.Fatal("expected error for empty port")
	}
}
