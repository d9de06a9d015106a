package config

import (
	"os"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(tmpFile.Name()) })

	if _, err := tmpFile.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tmpFile.Close()

	return tmpFile.Name()
}

func TestLoad_EnvSubstitution(t *testing.T) {
	os.Setenv("TEST_RPC_URL", "https://mainnet.example.org/v2/key123")
	defer os.Unsetenv("TEST_RPC_URL")

	path := writeTempConfig(t, `
chains:
  - id: 1
    name: ethereum
    endpoints:
      - name: primary
        url: ${TEST_RPC_URL}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := cfg.Chains[0].Endpoints[0].URL; got != "https://mainnet.example.org/v2/key123" {
		t.Errorf("Expected expanded URL, got %s", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeTempConfig(t, `
server:
  port: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Health.CacheTimeout != 10*time.Second {
		t.Errorf("Expected default cache timeout 10s, got %v", cfg.Health.CacheTimeout)
	}
	if cfg.Health.RefreshInterval != 30*time.Second {
		t.Errorf("Expected default refresh interval 30s, got %v", cfg.Health.RefreshInterval)
	}
	if cfg.Recovery.MaxAttempts != 3 {
		t.Errorf("Expected default max attempts 3, got %d", cfg.Recovery.MaxAttempts)
	}
	if cfg.Recovery.BackoffMultiplier != 2 {
		t.Errorf("Expected default backoff multiplier 2, got %v", cfg.Recovery.BackoffMultiplier)
	}
}

func TestLoad_ChainWithoutEndpoints(t *testing.T) {
	path := writeTempConfig(t, `
chains:
  - id: 137
    name: polygon
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Expected error for chain without endpoints")
	}
}
