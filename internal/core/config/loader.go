package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	if cfg.Health.CacheTimeout == 0 {
		cfg.Health.CacheTimeout = 10 * time.Second
	}
	if cfg.Health.RefreshInterval == 0 {
		cfg.Health.RefreshInterval = 30 * time.Second
	}
	if cfg.Health.ProbeTimeout == 0 {
		cfg.Health.ProbeTimeout = 5 * time.Second
	}
	if cfg.Health.BlockSampleSize == 0 {
		cfg.Health.BlockSampleSize = 10
	}

	if cfg.Recovery.MaxAttempts == 0 {
		cfg.Recovery.MaxAttempts = 3
	}
	if cfg.Recovery.InitialDelay == 0 {
		cfg.Recovery.InitialDelay = 1 * time.Second
	}
	if cfg.Recovery.MaxDelay == 0 {
		cfg.Recovery.MaxDelay = 30 * time.Second
	}
	if cfg.Recovery.BackoffMultiplier == 0 {
		cfg.Recovery.BackoffMultiplier = 2
	}
	if cfg.Recovery.ConsentTimeout == 0 {
		cfg.Recovery.ConsentTimeout = 30 * time.Second
	}

	for _, chain := range cfg.Chains {
		if len(chain.Endpoints) == 0 {
			return nil, fmt.Errorf("chain %d has no endpoints configured", chain.ChainID)
		}
	}

	return &cfg, nil
}
