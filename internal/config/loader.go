package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "agentrelay.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "AGENTRELAY_PORT")
	setString(&cfg.Server.BaseURL, "AGENTRELAY_BASE_URL")
	setString(&cfg.Server.CORSOrigin, "AGENTRELAY_CORS_ORIGIN")
	setString(&cfg.Logging.Level, "AGENTRELAY_LOG_LEVEL")
	setString(&cfg.Logging.Service, "AGENTRELAY_LOG_SERVICE")
	setString(&cfg.NATS.URL, "NATS_URL")
	setBool(&cfg.Auth.Enabled, "AGENTRELAY_AUTH_ENABLED")
	setString(&cfg.Auth.MasterKeyHash, "AGENTRELAY_MASTER_KEY_HASH")
	setInt(&cfg.Breaker.MaxFailures, "AGENTRELAY_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "AGENTRELAY_BREAKER_TIMEOUT")
	setFloat64(&cfg.Rate.RequestsPerSecond, "AGENTRELAY_RATE_RPS")
	setInt(&cfg.Rate.Burst, "AGENTRELAY_RATE_BURST")
	setDuration(&cfg.Delegation.DispatchTimeout, "AGENTRELAY_DISPATCH_TIMEOUT")
	setInt(&cfg.Delegation.RetryAttempts, "AGENTRELAY_RETRY_ATTEMPTS")
	setDuration(&cfg.Registry.StaleAfter, "AGENTRELAY_WORKER_STALE_AFTER")
	setDuration(&cfg.Store.SweepInterval, "AGENTRELAY_SWEEP_INTERVAL")
	setDuration(&cfg.Store.TaskTTL, "AGENTRELAY_TASK_TTL")
	setInt64(&cfg.Cache.MaxSizeMB, "AGENTRELAY_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "AGENTRELAY_CACHE_TTL")
	setBool(&cfg.Telemetry.Enabled, "AGENTRELAY_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "AGENTRELAY_TELEMETRY_ENDPOINT")
	setString(&cfg.Skill.Path, "AGENTRELAY_SKILL_PATH")
	setBool(&cfg.MCP.Enabled, "AGENTRELAY_MCP_ENABLED")
	setString(&cfg.MCP.Addr, "AGENTRELAY_MCP_ADDR")

	setString(&cfg.Worker.Name, "RELAY_WORKER_NAME")
	setString(&cfg.Worker.Port, "RELAY_WORKER_PORT")
	setString(&cfg.Worker.URL, "RELAY_WORKER_URL")
	setString(&cfg.Worker.CoordinatorURL, "RELAY_COORDINATOR_URL")
	setStringSlice(&cfg.Worker.Capabilities, "RELAY_WORKER_CAPABILITIES")
	setDuration(&cfg.Worker.HeartbeatInterval, "RELAY_WORKER_HEARTBEAT")
}

// validate checks invariants that would otherwise surface as confusing
// runtime failures.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server port must not be empty")
	}
	if cfg.Delegation.DispatchTimeout <= 0 {
		return errors.New("dispatch timeout must be positive")
	}
	if cfg.Registry.StaleAfter <= 0 {
		return errors.New("worker stale-after must be positive")
	}
	if cfg.Store.SweepInterval <= 0 || cfg.Store.TaskTTL <= 0 {
		return errors.New("store sweep interval and task ttl must be positive")
	}
	if cfg.Rate.RequestsPerSecond <= 0 || cfg.Rate.Burst <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setStringSlice(dst *[]string, env string) {
	if v := os.Getenv(env); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*dst = out
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, env string) {
	if v := os.Getenv(env); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, env string) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
