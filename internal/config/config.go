// Package config provides hierarchical configuration loading for AgentRelay.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the AgentRelay coordinator.
type Config struct {
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
	NATS       NATS       `yaml:"nats"`
	Auth       Auth       `yaml:"auth"`
	Breaker    Breaker    `yaml:"breaker"`
	Rate       Rate       `yaml:"rate"`
	Delegation Delegation `yaml:"delegation"`
	Registry   Registry   `yaml:"registry"`
	Store      Store      `yaml:"store"`
	Cache      Cache      `yaml:"cache"`
	Telemetry  Telemetry  `yaml:"telemetry"`
	Skill      Skill      `yaml:"skill"`
	MCP        MCP        `yaml:"mcp"`
	Worker     Worker     `yaml:"worker"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	BaseURL    string `yaml:"base_url"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// NATS holds event bus configuration. An empty URL disables publishing.
type NATS struct {
	URL string `yaml:"url"`
}

// Auth holds API key and operator credential configuration.
type Auth struct {
	Enabled bool `yaml:"enabled"`
	// MasterKeyHash is a bcrypt hash of the operator master key.
	// Generate one with `agentrelay admin hash-key`.
	MasterKeyHash string `yaml:"master_key_hash"`
}

// Breaker holds circuit breaker configuration for worker dispatch.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Rate holds rate limiter configuration.
type Rate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Delegation holds subtask dispatch configuration.
type Delegation struct {
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
	// RetryAttempts is accepted for compatibility with older deployments.
	// The delegation loop performs no retries.
	RetryAttempts int `yaml:"retry_attempts"`
}

// Registry holds worker registry configuration.
type Registry struct {
	StaleAfter time.Duration `yaml:"stale_after"`
}

// Store holds in-memory state store configuration.
type Store struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
	TaskTTL       time.Duration `yaml:"task_ttl"`
}

// Cache holds L1 cache configuration.
type Cache struct {
	MaxSizeMB int64         `yaml:"max_size_mb"`
	TTL       time.Duration `yaml:"ttl"`
}

// Telemetry holds OpenTelemetry export configuration.
type Telemetry struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Skill holds skill manifest serving configuration.
type Skill struct {
	// Path to a skill.md file served to agents. Empty uses the embedded default.
	Path string `yaml:"path"`
}

// MCP holds Model Context Protocol server configuration.
type MCP struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Worker holds configuration for the relay-worker binary.
type Worker struct {
	Name              string        `yaml:"name"`
	Port              string        `yaml:"port"`
	URL               string        `yaml:"url"`
	CoordinatorURL    string        `yaml:"coordinator_url"`
	Capabilities      []string      `yaml:"capabilities"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			BaseURL:    "http://localhost:8080",
			CORSOrigin: "*",
		},
		Logging: Logging{
			Level:   "info",
			Service: "agentrelay",
		},
		NATS: NATS{
			URL: "",
		},
		Auth: Auth{
			Enabled: true,
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Rate: Rate{
			RequestsPerSecond: 10,
			Burst:             100,
		},
		Delegation: Delegation{
			DispatchTimeout: 30 * time.Second,
			RetryAttempts:   3,
		},
		Registry: Registry{
			StaleAfter: 60 * time.Second,
		},
		Store: Store{
			SweepInterval: 5 * time.Minute,
			TaskTTL:       time.Hour,
		},
		Cache: Cache{
			MaxSizeMB: 32,
			TTL:       30 * time.Second,
		},
		Telemetry: Telemetry{
			Enabled:  false,
			Endpoint: "localhost:4317",
		},
		MCP: MCP{
			Enabled: true,
			Addr:    ":8090",
		},
		Worker: Worker{
			Name:              "worker-1",
			Port:              "8081",
			URL:               "http://localhost:8081",
			CoordinatorURL:    "http://localhost:8080",
			Capabilities:      []string{"research", "summarize"},
			HeartbeatInterval: 30 * time.Second,
		},
	}
}
