// Package config loads client configuration from TOML or JSONC files with
// environment variable overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
)

// Config holds the settings for one agent connection.
type Config struct {
	BaseURL   string `toml:"base_url" json:"baseUrl"`
	AgentID   string `toml:"agent_id" json:"agentId"`
	Protocol  string `toml:"protocol" json:"protocol"`
	AuthToken string `toml:"auth_token" json:"authToken"`
	Session   string `toml:"session" json:"session"`

	Connection ConnectionConfig `toml:"connection" json:"connection"`
	Logging    LoggingConfig    `toml:"logging" json:"logging"`
}

// ConnectionConfig holds reconnect and timeout settings.
type ConnectionConfig struct {
	AutoReconnect        bool `toml:"auto_reconnect" json:"autoReconnect"`
	ReconnectDelayMs     int  `toml:"reconnect_delay_ms" json:"reconnectDelayMs"`
	MaxReconnectAttempts int  `toml:"max_reconnect_attempts" json:"maxReconnectAttempts"`
	RequestTimeoutMs     int  `toml:"request_timeout_ms" json:"requestTimeoutMs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

// Protocols this client can speak.
const (
	ProtocolAGUI   = "ag-ui"
	ProtocolACP    = "acp"
	ProtocolVercel = "vercel-ai"
	ProtocolA2A    = "a2a"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Protocol: ProtocolAGUI,
		Session:  "default",
		Connection: ConnectionConfig{
			AutoReconnect:        true,
			ReconnectDelayMs:     1000,
			MaxReconnectAttempts: 5,
			RequestTimeoutMs:     30000,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads the file at path into a Config on top of the defaults, then
// applies environment overrides. TOML and JSON/JSONC are selected by file
// extension. An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case ".json", ".jsonc":
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		default:
			return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays AGENTKIT_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("AGENTKIT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("AGENTKIT_AGENT_ID"); v != "" {
		c.AgentID = v
	}
	if v := os.Getenv("AGENTKIT_PROTOCOL"); v != "" {
		c.Protocol = v
	}
	if v := os.Getenv("AGENTKIT_AUTH_TOKEN"); v != "" {
		c.AuthToken = v
	}
	if v := os.Getenv("AGENTKIT_SESSION"); v != "" {
		c.Session = v
	}
	if v := os.Getenv("AGENTKIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("AGENTKIT_MAX_RECONNECT_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Connection.MaxReconnectAttempts = n
		}
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	switch c.Protocol {
	case ProtocolAGUI, ProtocolACP, ProtocolVercel, ProtocolA2A:
	default:
		return fmt.Errorf("unknown protocol %q", c.Protocol)
	}
	if c.Connection.ReconnectDelayMs < 0 || c.Connection.MaxReconnectAttempts < 0 {
		return fmt.Errorf("reconnect settings cannot be negative")
	}
	return nil
}

// ReconnectDelay returns the backoff base delay as a duration.
func (c *ConnectionConfig) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMs) * time.Millisecond
}

// RequestTimeout returns the request timeout as a duration.
func (c *ConnectionConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}
