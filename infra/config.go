package infra

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the runtime configuration of rivulet.
//
// Example (HCL):
//
//	credentials_file = "credentials.hcl"
//
//	server {
//	  port = 8080
//	}
//
//	log {
//	  level = "debug"
//	}
//
//	transport {
//	  timeout = "30s"
//	}
type Config struct {
	CredentialsFile string          `hcl:"credentials_file,optional"`
	Server          *ServerConfig   `hcl:"server,block"`
	Log             *LogConfig      `hcl:"log,block"`
	Transport       *TransportBlock `hcl:"transport,block"`
}

type ServerConfig struct {
	Port int `hcl:"port,optional"`
}

type LogConfig struct {
	Level string `hcl:"level,optional"`
	JSON  bool   `hcl:"json,optional"`
}

// TransportBlock is the HCL shape of TransportConfig; durations are strings.
type TransportBlock struct {
	Timeout string `hcl:"timeout,optional"`
}

// TransportConfig configures the outbound HTTP transport used by nodes.
type TransportConfig struct {
	Timeout time.Duration
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server:    &ServerConfig{Port: 8080},
		Log:       &LogConfig{Level: "info"},
		Transport: &TransportBlock{Timeout: "30s"},
	}
}

// LoadConfig reads an HCL config file (if path is non-empty), fills defaults
// and applies RIV_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
		if err := hclsimple.DecodeFile(path, hclContext, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file: %w", err)
		}
	}
	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server == nil {
		c.Server = def.Server
	} else if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Log == nil {
		c.Log = def.Log
	} else if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Transport == nil {
		c.Transport = def.Transport
	} else if c.Transport.Timeout == "" {
		c.Transport.Timeout = def.Transport.Timeout
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RIV_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RIV_API_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("RIV_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RIV_CREDENTIALS_FILE"); v != "" {
		c.CredentialsFile = v
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c.Server,
		validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validation.ValidateStruct(c.Log,
		validation.Field(&c.Log.Level, validation.Required, validation.By(validLevel)),
	); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if _, err := c.TransportConfig(); err != nil {
		return fmt.Errorf("transport: %w", err)
	}
	return nil
}

// TransportConfig parses the transport block.
func (c *Config) TransportConfig() (TransportConfig, error) {
	d, err := time.ParseDuration(c.Transport.Timeout)
	if err != nil {
		return TransportConfig{}, fmt.Errorf("timeout: %w", err)
	}
	if d < 0 {
		return TransportConfig{}, fmt.Errorf("timeout must not be negative, got: %v", d)
	}
	return TransportConfig{Timeout: d}, nil
}

// NewLogger builds the root logger described by the log block.
func (c *Config) NewLogger(name string) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(c.Log.Level),
		JSONFormat: c.Log.JSON,
	})
}

func validLevel(v any) error {
	s, _ := v.(string)
	if hclog.LevelFromString(s) == hclog.NoLevel {
		return fmt.Errorf("unknown level %q", s)
	}
	return nil
}
