package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// SASL mechanisms understood by the client
const (
	MechanismPlain    = "PLAIN"
	MechanismExternal = "EXTERNAL"
)

// EnvPrefix prefixes environment overrides, e.g. AMQP_CONNECTION_HOST.
const EnvPrefix = "AMQP_"

// DefaultConfig creates a configuration with sensible defaults
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Connection: ConnectionConfig{
			Host:        "localhost",
			Port:        5672,
			VHost:       "/",
			Username:    "guest",
			Password:    "guest",
			Mechanism:   MechanismPlain,
			FrameMax:    131072, // 128KB
			ChannelMax:  0,      // accept the broker's limit
			Heartbeat:   0,
			DialTimeout: 30 * time.Second,
			Locale:      "en_US",
		},
		TLS: TLSConfig{
			Enabled:        false,
			VerifyPeer:     true,
			VerifyHostname: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "amqp_client",
			Address:   ":9419",
		},
	}
}

// ClientConfig is the complete client configuration
type ClientConfig struct {
	Connection ConnectionConfig `koanf:"connection" yaml:"connection"`
	TLS        TLSConfig        `koanf:"tls" yaml:"tls"`
	Logging    LoggingConfig    `koanf:"logging" yaml:"logging"`
	Metrics    MetricsConfig    `koanf:"metrics" yaml:"metrics"`
}

// ConnectionConfig holds broker address, credentials and tuning requests
type ConnectionConfig struct {
	Host      string `koanf:"host" yaml:"host"`
	Port      int    `koanf:"port" yaml:"port"`
	VHost     string `koanf:"vhost" yaml:"vhost"`
	Username  string `koanf:"username" yaml:"username"`
	Password  string `koanf:"password" yaml:"password"`
	Mechanism string `koanf:"mechanism" yaml:"mechanism"`
	// Identity is sent as the EXTERNAL response, usually the certificate CN.
	Identity    string        `koanf:"identity" yaml:"identity,omitempty"`
	FrameMax    uint32        `koanf:"frame_max" yaml:"frame_max"`
	ChannelMax  uint16        `koanf:"channel_max" yaml:"channel_max"`
	Heartbeat   time.Duration `koanf:"heartbeat" yaml:"heartbeat"`
	DialTimeout time.Duration `koanf:"dial_timeout" yaml:"dial_timeout"`
	Locale      string        `koanf:"locale" yaml:"locale"`
}

// TLSConfig configures amqps connections
type TLSConfig struct {
	Enabled        bool   `koanf:"enabled" yaml:"enabled"`
	CertFile       string `koanf:"cert_file" yaml:"cert_file,omitempty"`
	KeyFile        string `koanf:"key_file" yaml:"key_file,omitempty"`
	CAFile         string `koanf:"ca_file" yaml:"ca_file,omitempty"`
	ServerName     string `koanf:"server_name" yaml:"server_name,omitempty"`
	VerifyPeer     bool   `koanf:"verify_peer" yaml:"verify_peer"`
	VerifyHostname bool   `koanf:"verify_hostname" yaml:"verify_hostname"`
}

// LoggingConfig selects the zap level and optional rotated log file
type LoggingConfig struct {
	Level      string `koanf:"level" yaml:"level"`
	File       string `koanf:"file" yaml:"file,omitempty"`
	MaxSizeMB  int    `koanf:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `koanf:"compress" yaml:"compress"`
}

// MetricsConfig controls the prometheus collector and its HTTP endpoint
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled" yaml:"enabled"`
	Namespace string `koanf:"namespace" yaml:"namespace"`
	Address   string `koanf:"address" yaml:"address"`
}

// Addr returns host:port.
func (c *ConnectionConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate validates the configuration
func (c *ClientConfig) Validate() error {
	if c.Connection.Host == "" {
		return fmt.Errorf("connection host cannot be empty")
	}

	if c.Connection.Port <= 0 || c.Connection.Port > 65535 {
		return fmt.Errorf("invalid connection port: %d", c.Connection.Port)
	}

	if c.Connection.FrameMax != 0 && c.Connection.FrameMax < 4096 {
		return fmt.Errorf("frame max must be 0 or at least 4096: %d", c.Connection.FrameMax)
	}

	if c.Connection.Heartbeat < 0 {
		return fmt.Errorf("heartbeat cannot be negative: %v", c.Connection.Heartbeat)
	}

	if c.Connection.DialTimeout <= 0 {
		return fmt.Errorf("dial timeout must be positive: %v", c.Connection.DialTimeout)
	}

	switch c.Connection.Mechanism {
	case MechanismPlain:
	case MechanismExternal:
		if c.Connection.Identity == "" {
			return fmt.Errorf("identity required for %s authentication", MechanismExternal)
		}
	default:
		return fmt.Errorf("unsupported SASL mechanism: %s", c.Connection.Mechanism)
	}

	if c.TLS.Enabled {
		if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
			return fmt.Errorf("TLS cert and key files must be set together")
		}

		for _, path := range []string{c.TLS.CertFile, c.TLS.KeyFile, c.TLS.CAFile} {
			if path == "" {
				continue
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return fmt.Errorf("TLS file does not exist: %s", path)
			}
		}
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("metrics namespace cannot be empty when metrics are enabled")
	}

	return nil
}

// Load reads a YAML file on top of the defaults, then applies AMQP_*
// environment overrides. An empty path loads defaults plus environment.
//
// Environment keys name the section first: AMQP_CONNECTION_FRAME_MAX sets
// connection.frame_max.
func Load(path string) (*ClientConfig, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil, fmt.Errorf("unsupported configuration format: %s (only YAML supported)", ext)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key, value
	}
	return section + "." + rest, value
}

// Save saves configuration to a YAML file
func (c *ClientConfig) Save(destination string) error {
	dir := filepath.Dir(destination)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}

	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	if err := os.WriteFile(destination, data, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	return nil
}
