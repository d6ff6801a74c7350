package config

import (
	"time"
)

// ConfigBuilder provides a fluent API for building configuration
type ConfigBuilder struct {
	config *ClientConfig
}

// NewConfigBuilder creates a new configuration builder with defaults
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: DefaultConfig(),
	}
}

// FromConfig creates a builder from an existing configuration
func FromConfig(config *ClientConfig) *ConfigBuilder {
	builder := NewConfigBuilder()
	*builder.config = *config
	return builder
}

// Connection Configuration

// WithHost sets the broker host
func (b *ConfigBuilder) WithHost(host string) *ConfigBuilder {
	b.config.Connection.Host = host
	return b
}

// WithPort sets the broker port
func (b *ConfigBuilder) WithPort(port int) *ConfigBuilder {
	b.config.Connection.Port = port
	return b
}

// WithVHost sets the virtual host
func (b *ConfigBuilder) WithVHost(vhost string) *ConfigBuilder {
	b.config.Connection.VHost = vhost
	return b
}

// WithPlainAuth configures PLAIN authentication
func (b *ConfigBuilder) WithPlainAuth(username, password string) *ConfigBuilder {
	b.config.Connection.Mechanism = MechanismPlain
	b.config.Connection.Username = username
	b.config.Connection.Password = password
	return b
}

// WithExternalAuth configures EXTERNAL authentication with the given identity
func (b *ConfigBuilder) WithExternalAuth(identity string) *ConfigBuilder {
	b.config.Connection.Mechanism = MechanismExternal
	b.config.Connection.Identity = identity
	return b
}

// WithFrameMax sets the largest frame the client asks for
func (b *ConfigBuilder) WithFrameMax(frameMax uint32) *ConfigBuilder {
	b.config.Connection.FrameMax = frameMax
	return b
}

// WithChannelMax caps the number of channels; 0 accepts the broker's limit
func (b *ConfigBuilder) WithChannelMax(channelMax uint16) *ConfigBuilder {
	b.config.Connection.ChannelMax = channelMax
	return b
}

// WithHeartbeat sets the requested heartbeat interval
func (b *ConfigBuilder) WithHeartbeat(interval time.Duration) *ConfigBuilder {
	b.config.Connection.Heartbeat = interval
	return b
}

// WithDialTimeout sets the TCP connect and handshake timeout
func (b *ConfigBuilder) WithDialTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.Connection.DialTimeout = timeout
	return b
}

// TLS Configuration

// WithTLS enables TLS with optional client certificate and CA bundle
func (b *ConfigBuilder) WithTLS(certFile, keyFile, caFile string) *ConfigBuilder {
	b.config.TLS.Enabled = true
	b.config.TLS.CertFile = certFile
	b.config.TLS.KeyFile = keyFile
	b.config.TLS.CAFile = caFile
	return b
}

// WithTLSVerification toggles peer and hostname verification
func (b *ConfigBuilder) WithTLSVerification(verifyPeer, verifyHostname bool) *ConfigBuilder {
	b.config.TLS.VerifyPeer = verifyPeer
	b.config.TLS.VerifyHostname = verifyHostname
	return b
}

// Logging Configuration

// WithLogLevel sets the log level
func (b *ConfigBuilder) WithLogLevel(level string) *ConfigBuilder {
	b.config.Logging.Level = level
	return b
}

// WithLogFile sends logs to a rotated file
func (b *ConfigBuilder) WithLogFile(path string, maxSizeMB, maxBackups int) *ConfigBuilder {
	b.config.Logging.File = path
	b.config.Logging.MaxSizeMB = maxSizeMB
	b.config.Logging.MaxBackups = maxBackups
	return b
}

// Metrics Configuration

// WithMetrics enables the prometheus collector
func (b *ConfigBuilder) WithMetrics(namespace, address string) *ConfigBuilder {
	b.config.Metrics.Enabled = true
	b.config.Metrics.Namespace = namespace
	b.config.Metrics.Address = address
	return b
}

// Build validates and returns the configuration
func (b *ConfigBuilder) Build() (*ClientConfig, error) {
	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	return b.config, nil
}

// BuildUnsafe returns the configuration without validation
func (b *ConfigBuilder) BuildUnsafe() *ClientConfig {
	return b.config
}
