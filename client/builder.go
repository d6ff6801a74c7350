package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/config"
	"github.com/maxpert/amqp-go-client/metrics"
	"github.com/maxpert/amqp-go-client/transport"
)

// ConnectionBuilder provides a fluent API for opening connections
type ConnectionBuilder struct {
	config    *config.ClientConfig
	logger    *zap.Logger
	metrics   *metrics.Collector
	transport transport.Transport
	err       error
}

// NewConnectionBuilder creates a builder with the default configuration
func NewConnectionBuilder() *ConnectionBuilder {
	return &ConnectionBuilder{config: config.DefaultConfig()}
}

// WithConfig sets the client configuration
func (b *ConnectionBuilder) WithConfig(cfg *config.ClientConfig) *ConnectionBuilder {
	b.config = cfg
	return b
}

// WithLogger sets the logger
func (b *ConnectionBuilder) WithLogger(logger *zap.Logger) *ConnectionBuilder {
	b.logger = logger
	return b
}

// WithZapLogger builds a logger from the configured logging section at the
// given level
func (b *ConnectionBuilder) WithZapLogger(level string) *ConnectionBuilder {
	cfg := b.config.Logging
	cfg.Level = level
	logger, err := NewZapLogger(cfg)
	if err != nil {
		b.err = fmt.Errorf("failed to create logger: %w", err)
		return b
	}
	b.logger = logger
	return b
}

// WithMetrics sets the metrics collector
func (b *ConnectionBuilder) WithMetrics(collector *metrics.Collector) *ConnectionBuilder {
	b.metrics = collector
	return b
}

// WithTransport uses an already negotiated transport instead of dialing
func (b *ConnectionBuilder) WithTransport(t transport.Transport) *ConnectionBuilder {
	b.transport = t
	return b
}

// Connect opens the connection
func (b *ConnectionBuilder) Connect() (*Connection, error) {
	return b.ConnectContext(context.Background())
}

// ConnectContext opens the connection; ctx bounds dialing
func (b *ConnectionBuilder) ConnectContext(ctx context.Context) (*Connection, error) {
	if b.err != nil {
		return nil, b.err
	}

	var opts []Option
	if b.logger != nil {
		opts = append(opts, WithLogger(b.logger))
	}
	if b.metrics != nil {
		opts = append(opts, WithMetrics(b.metrics))
	}

	if b.transport != nil {
		return NewConnection(b.transport, opts...), nil
	}
	if b.config == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	return OpenContext(ctx, b.config, opts...)
}
