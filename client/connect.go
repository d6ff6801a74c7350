package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/config"
	"github.com/maxpert/amqp-go-client/metrics"
	"github.com/maxpert/amqp-go-client/transport"
)

// Option customizes a Connection.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records connection activity on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = collector
	}
}

func collectOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open connects using cfg.
func Open(cfg *config.ClientConfig, opts ...Option) (*Connection, error) {
	return OpenContext(context.Background(), cfg, opts...)
}

// OpenContext connects using cfg; ctx bounds the TCP and TLS setup.
func OpenContext(ctx context.Context, cfg *config.ClientConfig, opts ...Option) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		// explicit options still win
		opts = append([]Option{WithMetrics(metrics.Shared(cfg.Metrics.Namespace))}, opts...)
	}
	o := collectOptions(opts)

	t, err := transport.Dial(ctx, cfg, o.logger)
	if err != nil {
		return nil, err
	}
	o.logger.Info("Connected to AMQP broker",
		zap.String("addr", cfg.Connection.Addr()),
		zap.String("vhost", cfg.Connection.VHost),
		zap.Bool("tls", cfg.TLS.Enabled))
	return NewConnection(t, opts...), nil
}

// Dial connects with PLAIN credentials.
func Dial(host string, port int, username, password, vhost string, frameMax uint32, opts ...Option) (*Connection, error) {
	cfg, err := config.NewConfigBuilder().
		WithHost(host).
		WithPort(port).
		WithVHost(vhost).
		WithPlainAuth(username, password).
		WithFrameMax(frameMax).
		Build()
	if err != nil {
		return nil, err
	}
	return Open(cfg, opts...)
}

// DialSASLExternal connects authenticating as identity with the EXTERNAL
// mechanism, typically together with a TLS client certificate.
func DialSASLExternal(host string, port int, identity, vhost string, frameMax uint32, opts ...Option) (*Connection, error) {
	cfg, err := config.NewConfigBuilder().
		WithHost(host).
		WithPort(port).
		WithVHost(vhost).
		WithExternalAuth(identity).
		WithFrameMax(frameMax).
		Build()
	if err != nil {
		return nil, err
	}
	return Open(cfg, opts...)
}

// TLSOptions are the certificate settings of DialTLS.
type TLSOptions struct {
	CertFile string
	KeyFile  string
	CAFile   string
	// VerifyPeer checks the broker certificate chain against CAFile.
	VerifyPeer bool
	// VerifyHostname additionally matches the certificate against host.
	VerifyHostname bool
}

// DialTLS connects over TLS with PLAIN credentials.
func DialTLS(host string, port int, username, password, vhost string, frameMax uint32, tlsOpts TLSOptions, opts ...Option) (*Connection, error) {
	cfg, err := config.NewConfigBuilder().
		WithHost(host).
		WithPort(port).
		WithVHost(vhost).
		WithPlainAuth(username, password).
		WithFrameMax(frameMax).
		WithTLS(tlsOpts.CertFile, tlsOpts.KeyFile, tlsOpts.CAFile).
		WithTLSVerification(tlsOpts.VerifyPeer, tlsOpts.VerifyHostname).
		Build()
	if err != nil {
		return nil, err
	}
	return Open(cfg, opts...)
}

// DialURI connects to amqp[s]://[user:pass@]host[:port][/vhost].
func DialURI(uri string, frameMax uint32, opts ...Option) (*Connection, error) {
	cfg, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	cfg.Connection.FrameMax = frameMax
	return Open(cfg, opts...)
}
