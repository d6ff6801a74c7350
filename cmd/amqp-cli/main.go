package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/maxpert/amqp-go-client/client"
	"github.com/maxpert/amqp-go-client/config"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
	"github.com/maxpert/amqp-go-client/metrics"
	"github.com/maxpert/amqp-go-client/transport"
)

const usage = `Usage: amqp-cli [global flags] <command> [command flags]

Commands:
  publish   publish a message and wait for the broker confirm
  get       fetch one message with basic.get
  consume   print deliveries until interrupted
  declare   declare an exchange or a queue, optionally binding them
  perf      publish and consume concurrently over several connections

Global flags:
`

// app carries what every command needs.
type app struct {
	cfg     *config.ClientConfig
	logger  *zap.Logger
	metrics *metrics.Collector
	retries uint64
}

func main() {
	var (
		configFile     = flag.String("config", "", "Configuration file path (YAML)")
		uri            = flag.String("uri", "", "Broker URI, amqp[s]://user:pass@host:port/vhost (overrides -config)")
		logLevel       = flag.String("log-level", "", "Log level: debug, info, warn, error")
		enableMetrics  = flag.Bool("metrics", false, "Serve Prometheus metrics while the command runs")
		retries        = flag.Uint64("retries", 5, "Connection attempts before giving up")
		showVersion    = flag.Bool("version", false, "Show version and exit")
		generateConfig = flag.String("generate-config", "", "Write the default config file and exit (e.g., client.yaml)")
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("amqp-cli version %s\n", transport.Version)
		return
	}

	if *generateConfig != "" {
		if err := config.DefaultConfig().Save(*generateConfig); err != nil {
			fatalf("Failed to generate config file: %v", err)
		}
		fmt.Printf("Generated default configuration: %s\n", *generateConfig)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configFile, *uri)
	if err != nil {
		fatalf("Failed to load configuration: %v", err)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *enableMetrics {
		cfg.Metrics.Enabled = true
	}

	logger, err := client.NewZapLogger(cfg.Logging)
	if err != nil {
		fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	a := &app{cfg: cfg, logger: logger, retries: *retries}
	if cfg.Metrics.Enabled {
		a.metrics = metrics.Shared(cfg.Metrics.Namespace)
		srv := metrics.NewServer(cfg.Metrics.Address)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Stop(ctx)
		}()
		logger.Info("Serving metrics", zap.String("addr", srv.Addr()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		logger.Error("Command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "publish":
		return a.publish(ctx, args)
	case "get":
		return a.get(ctx, args)
	case "consume":
		return a.consume(ctx, args)
	case "declare":
		return a.declare(ctx, args)
	case "perf":
		return a.perf(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func loadConfig(path, uri string) (*config.ClientConfig, error) {
	if uri == "" {
		return config.Load(path)
	}
	base, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg, err := client.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	// the URI only describes where to connect
	cfg.Logging = base.Logging
	cfg.Metrics = base.Metrics
	cfg.Connection.FrameMax = base.Connection.FrameMax
	cfg.Connection.Heartbeat = base.Connection.Heartbeat
	return cfg, nil
}

// connect opens a connection, retrying with exponential backoff. Broker
// refusals are not retried.
func (a *app) connect(ctx context.Context) (*client.Connection, error) {
	var conn *client.Connection
	op := func() error {
		c, err := client.OpenContext(ctx, a.cfg, client.WithLogger(a.logger), client.WithMetrics(a.metrics))
		if err != nil {
			var amqpErr *amqperrors.AMQPError
			if errors.As(err, &amqpErr) {
				return backoff.Permanent(err)
			}
			a.logger.Warn("Connection attempt failed", zap.String("addr", a.cfg.Connection.Addr()), zap.Error(err))
			return err
		}
		conn = c
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), a.retries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return conn, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
