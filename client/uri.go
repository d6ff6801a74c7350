package client

import (
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/maxpert/amqp-go-client/config"
	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// ParseURI turns amqp[s]://[user:pass@]host[:port][/vhost] into a client
// configuration. amqps enables TLS with full verification. The certfile,
// keyfile, cacertfile, server_name_indication, auth_mechanism,
// connection_timeout and channel_max query parameters are honored.
func ParseURI(uri string) (*config.ClientConfig, error) {
	parsed, err := amqp.ParseURI(uri)
	if err != nil {
		return nil, &amqperrors.BadURIError{URI: uri, Cause: err}
	}

	cfg := config.DefaultConfig()
	cfg.Connection.Host = parsed.Host
	cfg.Connection.Port = parsed.Port
	cfg.Connection.VHost = parsed.Vhost
	cfg.Connection.Username = parsed.Username
	cfg.Connection.Password = parsed.Password

	for _, mechanism := range parsed.AuthMechanism {
		if strings.EqualFold(mechanism, config.MechanismExternal) {
			cfg.Connection.Mechanism = config.MechanismExternal
			cfg.Connection.Identity = parsed.Username
		}
	}

	if parsed.ConnectionTimeout > 0 {
		cfg.Connection.DialTimeout = time.Duration(parsed.ConnectionTimeout) * time.Millisecond
	}
	cfg.Connection.ChannelMax = parsed.ChannelMax

	if parsed.Scheme == "amqps" {
		cfg.TLS.Enabled = true
		cfg.TLS.CertFile = parsed.CertFile
		cfg.TLS.KeyFile = parsed.KeyFile
		cfg.TLS.CAFile = parsed.CACertFile
		cfg.TLS.ServerName = parsed.ServerName
	}
	return cfg, nil
}
