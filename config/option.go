package config

import (
	"crypto/tls"
	"crypto/x509"
	"time"

	"github.com/wyrefab/distproc/discovery"
	"github.com/wyrefab/distproc/log"
	"github.com/wyrefab/distproc/telemetry"
	tlsinfo "github.com/wyrefab/distproc/tls"
)

// Option configures a Config at construction time.
type Option interface {
	Apply(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) Apply(c *Config) { f(c) }

// WithLogger sets the node's logger.
func WithLogger(logger log.Logger) Option {
	return optionFunc(func(c *Config) { c.Logger = logger })
}

// WithDialTimeout bounds how long opening an outbound connection may take.
func WithDialTimeout(d time.Duration) Option {
	return optionFunc(func(c *Config) { c.DialTimeout = d })
}

// WithTLS enables TLS on the node's transport.
func WithTLS(info *tlsinfo.Info) Option {
	return optionFunc(func(c *Config) { c.TLS = info })
}

// WithMTLS enables mutual TLS on the node's transport, deriving both the
// client and server tls.Config from a single root CA pool and node
// certificate so peers authenticate each other on every connection.
func WithMTLS(rootCA *x509.CertPool, cert *tls.Certificate) Option {
	return optionFunc(func(c *Config) { c.TLS = tlsinfo.MutualTLS(rootCA, cert) })
}

// WithCompression selects the frame compression codec.
func WithCompression(kind Compression) Option {
	return optionFunc(func(c *Config) { c.Compression = kind })
}

// WithDiscovery attaches a peer discovery provider.
func WithDiscovery(provider discovery.Provider) Option {
	return optionFunc(func(c *Config) { c.Discovery = provider })
}

// WithTelemetry attaches a Telemetry instance so the node reports process
// lifecycle and connection metrics to it.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return optionFunc(func(c *Config) { c.Telemetry = t })
}
