// Package config holds the functional-options configuration for a Node:
// its name, bind address, logger, dial timeout, transport TLS and
// compression, and an optional peer discovery provider.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/wyrefab/distproc/discovery"
	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/log"
	"github.com/wyrefab/distproc/telemetry"
	tlsinfo "github.com/wyrefab/distproc/tls"
)

// Compression selects the frame compression codec the node's transport
// applies. It mirrors transport.CompressionKind without importing package
// transport, keeping config dependency-free of the network layer.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionBrotli
)

// Config represents a Node's configuration.
type Config struct {
	// Name identifies this node within a cluster.
	Name string
	// NodeHostAndPort is the bind address this node's transport listens
	// on, e.g. "127.0.0.1:8888".
	NodeHostAndPort string
	// Logger is used by Node, LocalProcess and the transport.
	Logger log.Logger
	// DialTimeout bounds how long opening an outbound connection may take.
	DialTimeout time.Duration
	// TLS, when non-nil, is applied to both dialed and accepted
	// connections.
	TLS *tlsinfo.Info
	// Compression selects the frame codec applied on top of framing.
	Compression Compression
	// Discovery, when non-nil, resolves peer addresses so the node does
	// not need them hardcoded.
	Discovery discovery.Provider
	// Telemetry, when non-nil, receives process lifecycle, mailbox and
	// connection metrics from the node.
	Telemetry *telemetry.Telemetry
}

// New creates a Config, validating name and the bind address.
func New(name, nodeHostAndPort string, options ...Option) (*Config, error) {
	if name == "" {
		return nil, errors.ErrNameRequired
	}
	if err := validateHostAndPort(nodeHostAndPort); err != nil {
		return nil, err
	}

	cfg := &Config{
		Name:            name,
		NodeHostAndPort: nodeHostAndPort,
		Logger:          log.DefaultLogger,
		DialTimeout:     5 * time.Second,
		Compression:     CompressionNone,
	}
	for _, opt := range options {
		opt.Apply(cfg)
	}

	return cfg, nil
}

func validateHostAndPort(hostAndPort string) error {
	if hostAndPort == "" {
		return errors.ErrInvalidHost
	}
	_, port, err := net.SplitHostPort(hostAndPort)
	if err != nil {
		return err
	}
	if _, err := strconv.Atoi(port); err != nil {
		return err
	}
	return nil
}
