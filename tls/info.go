// Package tls assembles the client/server tls.Config pair a Node's
// transport applies to dialed and accepted connections.
package tls

import (
	"crypto/tls"
	"crypto/x509"
)

// Info encapsulates the TLS configuration for both client and server sides
// of a connection between two nodes. Both configs should trust the same
// root CA so that, under mutual TLS, each node can verify the other's
// node certificate during the handshake.
type Info struct {
	// ClientConfig is applied when this node dials a peer.
	ClientConfig *tls.Config
	// ServerConfig is applied when this node accepts a peer's connection.
	ServerConfig *tls.Config
}

// MutualTLS builds an Info whose ClientConfig and ServerConfig both require
// and verify the peer's certificate against rootCA, using cert as this
// node's own identity. Use this when every node in the cluster should
// authenticate every other node on connect, not just encrypt the link.
func MutualTLS(rootCA *x509.CertPool, cert *tls.Certificate) *Info {
	curves := []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256}
	return &Info{
		ClientConfig: &tls.Config{
			RootCAs:          rootCA,
			Certificates:     []tls.Certificate{*cert},
			MinVersion:       tls.VersionTLS13,
			CurvePreferences: curves,
		},
		ServerConfig: &tls.Config{
			ClientCAs:        rootCA,
			Certificates:     []tls.Certificate{*cert},
			ClientAuth:       tls.RequireAndVerifyClientCert,
			MinVersion:       tls.VersionTLS13,
			CurvePreferences: curves,
		},
	}
}

// MutualTLSFromPEM is MutualTLS taking the root CA and node keypair as PEM
// blocks, for nodes that load their certificates from configuration rather
// than constructing a *x509.CertPool and *tls.Certificate themselves.
func MutualTLSFromPEM(rootCAPEM, keyPEM, certPEM []byte) (*Info, error) {
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(rootCAPEM)
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return MutualTLS(pool, &pair), nil
}
