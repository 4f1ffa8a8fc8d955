package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"

	"github.com/wyrefab/distproc/internal/bufferpool"
	tlsinfo "github.com/wyrefab/distproc/tls"
)

// CompressionKind selects the frame compression codec a TCPTransport applies
// on top of length-prefixed framing. None skips compression entirely.
type CompressionKind uint8

const (
	CompressionNone CompressionKind = iota
	CompressionZstd
	CompressionBrotli
)

// TCPTransport is a length-prefixed, TLS-optional, compression-optional
// Transport over net.TCPConn, grounded on the pack's big-endian uint32
// frame header convention.
type TCPTransport struct {
	tlsInfo     *tlsinfo.Info
	compression CompressionKind

	mu       sync.Mutex
	listener net.Listener
}

// TCPOption configures a TCPTransport at construction time.
type TCPOption func(*TCPTransport)

// WithTLS enables TLS on dialed and accepted connections using info's
// client and server configurations respectively.
func WithTLS(info *tlsinfo.Info) TCPOption {
	return func(t *TCPTransport) { t.tlsInfo = info }
}

// WithCompression enables frame payload compression with the given codec.
func WithCompression(kind CompressionKind) TCPOption {
	return func(t *TCPTransport) { t.compression = kind }
}

// NewTCPTransport builds a TCPTransport with the given options applied.
func NewTCPTransport(opts ...TCPOption) *TCPTransport {
	t := &TCPTransport{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TCPTransport) Open(ctx context.Context, addr string) (Connection, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &DialError{Addr: addr, Err: err}
	}
	if t.tlsInfo != nil && t.tlsInfo.ClientConfig != nil {
		conn = tls.Client(conn, t.tlsInfo.ClientConfig)
	}
	return newTCPConnection(conn, t.compression)
}

func (t *TCPTransport) Listen(ctx context.Context, addr string) (<-chan Inbound, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.listener = ln
	t.mu.Unlock()

	out := make(chan Inbound)
	go func() {
		defer close(out)
		for {
			raw, err := ln.Accept()
			if err != nil {
				return
			}
			conn := net.Conn(raw)
			if t.tlsInfo != nil && t.tlsInfo.ServerConfig != nil {
				conn = tls.Server(conn, t.tlsInfo.ServerConfig)
			}
			wrapped, err := newTCPConnection(conn, t.compression)
			if err != nil {
				_ = raw.Close()
				continue
			}
			select {
			case out <- Inbound{Conn: wrapped, From: raw.RemoteAddr().String()}:
			case <-ctx.Done():
				_ = wrapped.Close()
				return
			}
		}
	}()
	return out, nil
}

func (t *TCPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.listener == nil {
		return nil
	}
	err := t.listener.Close()
	t.listener = nil
	return err
}

// tcpConnection frames reads and writes over a net.Conn with a 4-byte
// big-endian length header, matching the rest of the pack's TCP client, and
// optionally compresses/decompresses the frame payload.
type tcpConnection struct {
	conn        net.Conn
	compression CompressionKind

	writeMu sync.Mutex
	readMu  sync.Mutex

	zEncoder *zstd.Encoder
	zDecoder *zstd.Decoder
}

func newTCPConnection(conn net.Conn, compression CompressionKind) (*tcpConnection, error) {
	c := &tcpConnection{conn: conn, compression: compression}
	if compression == CompressionZstd {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			enc.Close()
			return nil, err
		}
		c.zEncoder = enc
		c.zDecoder = dec
	}
	return c, nil
}

func (c *tcpConnection) compress(payload []byte) []byte {
	switch c.compression {
	case CompressionZstd:
		return c.zEncoder.EncodeAll(payload, nil)
	case CompressionBrotli:
		buf := bufferpool.Pool.Get()
		defer bufferpool.Pool.Put(buf)
		w := brotli.NewWriter(buf)
		_, _ = w.Write(payload)
		_ = w.Close()
		out := make([]byte, buf.Len())
		copy(out, buf.Bytes())
		return out
	default:
		return payload
	}
}

func (c *tcpConnection) decompress(payload []byte) ([]byte, error) {
	switch c.compression {
	case CompressionZstd:
		return c.zDecoder.DecodeAll(payload, nil)
	case CompressionBrotli:
		r := brotli.NewReader(bytes.NewReader(payload))
		return io.ReadAll(r)
	default:
		return payload, nil
	}
}

func (c *tcpConnection) Send(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	payload := c.compress(frame)
	if len(payload) > MaxFrameSize {
		return ErrFrameTooLarge
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := c.conn.Write(hdr[:]); err != nil {
		return translateNetErr(err)
	}
	if _, err := c.conn.Write(payload); err != nil {
		return translateNetErr(err)
	}
	return nil
}

func (c *tcpConnection) Recv() ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	var hdr [4]byte
	if _, err := io.ReadFull(c.conn, hdr[:]); err != nil {
		return nil, translateNetErr(err)
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return nil, translateNetErr(err)
	}
	return c.decompress(payload)
}

func (c *tcpConnection) RemoteAddress() string { return c.conn.RemoteAddr().String() }

func (c *tcpConnection) Close() error {
	if c.zEncoder != nil {
		c.zEncoder.Close()
	}
	if c.zDecoder != nil {
		c.zDecoder.Close()
	}
	return c.conn.Close()
}

func translateNetErr(err error) error {
	if err == io.EOF {
		return ErrConnectionClosed
	}
	if ne, ok := err.(net.Error); ok && !ne.Timeout() {
		return ErrConnectionClosed
	}
	return err
}
