package node

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/wyrefab/distproc/closure"
	"github.com/wyrefab/distproc/config"
	"github.com/wyrefab/distproc/deadletter"
	"github.com/wyrefab/distproc/discovery"
	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/eventstream"
	"github.com/wyrefab/distproc/id"
	"github.com/wyrefab/distproc/log"
	"github.com/wyrefab/distproc/telemetry"
	"github.com/wyrefab/distproc/transport"
)

// LifecycleTopic is the eventstream topic Node broadcasts ProcessDied,
// connection-up and connection-down events on.
const LifecycleTopic = "node.lifecycle"

// DiscoveryTopic is the eventstream topic Node republishes discovery.Event
// values on (NodeAdded/NodeRemoved) while a Discovery provider is
// configured and the node is started.
const DiscoveryTopic = "node.discovery"

// discoveryPollInterval is how often the discovery watcher re-polls the
// configured provider for its current peer list.
const discoveryPollInterval = 5 * time.Second

// ConnectionUp and ConnectionDown are published on LifecycleTopic when a
// peer connection is established or torn down.
type ConnectionUp struct{ Peer id.NodeID }
type ConnectionDown struct {
	Peer   id.NodeID
	Reason error
}

// ProcessDiedEvent is published on LifecycleTopic whenever a local process
// terminates, regardless of whether anyone linked or monitored it.
type ProcessDiedEvent struct {
	PID    id.ProcessID
	Reason errors.DeathReason
}

type connState struct {
	mu     sync.Mutex
	conn   transport.Connection
	failed bool
}

// Node is the per-node runtime: it owns the local NodeID, the Transport
// endpoint, the process registry, the outbound connection map, the
// RemoteTable and the single serialized Node Controller loop that
// dispatches every inbound frame and local control signal.
type Node struct {
	id        id.NodeID
	cfg       *config.Config
	transport transport.Transport
	table     *closure.RemoteTable
	events    eventstream.Bus
	deadLtrs  *deadletter.Stream

	nextIndex atomic.Uint64

	mu        sync.Mutex
	processes map[uint64]*LocalProcess
	conns     map[id.NodeID]*connState

	inbox  chan ncEvent
	cancel context.CancelFunc
	done   chan struct{}

	discoveryWatcher *discovery.Watcher
}

// New builds a Node bound to name/bindAddr. Call Start to begin accepting
// connections and running the Node Controller loop.
func New(name, bindAddr string, opts ...config.Option) (*Node, error) {
	cfg, err := config.New(name, bindAddr, opts...)
	if err != nil {
		return nil, err
	}

	host, portStr, err := net.SplitHostPort(bindAddr)
	if err != nil {
		return nil, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	table := closure.NewRemoteTable()
	registerBuiltins(table)

	if zapLogger, ok := cfg.Logger.(*log.Zap); ok {
		cfg.Logger = zapLogger.Named(name)
	}

	n := &Node{
		id:        id.NewNodeID(name, host, port),
		cfg:       cfg,
		transport: newTransport(cfg),
		table:     table,
		events:    eventstream.New(),
		deadLtrs:  deadletter.NewStream(deadletter.WithLogger(cfg.Logger)),
		processes: make(map[uint64]*LocalProcess),
		conns:     make(map[id.NodeID]*connState),
		inbox:     make(chan ncEvent, 256),
		done:      make(chan struct{}),
	}
	return n, nil
}

func (n *Node) logger() log.Logger { return n.cfg.Logger }

// metrics returns this node's NodeMetrics, or nil if no Telemetry was
// configured. Call sites must tolerate a nil return.
func (n *Node) metrics() *telemetry.NodeMetrics {
	if n.cfg.Telemetry == nil {
		return nil
	}
	return n.cfg.Telemetry.Metrics
}

// ID returns this node's identifier.
func (n *Node) ID() id.NodeID { return n.id }

// RemoteTable exposes the node's closure registry so application code can
// register its own labels before Start.
func (n *Node) RemoteTable() *closure.RemoteTable { return n.table }

// Events returns the node-wide lifecycle event stream.
func (n *Node) Events() eventstream.Bus { return n.events }

// DeadLetters returns the node-local dead-letter stream.
func (n *Node) DeadLetters() *deadletter.Stream { return n.deadLtrs }

// Start begins accepting inbound connections and runs the Node Controller
// loop until ctx is canceled or Stop is called.
func (n *Node) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	inbound, err := n.transport.Listen(ctx, n.id.HostPort())
	if err != nil {
		cancel()
		return err
	}

	go n.acceptLoop(ctx, inbound)
	go n.controllerLoop(ctx)

	if n.cfg.Discovery != nil {
		if err := n.cfg.Discovery.Initialize(); err != nil {
			n.logger().Warnf("discovery initialize failed: %v", err)
		} else if err := n.cfg.Discovery.Register(); err != nil {
			n.logger().Warnf("discovery register failed: %v", err)
		} else {
			sd := discovery.NewServiceDiscovery(n.cfg.Discovery, discovery.NewConfig())
			n.discoveryWatcher = discovery.NewWatcher(sd, discoveryPollInterval, n.logger())
			n.discoveryWatcher.Start(ctx)
			go n.relayDiscoveryEvents()
		}
	}

	return nil
}

// relayDiscoveryEvents republishes every discovery.Event the node's
// watcher emits onto DiscoveryTopic until the watcher's event channel is
// closed (on Stop).
func (n *Node) relayDiscoveryEvents() {
	for ev := range n.discoveryWatcher.Events() {
		n.events.Publish(DiscoveryTopic, ev)
	}
}

// Stop closes the listener and stops the Node Controller loop.
func (n *Node) Stop() error {
	var errs error
	if n.discoveryWatcher != nil {
		n.discoveryWatcher.Stop()
	}
	if n.cfg.Discovery != nil {
		if err := n.cfg.Discovery.Deregister(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if n.cancel != nil {
		n.cancel()
	}
	if err := n.transport.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	n.mu.Lock()
	for _, c := range n.conns {
		c.mu.Lock()
		if c.conn != nil {
			errs = multierr.Append(errs, c.conn.Close())
		}
		c.mu.Unlock()
	}
	n.mu.Unlock()
	<-n.done
	n.events.Shutdown()
	return errs
}

// Spawn starts behavior as a new process directly on this node, without
// going through the closure/RemoteTable machinery spawnAsync needs for
// remote targets. This is how a node's first ("main") process is usually
// started.
func (n *Node) Spawn(behavior Behavior) *LocalProcess {
	pid := id.NewProcessID(n.id, n.nextIndex.Inc())
	lp := newLocalProcess(pid, n)

	n.mu.Lock()
	n.processes[pid.Index()] = lp
	n.mu.Unlock()

	if m := n.metrics(); m != nil {
		m.ProcessesStarted.Add(context.Background(), 1)
	}

	go n.run(lp, behavior)
	return lp
}

func (n *Node) run(lp *LocalProcess, behavior Behavior) {
	reason := errors.Normal()
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(terminateSignal); ok {
				reason = errors.Exception("terminated")
			} else if err, ok := r.(error); ok {
				reason = errors.Exception(errors.NewPanicError(err).Error())
			} else {
				reason = errors.Exception(errors.NewPanicError(fmt.Errorf("%v", r)).Error())
			}
		}
		n.processDied(lp.pid, reason)
	}()
	behavior(lp)
}

func (n *Node) lookupLocal(idx uint64) (*LocalProcess, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	lp, ok := n.processes[idx]
	return lp, ok
}

func newTransport(cfg *config.Config) transport.Transport {
	var opts []transport.TCPOption
	if cfg.TLS != nil {
		opts = append(opts, transport.WithTLS(cfg.TLS))
	}
	switch cfg.Compression {
	case config.CompressionZstd:
		opts = append(opts, transport.WithCompression(transport.CompressionZstd))
	case config.CompressionBrotli:
		opts = append(opts, transport.WithCompression(transport.CompressionBrotli))
	}
	return transport.NewTCPTransport(opts...)
}
