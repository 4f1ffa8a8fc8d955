package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/wyrefab/distproc/future"
	"github.com/wyrefab/distproc/log"
)

// pollTimeout bounds how long a single poll waits for the provider's
// DiscoverPeers to return. DiscoverPeers takes no context of its own (see
// discovery.Provider), so a provider whose backend has wedged would
// otherwise stall the watcher's run loop past ctx cancellation; wrapping
// the call in a future lets poll give up on it instead.
const pollTimeout = 10 * time.Second

// Watcher polls a ServiceDiscovery's provider on an interval and emits
// Event values as the peer set changes. It turns the raw address list a
// Provider.DiscoverPeers call returns into NodeAdded/NodeRemoved events a
// node can subscribe to in order to dial newly discovered peers and drop
// connections to peers that disappeared.
type Watcher struct {
	sd       *ServiceDiscovery
	interval time.Duration
	logger   log.Logger

	mu    sync.Mutex
	known map[string]*Node

	events chan Event
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a Watcher over sd, polling every interval (minimum
// one second) for the peer addresses sd's provider reports.
func NewWatcher(sd *ServiceDiscovery, interval time.Duration, logger log.Logger) *Watcher {
	if interval < time.Second {
		interval = time.Second
	}
	return &Watcher{
		sd:       sd,
		interval: interval,
		logger:   logger,
		known:    make(map[string]*Node),
		events:   make(chan Event, 32),
	}
}

// Events returns the channel Watcher publishes lifecycle events on. The
// channel is closed once Stop returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins polling in a background goroutine. Calling Start twice
// without an intervening Stop is a no-op.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop cancels polling and waits for the background goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll asks the provider for its current peer list. The call runs in its
// own future so a provider that hangs past pollTimeout (or past ctx's
// cancellation) can't wedge the watcher's run loop.
func (w *Watcher) poll(ctx context.Context) {
	f := future.New(func() (any, error) {
		return w.sd.Provider().DiscoverPeers()
	})
	ctx, cancel := context.WithTimeout(ctx, pollTimeout)
	defer cancel()
	result, err := f.Await(ctx)
	if err != nil {
		w.logger.Errorf("discovery watcher poll failed: %v", err)
		return
	}
	addrs, _ := result.([]string)

	seen := make(map[string]struct{}, len(addrs))
	for _, addr := range addrs {
		seen[addr] = struct{}{}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for addr := range seen {
		if _, ok := w.known[addr]; !ok {
			node := &Node{Name: addr, Host: addr, Meta: Meta{"discoveredVia": w.sd.Provider().ID()}}
			w.known[addr] = node
			w.emit(NodeAdded{Node: node})
		}
	}
	for addr, node := range w.known {
		if _, ok := seen[addr]; !ok {
			delete(w.known, addr)
			w.emit(NodeRemoved{Node: node})
		}
	}
}

// emit publishes ev, dropping it rather than blocking if a consumer has
// fallen behind and the buffered channel is full.
func (w *Watcher) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		w.logger.Warnf("discovery watcher event buffer full, dropping event")
	}
}
