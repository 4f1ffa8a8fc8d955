/*
 * MIT License
 *
 * Copyright (c) 2022-2024  Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package static

import (
	"context"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/wyrefab/distproc/discovery"
	"github.com/wyrefab/distproc/log"
)

// Discovery represents the static discovery provider.
// With static discovery the list of Nodes is known ahead of time: it is
// not elastic, and the node set cannot be manipulated at runtime. This
// provider is meant for environments (docker-compose, static clusters)
// where the peer set is fixed.
type Discovery struct {
	mu sync.Mutex

	// states whether the actor system has started or not
	isInitialized *atomic.Bool
	logger        log.Logger

	nodes []*discovery.Node
}

// enforce compilation error
var _ discovery.Discovery = &Discovery{}

// NewDiscovery creates an instance of Discovery
func NewDiscovery(nodes []*discovery.Node, logger log.Logger) *Discovery {
	return &Discovery{
		mu:            sync.Mutex{},
		isInitialized: atomic.NewBool(false),
		logger:        logger,
		nodes:         nodes,
	}
}

// NewDiscoveryFromConfig validates cfg and builds a Discovery from its
// Hosts list. Each host's discovery, peer and remoting ports are derived
// from the single gossip port in cfg by convention (port, port+1, port+2),
// since Config only carries one port per host.
func NewDiscoveryFromConfig(cfg Config, logger log.Logger) (*Discovery, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid static discovery configuration")
	}

	now := time.Now().UnixMilli()
	nodes := make([]*discovery.Node, 0, len(cfg.Hosts))
	for _, hostPort := range cfg.Hosts {
		host, portStr, err := net.SplitHostPort(hostPort)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid host %q", hostPort)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid port in host %q", hostPort)
		}
		nodes = append(nodes, &discovery.Node{
			Name:          hostPort,
			Host:          host,
			DiscoveryPort: port,
			PeersPort:     port + 1,
			RemotingPort:  port + 2,
			StartTime:     now,
		})
	}
	return NewDiscovery(nodes, logger), nil
}

// ID returns the discovery provider id
func (d *Discovery) ID() string {
	return "static"
}

// Start the discovery engine
func (d *Discovery) Start(_ context.Context) error {
	// check whether the list of nodes is not empty
	if len(d.nodes) == 0 {
		return errors.New("no nodes are set")
	}

	// set initialized
	d.isInitialized.Store(true)
	return nil
}

// Nodes returns the list of up and running Nodes at a given time
func (d *Discovery) Nodes(_ context.Context) ([]*discovery.Node, error) {
	// first check whether the actor system has started
	if !d.isInitialized.Load() {
		return nil, errors.New("static discovery engine not initialized")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nodes, nil
}

// EarliestNode returns the earliest node. This is based upon the node timestamp
func (d *Discovery) EarliestNode(ctx context.Context) (*discovery.Node, error) {
	// fetch the list of Nodes
	nodes, err := d.Nodes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get the earliest node")
	}

	if len(nodes) == 0 {
		return nil, errors.New("no nodes are found")
	}

	// let us sort the nodes by their start time
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].StartTime < nodes[j].StartTime
	})
	return nodes[0], nil
}

// Stop shutdown the discovery engine
func (d *Discovery) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isInitialized.Load() {
		return errors.New("static discovery engine not initialized")
	}
	d.isInitialized.Store(false)
	return nil
}
