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

	"github.com/wyrefab/distproc/discovery"
)

// Provider adapts a fixed-host Discovery to discovery.Provider, the
// interface config.WithDiscovery and Node.Start actually drive. Discovery
// itself (Start/Nodes/Stop/EarliestNode) is kept in its own shape since it
// is independently useful to callers that just want a static peer list
// without going through the Provider lifecycle; Provider is the thin
// bridge that lets the same static host list be used as a Node's
// discovery backend.
type Provider struct {
	d    *Discovery
	self string
}

// NewProvider wraps d as a discovery.Provider. self is this node's own
// discovery address (host:port); it is excluded from DiscoverPeers results
// so a node never dials itself.
func NewProvider(d *Discovery, self string) *Provider {
	return &Provider{d: d, self: self}
}

// enforce compilation error
var _ discovery.Provider = (*Provider)(nil)

// ID returns the discovery provider id.
func (p *Provider) ID() string { return p.d.ID() }

// Initialize starts the underlying static Discovery.
func (p *Provider) Initialize() error { return p.d.Start(context.Background()) }

// Register is a no-op: a static host list has nothing to announce.
func (p *Provider) Register() error { return nil }

// Deregister stops the underlying static Discovery.
func (p *Provider) Deregister() error { return p.d.Stop() }

// SetConfig is a no-op: the static backend's host list is fixed at
// construction (NewDiscovery/NewDiscoveryFromConfig), not at runtime.
func (p *Provider) SetConfig(discovery.Config) error { return nil }

// DiscoverPeers returns every configured host's discovery address except
// this provider's own.
func (p *Provider) DiscoverPeers() ([]string, error) {
	nodes, err := p.d.Nodes(context.Background())
	if err != nil {
		return nil, err
	}
	peers := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if addr := n.DiscoveryAddress(); addr != p.self {
			peers = append(peers, addr)
		}
	}
	return peers, nil
}
