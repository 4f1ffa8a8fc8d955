/*
 * MIT License
 *
 * Copyright (c) 2022-2023 Tochemey
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

package discovery

// Provider is the lifecycle a Node drives a discovery backend through:
// configure it, announce this node to it, ask it for peers, and tear it
// down again on shutdown. A backend (nats, static, ...) implements this
// once and a Node never needs to know which one it's talking to.
type Provider interface {
	// ID returns a name identifying this provider instance.
	ID() string
	// Initialize prepares the provider's internal state and clients.
	Initialize() error
	// Register announces this node to the discovery backend.
	Register() error
	// Deregister withdraws this node's announcement.
	Deregister() error
	// SetConfig applies backend-specific configuration before Initialize.
	SetConfig(config Config) error
	// DiscoverPeers returns the addresses of currently known peer nodes.
	DiscoverPeers() ([]string, error)
}
