/*
 * MIT License
 *
 * Copyright (c) 2022-2024 Tochemey
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

package nats

import (
	"time"

	"github.com/wyrefab/distproc/internal/validation"
)

// Config is what a Node passes this provider via Provider.SetConfig:
// which NATS server to rendezvous on, which subject nodes publish and
// listen on, and how this node identifies itself to peers that answer.
type Config struct {
	// NatsServer is the NATS endpoint, e.g. nats://host:port.
	NatsServer string
	// NatsSubject is the rendezvous subject peers publish and subscribe
	// requests on. Nodes running unrelated clusters must use distinct
	// subjects or they will discover each other.
	NatsSubject string
	// NodeName is this node's identifier, echoed back in discovery
	// replies so a responding peer can be told apart from its process.
	NodeName string
	// ApplicationName scopes discovery to nodes running the same
	// application; peers on a different ApplicationName are ignored.
	ApplicationName string
	// Timeout bounds how long DiscoverPeers waits for replies before
	// returning with whatever peers have responded so far.
	Timeout time.Duration
}

// Validate reports whether every required field of Config is set.
func (x Config) Validate() error {
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("NatsServer", x.NatsServer)).
		AddValidator(validation.NewEmptyStringValidator("NatsSubject", x.NatsSubject)).
		AddValidator(validation.NewEmptyStringValidator("ApplicationName", x.ApplicationName)).
		AddValidator(validation.NewEmptyStringValidator("NodeName", x.NodeName)).
		Validate()
}
