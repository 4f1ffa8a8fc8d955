package discovery

import (
	"context"
)

// Discovery locates the other nodes of a distributed process runtime that
// are reachable over the network, without relying on a fixed peer list.
// It is the backend-facing half of the discovery pair; Provider is the
// lifecycle-facing half that wraps it for a running Node.
type Discovery interface {
	// ID returns a name identifying this discovery backend instance.
	ID() string
	// Start begins watching for peer nodes.
	Start(ctx context.Context) error
	// Nodes returns the peer nodes known at the time of the call.
	Nodes(ctx context.Context) ([]*Node, error)
	// Stop releases any resources Start acquired.
	Stop() error
}
