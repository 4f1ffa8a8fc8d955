package discovery

import (
	"fmt"
	"net"
	"strconv"
)

// Node represents a discovered peer: the ports it listens on for peer
// discovery traffic, remote spawn/control traffic, and wire transport
// traffic are tracked separately since a node may expose them on
// different interfaces.
type Node struct {
	// Name specifies the discovered node's Name
	Name string
	// Host specifies the discovered node's Host
	Host string
	// DiscoveryPort is the port the node's discovery provider listens on.
	DiscoveryPort int
	// PeersPort is the port the node's peer-to-peer control traffic uses.
	PeersPort int
	// RemotingPort is the port the node's wire transport listens on.
	RemotingPort int
	// StartTime is the node's start time expressed as UNIX milliseconds.
	StartTime int64
	// Meta carries provider-specific annotations about the node (region,
	// zone, build version, ...) that don't affect routing but are useful
	// for operators and discovery-aware tooling.
	Meta Meta
}

// DiscoveryAddress returns the host:port pair the node's discovery
// provider listens on.
func (n *Node) DiscoveryAddress() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.DiscoveryPort))
}

// PeersAddress returns the host:port pair the node's peer control
// channel listens on.
func (n *Node) PeersAddress() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.PeersPort))
}

// String renders the node in a compact log-friendly form.
func (n *Node) String() string {
	return fmt.Sprintf("[name=%s host=%s gossip=%d  peers=%d remoting=%d]",
		n.Name, n.Host, n.DiscoveryPort, n.PeersPort, n.RemotingPort)
}
