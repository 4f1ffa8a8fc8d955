package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeAddresses(t *testing.T) {
	n := &Node{
		Host:          "127.0.0.1",
		PeersPort:     7000,
		DiscoveryPort: 9000,
	}
	require.Equal(t, "127.0.0.1:7000", n.PeersAddress())
	require.Equal(t, "127.0.0.1:9000", n.DiscoveryAddress())
}

func TestNodeAddressesIPv6(t *testing.T) {
	n := &Node{
		Host:          "::1",
		PeersPort:     7001,
		DiscoveryPort: 9100,
	}
	require.Equal(t, "[::1]:7001", n.PeersAddress())
	require.Equal(t, "[::1]:9100", n.DiscoveryAddress())
}

func TestNodeString(t *testing.T) {
	n := &Node{
		Name:          "node-a",
		Host:          "10.0.0.1",
		DiscoveryPort: 7946,
		PeersPort:     8500,
		RemotingPort:  8080,
	}
	require.Equal(t, "[name=node-a host=10.0.0.1 gossip=7946  peers=8500 remoting=8080]", n.String())
}

func TestNodeMetaRoundTrip(t *testing.T) {
	n := &Node{Name: "node-b", Meta: Meta{"zone": "us-east-1"}}
	zone, err := n.Meta.GetString("zone")
	require.NoError(t, err)
	require.Equal(t, "us-east-1", zone)
}
