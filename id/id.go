// Package id defines the identifier types that name every addressable
// entity in the runtime: nodes, processes, channels, monitors and spawn
// requests. None of these types carry behavior beyond equality, ordering
// and a stable textual form; every other package treats them as opaque
// values.
package id

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NodeID is the opaque, transport-endpoint address of a node. It is
// persistent across the node's lifetime: two NodeID values compare equal
// iff they name the same node.
type NodeID struct {
	name string
	host string
	port int
}

// NewNodeID builds a NodeID from a logical node name and its transport
// endpoint. The name is what appears in log lines and ProcessID strings;
// host/port is what the Transport dials.
func NewNodeID(name, host string, port int) NodeID {
	return NodeID{name: name, host: host, port: port}
}

func (n NodeID) Name() string { return n.name }
func (n NodeID) Host() string { return n.host }
func (n NodeID) Port() int    { return n.port }

// HostPort returns the "host:port" form suitable for dialing.
func (n NodeID) HostPort() string {
	return net.JoinHostPort(n.host, strconv.Itoa(n.port))
}

// Equal reports whether two NodeIDs name the same node.
func (n NodeID) Equal(o NodeID) bool {
	return n.name == o.name && n.host == o.host && n.port == o.port
}

// IsZero reports whether n is the zero NodeID, used as a sentinel for "no
// node" in contexts where a NodeID field is optional.
func (n NodeID) IsZero() bool {
	return n.name == "" && n.host == "" && n.port == 0
}

// String renders the NodeID as "<name>@<host>:<port>", the form used in
// logs and as the System/Host/Port components of a ProcessID's address.
func (n NodeID) String() string {
	var b strings.Builder
	b.WriteString(n.name)
	b.WriteByte('@')
	b.WriteString(n.host)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(n.port))
	return b.String()
}

// ProcessID names one process: the node that owns it, plus a local index
// assigned by that node from a strictly monotonic counter. Once assigned,
// an index is never reused within the owning node's lifetime, which makes ProcessID equality a sufficient liveness
// discriminator: an old and a new process on the same node never collide.
type ProcessID struct {
	node  NodeID
	index uint64
}

// NewProcessID pairs a node with a local index. Callers outside package
// node should treat the index as opaque; only the owning node's counter
// produces new values.
func NewProcessID(node NodeID, index uint64) ProcessID {
	return ProcessID{node: node, index: index}
}

func (p ProcessID) Node() NodeID  { return p.node }
func (p ProcessID) Index() uint64 { return p.index }

// Equal reports whether two ProcessIDs name the same process.
func (p ProcessID) Equal(o ProcessID) bool {
	return p.index == o.index && p.node.Equal(o.node)
}

// Less orders two ProcessIDs lexicographically by (node name, host, port,
// index). It exists solely to break ties deterministically when two linked
// processes die "simultaneously" and both sides must agree on who
// originates the LinkedDeath reason.
func (p ProcessID) Less(o ProcessID) bool {
	if p.node.name != o.node.name {
		return p.node.name < o.node.name
	}
	if p.node.host != o.node.host {
		return p.node.host < o.node.host
	}
	if p.node.port != o.node.port {
		return p.node.port < o.node.port
	}
	return p.index < o.index
}

// String renders the ProcessID as "<node>/<index>".
func (p ProcessID) String() string {
	return p.node.String() + "/" + strconv.FormatUint(p.index, 10)
}

// ChannelID names one typed channel. A channel is owned by exactly one
// process and dies with it: the owner field is what lets a
// remote SendPort route to the right process's channel table.
type ChannelID struct {
	owner ProcessID
	index uint64
}

func NewChannelID(owner ProcessID, index uint64) ChannelID {
	return ChannelID{owner: owner, index: index}
}

func (c ChannelID) Owner() ProcessID { return c.owner }
func (c ChannelID) Index() uint64    { return c.index }

func (c ChannelID) Equal(o ChannelID) bool {
	return c.index == o.index && c.owner.Equal(o.owner)
}

func (c ChannelID) String() string {
	return fmt.Sprintf("%s#chan%d", c.owner, c.index)
}

// MonitorRef identifies one monitor installation. The counter is drawn
// from the monitoring process, so (target, counter) uniquely correlates an
// unmonitor call and a delivered MonitorNotification back to the monitor
// call that created it.
type MonitorRef struct {
	target  ProcessID
	counter uint64
}

func NewMonitorRef(target ProcessID, counter uint64) MonitorRef {
	return MonitorRef{target: target, counter: counter}
}

func (r MonitorRef) Target() ProcessID { return r.target }
func (r MonitorRef) Counter() uint64   { return r.counter }

func (r MonitorRef) Equal(o MonitorRef) bool {
	return r.counter == o.counter && r.target.Equal(o.target)
}

func (r MonitorRef) String() string {
	return fmt.Sprintf("%s#mon%d", r.target, r.counter)
}

// SpawnRef correlates a remote Spawn request with its DidSpawn reply. The
// counter is drawn from the requesting process; Requester disambiguates
// counters across different requesters spawning concurrently against the
// same remote node.
type SpawnRef struct {
	requester ProcessID
	counter   uint64
}

func NewSpawnRef(requester ProcessID, counter uint64) SpawnRef {
	return SpawnRef{requester: requester, counter: counter}
}

func (r SpawnRef) Requester() ProcessID { return r.requester }
func (r SpawnRef) Counter() uint64      { return r.counter }

func (r SpawnRef) Equal(o SpawnRef) bool {
	return r.counter == o.counter && r.requester.Equal(o.requester)
}

func (r SpawnRef) String() string {
	return fmt.Sprintf("%s#spawn%d", r.requester, r.counter)
}
