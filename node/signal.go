// Package node implements the per-node runtime: a Node owns a Transport,
// a registry of LocalProcess values, and a single serialized Node
// Controller (NC) that dispatches inbound frames and control signals
//. LocalProcess, the control-plane Signal/Frame wire
// shapes, and the reserved-label proxy behaviors used by call and
// spawnSupervised all live here rather than split into a separate
// "process" package, since the NC needs direct access to every
// LocalProcess's mailbox and channel table and Go has no forward
// declarations to break that cycle cleanly.
package node

import (
	"fmt"

	"github.com/wyrefab/distproc/closure"
	"github.com/wyrefab/distproc/id"
	"github.com/wyrefab/distproc/wire"
)

// DestKind distinguishes the two routable targets a Data frame can carry.
type DestKind uint8

const (
	DestProcess DestKind = iota
	DestChannel
)

// Destination names where a Data frame's payload should be delivered.
type Destination struct {
	Kind    DestKind
	Process id.ProcessID
	Channel id.ChannelID
}

func destProcess(pid id.ProcessID) Destination { return Destination{Kind: DestProcess, Process: pid} }
func destChannel(ch id.ChannelID) Destination  { return Destination{Kind: DestChannel, Channel: ch} }

// Node returns the NodeID a destination's frame must be routed to.
func (d Destination) Node() id.NodeID {
	if d.Kind == DestChannel {
		return d.Channel.Owner().Node()
	}
	return d.Process.Node()
}

// FrameKind distinguishes an ordinary data delivery from a control signal
// destined for the receiving node's NC.
type FrameKind uint8

const (
	FrameData FrameKind = iota
	FrameControl
)

// SignalKind enumerates the NC control-plane operations.
// DidSpawn, Exit and ProcessDied are not signals here: they are delivered
// as ordinary typed mailbox messages (DidSpawnMsg, LinkExit,
// MonitorNotification) produced by the NC, not routed back through it.
type SignalKind uint8

const (
	SigLink SignalKind = iota
	SigUnlink
	SigMonitor
	SigUnmonitor
	SigSpawn
)

// Signal is the control-plane payload of a FrameControl frame. Only the
// fields relevant to Kind are meaningful; this flattened shape (rather than
// an interface per signal) keeps it a single concrete gob-encodable type.
type Signal struct {
	Kind       SignalKind
	Requester  id.ProcessID
	Target     id.ProcessID
	MonitorRef id.MonitorRef
	SpawnRef   id.SpawnRef
	Closure    closure.Closure
}

// Frame is the self-describing unit exchanged over a Connection: kind, destination, sender, and either a wire-encoded payload or a
// control Signal.
type Frame struct {
	Kind    FrameKind
	Dest    Destination
	Sender  id.ProcessID
	Payload wire.Message
	Signal  Signal
}

func (s SignalKind) String() string {
	switch s {
	case SigLink:
		return "link"
	case SigUnlink:
		return "unlink"
	case SigMonitor:
		return "monitor"
	case SigUnmonitor:
		return "unmonitor"
	case SigSpawn:
		return "spawn"
	default:
		return fmt.Sprintf("signal(%d)", uint8(s))
	}
}
