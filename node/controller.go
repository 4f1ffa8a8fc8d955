package node

import (
	"bytes"
	"context"
	"encoding/gob"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wyrefab/distproc/closure"
	"github.com/wyrefab/distproc/deadletter"
	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/id"
	"github.com/wyrefab/distproc/transport"
	"github.com/wyrefab/distproc/wire"
)

// ncEvent is one unit of work for the Node Controller loop: either an
// inbound frame (local or remote in origin) or notice that a connection to
// a peer failed.
type ncEvent struct {
	frame      Frame
	connFailed bool
	failedNode id.NodeID
}

func encodeFrame(f Frame) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&f)
	return f, err
}

// getOrDial returns the connection to target, dialing it if none is open
// yet. Once target is marked failed, this always returns the failure
// without redialing.
func (n *Node) getOrDial(ctx context.Context, target id.NodeID) (transport.Connection, error) {
	n.mu.Lock()
	cs, ok := n.conns[target]
	if !ok {
		cs = &connState{}
		n.conns[target] = cs
	}
	n.mu.Unlock()

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.failed {
		return nil, errors.NewErrNodeUnreachable(target.String())
	}
	if cs.conn != nil {
		return cs.conn, nil
	}

	conn, err := n.transport.Open(ctx, target.HostPort())
	if err != nil {
		return nil, errors.NewErrTransportFailure(err)
	}
	cs.conn = conn
	n.events.Publish(LifecycleTopic, ConnectionUp{Peer: target})
	if m := n.metrics(); m != nil {
		m.ConnectionsOpened.Add(ctx, 1)
	}
	go n.readLoop(target, conn)
	return conn, nil
}

// sendFrame gob-encodes f and writes it to target's connection, dialing if
// necessary.
func (n *Node) sendFrame(target id.NodeID, f Frame) error {
	if target.Equal(n.id) {
		n.inbox <- ncEvent{frame: f}
		return nil
	}
	conn, err := n.getOrDial(context.Background(), target)
	if err != nil {
		return err
	}
	data, err := encodeFrame(f)
	if err != nil {
		return err
	}
	if err := conn.Send(data); err != nil {
		n.markFailed(target, err)
		return errors.NewErrTransportFailure(err)
	}
	if m := n.metrics(); m != nil {
		m.MessagesSent.Add(context.Background(), 1)
	}
	return nil
}

// deliverData routes a Data frame's payload to dest, locally or over the
// wire.
func (n *Node) deliverData(dest Destination, sender id.ProcessID, payload wire.Message) error {
	target := dest.Node()
	if target.Equal(n.id) {
		return n.routeLocalData(dest, payload)
	}

	n.mu.Lock()
	cs, failed := n.conns[target], false
	if cs != nil {
		cs.mu.Lock()
		failed = cs.failed
		cs.mu.Unlock()
	}
	n.mu.Unlock()

	if failed {
		n.deadLtrs.Publish(deadletter.Letter{
			Destination: destString(dest),
			Sender:      sender.String(),
			Reason:      "node disconnected",
			Fingerprint: uint64(payload.Fingerprint),
		})
		return nil
	}

	return n.sendFrame(target, Frame{Kind: FrameData, Dest: dest, Sender: sender, Payload: payload})
}

func destString(d Destination) string {
	if d.Kind == DestChannel {
		return d.Channel.String()
	}
	return d.Process.String()
}

func (n *Node) routeLocalData(dest Destination, payload wire.Message) error {
	switch dest.Kind {
	case DestChannel:
		lp, ok := n.lookupLocal(dest.Channel.Owner().Index())
		if !ok {
			return errors.ErrProcessDead
		}
		return lp.deliverChannel(dest.Channel, payload)
	default:
		lp, ok := n.lookupLocal(dest.Process.Index())
		if !ok {
			return errors.ErrProcessDead
		}
		if payload.Fingerprint == monitorNotificationFingerprint {
			var note MonitorNotification
			if err := wire.Decode(payload, &note); err == nil {
				lp.clearMonitorOut(note.Ref)
			}
		}
		lp.mbox.Push(payload)
		if m := n.metrics(); m != nil {
			m.MailboxSize.Record(context.Background(), int64(lp.mbox.Len()), metric.WithAttributes(attribute.String("pid", dest.Process.String())))
		}
		return nil
	}
}

// sendSignal routes a control Signal to target's node, locally or over the
// wire.
func (n *Node) sendSignal(target id.NodeID, sig Signal) error {
	return n.sendFrame(target, Frame{Kind: FrameControl, Signal: sig})
}

func (n *Node) markFailed(target id.NodeID, cause error) {
	n.mu.Lock()
	cs, ok := n.conns[target]
	n.mu.Unlock()
	if !ok {
		return
	}
	cs.mu.Lock()
	alreadyFailed := cs.failed
	cs.failed = true
	conn := cs.conn
	cs.conn = nil
	cs.mu.Unlock()
	if alreadyFailed {
		return
	}
	if conn != nil {
		_ = conn.Close()
	}
	n.events.Publish(LifecycleTopic, ConnectionDown{Peer: target, Reason: cause})
	if m := n.metrics(); m != nil {
		m.ConnectionsFailed.Add(context.Background(), 1)
	}
	n.inbox <- ncEvent{connFailed: true, failedNode: target}
}

func (n *Node) acceptLoop(ctx context.Context, inbound <-chan transport.Inbound) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-inbound:
			if !ok {
				return
			}
			go n.readLoop(id.NodeID{}, in.Conn)
		}
	}
}

// readLoop decodes frames from conn and enqueues them on the Node
// Controller inbox in arrival order, preserving per-connection FIFO
// ordering.
func (n *Node) readLoop(peer id.NodeID, conn transport.Connection) {
	for {
		data, err := conn.Recv()
		if err != nil {
			if !peer.IsZero() {
				n.markFailed(peer, err)
			}
			return
		}
		f, err := decodeFrame(data)
		if err != nil {
			n.logger().Warnf("node: dropping malformed frame from %s: %v", conn.RemoteAddress(), err)
			continue
		}
		n.inbox <- ncEvent{frame: f}
	}
}

// controllerLoop is the Node Controller: a single goroutine draining one
// inbox, giving a total order on control decisions per node.
func (n *Node) controllerLoop(ctx context.Context) {
	defer close(n.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.inbox:
			if ev.connFailed {
				n.handleConnFailed(ev.failedNode)
				continue
			}
			n.handleFrame(ev.frame)
		}
	}
}

func (n *Node) handleFrame(f Frame) {
	switch f.Kind {
	case FrameData:
		if err := n.routeLocalData(f.Dest, f.Payload); err != nil {
			n.logger().Debugf("node: dropping data frame to %s: %v", destString(f.Dest), err)
		}
	case FrameControl:
		n.handleSignal(f.Signal)
	}
}

func (n *Node) handleSignal(sig Signal) {
	switch sig.Kind {
	case SigLink:
		n.handleLink(sig)
	case SigUnlink:
		if lp, ok := n.lookupLocal(sig.Target.Index()); ok {
			lp.removeLink(sig.Requester)
		}
	case SigMonitor:
		n.handleMonitor(sig)
	case SigUnmonitor:
		if lp, ok := n.lookupLocal(sig.Target.Index()); ok {
			lp.removeMonitor(sig.MonitorRef)
		}
	case SigSpawn:
		n.handleSpawn(sig)
	}
}

func (n *Node) handleLink(sig Signal) {
	lp, ok := n.lookupLocal(sig.Target.Index())
	if !ok {
		n.notifyExit(sig.Requester, sig.Target, errors.Disconnected())
		return
	}
	dead, reason := lp.addLink(sig.Requester)
	if dead {
		n.notifyExit(sig.Requester, sig.Target, reason)
	}
}

func (n *Node) handleMonitor(sig Signal) {
	lp, ok := n.lookupLocal(sig.Target.Index())
	if !ok {
		n.notifyMonitor(sig.Requester, sig.MonitorRef, sig.Target, errors.Disconnected())
		return
	}
	dead, reason := lp.addMonitor(sig.MonitorRef, sig.Requester)
	if dead {
		n.notifyMonitor(sig.Requester, sig.MonitorRef, sig.Target, reason)
	}
}

func (n *Node) handleSpawn(sig Signal) {
	behavior, err := closure.UnClosure[Behavior](n.table, sig.Closure)
	if err != nil {
		n.replyDidSpawn(sig.Requester, sig.SpawnRef, id.ProcessID{}, err)
		return
	}
	lp := n.Spawn(behavior)
	n.replyDidSpawn(sig.Requester, sig.SpawnRef, lp.pid, nil)
}

func (n *Node) replyDidSpawn(requester id.ProcessID, ref id.SpawnRef, pid id.ProcessID, spawnErr error) {
	msg := DidSpawnMsg{SpawnRef: ref, PID: pid}
	if spawnErr != nil {
		msg.Err = spawnErr.Error()
	}
	encoded, err := wire.Encode(msg)
	if err != nil {
		n.logger().Errorf("node: failed to encode DidSpawnMsg: %v", err)
		return
	}
	if err := n.deliverData(destProcess(requester), id.ProcessID{}, encoded); err != nil {
		n.logger().Debugf("node: failed to deliver DidSpawnMsg to %s: %v", requester, err)
	}
}

func (n *Node) notifyExit(to, other id.ProcessID, reason errors.DeathReason) {
	encoded, err := wire.Encode(LinkExit{Other: other, Reason: reason})
	if err != nil {
		return
	}
	_ = n.deliverData(destProcess(to), other, encoded)
}

func (n *Node) notifyMonitor(to id.ProcessID, ref id.MonitorRef, target id.ProcessID, reason errors.DeathReason) {
	encoded, err := wire.Encode(MonitorNotification{Ref: ref, Target: target, Reason: reason})
	if err != nil {
		return
	}
	_ = n.deliverData(destProcess(to), target, encoded)
}

// processDied finalizes a local process's death: it records the reason,
// notifies every linker and monitorer (flushing is implicit since the NC
// processes this inbox entry only after every Data frame already enqueued
// ahead of it), and publishes a lifecycle event.
func (n *Node) processDied(pid id.ProcessID, reason errors.DeathReason) {
	n.mu.Lock()
	lp, ok := n.processes[pid.Index()]
	if ok {
		delete(n.processes, pid.Index())
	}
	n.mu.Unlock()
	if !ok {
		return
	}

	lp.mu.Lock()
	lp.dead = true
	lp.deathReason = reason
	lp.mu.Unlock()

	links, monitorsIn := lp.snapshotDeath()
	for _, peer := range links {
		n.notifyExit(peer, pid, reason)
	}
	for ref, requester := range monitorsIn {
		n.notifyMonitor(requester, ref, pid, reason)
	}
	n.events.Publish(LifecycleTopic, ProcessDiedEvent{PID: pid, Reason: reason})
	if m := n.metrics(); m != nil {
		m.ProcessesDied.Add(context.Background(), 1)
	}
}

// handleConnFailed synthesizes Disconnected deaths for every local process
// with outstanding links or monitors toward a process on the failed node,
// then marks the connection map entry permanently failed.
func (n *Node) handleConnFailed(failedNode id.NodeID) {
	n.mu.Lock()
	var affected []*LocalProcess
	for _, lp := range n.processes {
		affected = append(affected, lp)
	}
	n.mu.Unlock()

	for _, lp := range affected {
		lp.mu.Lock()
		var peers []id.ProcessID
		for peer := range lp.links {
			if peer.Node().Equal(failedNode) {
				peers = append(peers, peer)
			}
		}
		var refs []id.MonitorRef
		for ref, target := range lp.monitorsOut {
			if target.Node().Equal(failedNode) {
				refs = append(refs, ref)
			}
		}
		lp.mu.Unlock()

		for _, peer := range peers {
			lp.removeLink(peer)
			encoded, err := wire.Encode(LinkExit{Other: peer, Reason: errors.Disconnected()})
			if err == nil {
				lp.mbox.Push(encoded)
			}
		}
		for _, ref := range refs {
			lp.mu.Lock()
			target := lp.monitorsOut[ref]
			delete(lp.monitorsOut, ref)
			lp.mu.Unlock()
			encoded, err := wire.Encode(MonitorNotification{Ref: ref, Target: target, Reason: errors.Disconnected()})
			if err == nil {
				lp.mbox.Push(encoded)
			}
		}
	}
}

