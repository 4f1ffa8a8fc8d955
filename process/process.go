// Package process is the thin generic facade over package node: Go methods cannot carry their own type parameters, so the
// typed operations a LocalProcess needs — expect, newChan, sendChan,
// receiveChan, call — live here as free functions instead, each taking the
// *node.LocalProcess handle as their first argument.
package process

import (
	"fmt"

	"github.com/wyrefab/distproc/channel"
	"github.com/wyrefab/distproc/closure"
	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/id"
	"github.com/wyrefab/distproc/mailbox"
	"github.com/wyrefab/distproc/node"
	"github.com/wyrefab/distproc/wire"
)

// Expect performs one selective receive for a value of type T, following
// mode's blocking policy. matched is false when mode gave up without a
// match (NonBlocking with nothing queued, or Timeout expiring).
func Expect[T any](p *node.LocalProcess, mode mailbox.BlockMode) (value T, matched bool, err error) {
	v, matched, err := p.Receive(mode, mailbox.Match(func(m T) (any, error) { return m, nil }))
	if err != nil || !matched {
		return value, matched, err
	}
	return v.(T), true, nil
}

// ExpectIf is Expect with an additional predicate on the decoded value; a
// non-matching value is left in the mailbox for a later receive.
func ExpectIf[T any](p *node.LocalProcess, mode mailbox.BlockMode, pred func(T) bool) (value T, matched bool, err error) {
	v, matched, err := p.Receive(mode, mailbox.MatchIf(pred, func(m T) (any, error) { return m, nil }))
	if err != nil || !matched {
		return value, matched, err
	}
	return v.(T), true, nil
}

// ReceiveWait is Expect under a Blocking mode.
func ReceiveWait[T any](p *node.LocalProcess) (T, error) {
	v, _, err := Expect[T](p, mailbox.Blocking())
	return v, err
}

// ReceiveTimeout is Expect under a Timeout mode; matched is false if the
// deadline passed with nothing matching.
func ReceiveTimeout[T any](p *node.LocalProcess, d mailbox.BlockMode) (T, bool, error) {
	return Expect[T](p, d)
}

// NewChan allocates a fresh channel on p's owning process, returning its
// serializable SendPort and process-local ReceivePort.
func NewChan[T any](p *node.LocalProcess) (channel.SendPort[T], *channel.ReceivePort[T]) {
	idx := p.NextChannelIndex()
	chID := id.NewChannelID(p.Self(), idx)
	sp, rp := channel.NewChan[T](chID)
	p.RegisterChannel(idx, func(msg wire.Message) error {
		var v T
		if err := wire.Decode(msg, &v); err != nil {
			return err
		}
		rp.Deliver(v)
		return nil
	})
	return sp, rp
}

// SendChan encodes v and routes it to port's owning process, locally or
// over the wire.
func SendChan[T any](p *node.LocalProcess, port channel.SendPort[T], v T) error {
	msg, err := wire.Encode(v)
	if err != nil {
		return err
	}
	return p.SendChannel(port.ID, msg)
}

// ReceiveChan blocks until a value is available on port (or its merge
// tree) and returns it.
func ReceiveChan[T any](port *channel.ReceivePort[T]) (T, error) {
	return port.Receive()
}

// Catch runs fn and, if it panics, recovers the panic value and passes it
// to handler instead of letting it unwind further up the process's stack.
// The recovered value is whatever was panicked with: a call to p.Terminate
// surfaces as node.IsTerminateSignal(recovered) == true, anything else is
// an ordinary UncaughtException. Catch does not intercept LinkExit or
// MonitorNotification: those arrive as ordinary values through the mailbox,
// not as panics, so a remote death is invisible to Catch by construction.
func Catch(fn func(), handler func(recovered any)) {
	defer func() {
		if r := recover(); r != nil {
			handler(r)
		}
	}()
	fn()
}

// Spawn asks target to resolve c and start a new process, blocking until
// the correlated DidSpawn reply arrives.
func Spawn(p *node.LocalProcess, target id.NodeID, c closure.Closure) (id.ProcessID, error) {
	ref, err := p.SpawnAsync(target, c)
	if err != nil {
		return id.ProcessID{}, err
	}
	msg, matched, err := ExpectIf[node.DidSpawnMsg](p, mailbox.Blocking(), func(m node.DidSpawnMsg) bool {
		return m.SpawnRef.Equal(ref)
	})
	if err != nil {
		return id.ProcessID{}, err
	}
	if !matched {
		return id.ProcessID{}, errors.ErrReceiveTimeout
	}
	if msg.Err != "" {
		return id.ProcessID{}, errors.NewErrClosureResolutionError(c.Label, fmt.Errorf("%s", msg.Err))
	}
	return msg.PID, nil
}

// SpawnSupervised spawns c on target wrapped so the child links back to p
// before running, then installs a monitor from p on the child, returning
// both the child's PID and the MonitorRef.
func SpawnSupervised(p *node.LocalProcess, target id.NodeID, c closure.Closure) (id.ProcessID, id.MonitorRef, error) {
	wrapped := node.WrapLinkBack(p.Self(), c)
	pid, err := Spawn(p, target, wrapped)
	if err != nil {
		return id.ProcessID{}, id.MonitorRef{}, err
	}
	ref, err := p.Monitor(pid)
	return pid, ref, err
}

// Call spawns a proxy on target that runs c and sends its result back to p,
// then blocks for the reply. T must match the type the
// CallValue closure c resolves to. The reply is matched by correlation ref,
// so other calls outstanding from p at the same time are left untouched in
// the mailbox.
func Call[T any](p *node.LocalProcess, target id.NodeID, c closure.Closure) (T, error) {
	var zero T
	callRef := p.NextCallRef()
	if _, err := p.SpawnAsync(target, node.WrapCallProxy(p.Self(), callRef, c)); err != nil {
		return zero, err
	}
	result, matched, err := ExpectIf[node.CallResult](p, mailbox.Blocking(), func(m node.CallResult) bool {
		return m.Ref.Equal(callRef)
	})
	if err != nil {
		return zero, err
	}
	if !matched {
		return zero, errors.ErrReceiveTimeout
	}
	if result.Err != "" {
		return zero, errors.NewErrClosureResolutionError(c.Label, fmt.Errorf("%s", result.Err))
	}
	typed, ok := result.Value.(T)
	if !ok {
		return zero, errors.NewErrClosureResolutionError(c.Label, errors.ErrClosureResolutionError)
	}
	return typed, nil
}
