package node

import (
	"bytes"
	"encoding/gob"

	"github.com/wyrefab/distproc/closure"
	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/id"
	"github.com/wyrefab/distproc/wire"
)

// Behavior is a spawned process's root computation. It runs on its own goroutine with exclusive access to
// the LocalProcess handle passed in.
type Behavior func(p *LocalProcess)

// CallValue is a call-style closure's root computation: it runs once and
// returns a result (or error) instead of running indefinitely.
type CallValue func(p *LocalProcess) (any, error)

// monitorNotificationFingerprint lets routeLocalData recognize a
// MonitorNotification payload without decoding every frame, so it can prune
// the requester's monitorsOut entry for the fired ref before the
// notification reaches the mailbox.
var monitorNotificationFingerprint = wire.FingerprintOf(MonitorNotification{})

func init() {
	wire.Register(LinkExit{})
	wire.Register(MonitorNotification{})
	wire.Register(DidSpawnMsg{})
	gob.Register(linkBackEnv{})
	gob.Register(callProxyEnv{})
}

// LinkExit is delivered into a linked process's mailbox when its peer
// dies. It is an ordinary message: catch does not intercept it.
type LinkExit struct {
	Other  id.ProcessID
	Reason errors.DeathReason
}

// MonitorNotification is delivered into a monitoring process's mailbox
// exactly once per installed MonitorRef.
type MonitorNotification struct {
	Ref    id.MonitorRef
	Target id.ProcessID
	Reason errors.DeathReason
}

// DidSpawnMsg correlates a spawnAsync call with the new process's PID.
type DidSpawnMsg struct {
	SpawnRef id.SpawnRef
	PID      id.ProcessID
	Err      string
}

// linkBackEnv is LabelLinkBack's environment: spawnSupervised wraps the
// caller's closure so the child links back to its parent before running
// the caller's intended behavior.
type linkBackEnv struct {
	Parent id.ProcessID
	Inner  closure.Closure
}

// callProxyEnv is LabelSendResult's environment: call wraps the caller's
// closure so the proxy sends its result back to the caller once it
// completes. Ref correlates the reply with the particular call, since a
// single process may have more than one call outstanding at once.
type callProxyEnv struct {
	Caller id.ProcessID
	Ref    id.SpawnRef
	Inner  closure.Closure
}

// CallResult is what a call proxy sends back to its caller.
type CallResult struct {
	Ref   id.SpawnRef
	Value any
	Err   string
}

func init() { wire.Register(CallResult{}) }

func gobEncode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecode(data []byte, out any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(out)
}

// registerBuiltins installs the link-back and send-result proxy behaviors
// every node needs under the RemoteTable's reserved labels, so
// spawnSupervised and call work without the application registering
// anything itself.
func registerBuiltins(table *closure.RemoteTable) {
	_ = closure.RegisterReserved[Behavior](table, closure.LabelLinkBack, func(env []byte) (Behavior, error) {
		var e linkBackEnv
		if err := gobDecode(env, &e); err != nil {
			return nil, err
		}
		return func(p *LocalProcess) {
			if err := p.Link(e.Parent); err != nil {
				p.n.logger().Warnf("link-back to %s failed: %v", e.Parent, err)
			}
			inner, err := closure.UnClosure[Behavior](table, e.Inner)
			if err != nil {
				panic(err)
			}
			inner(p)
		}, nil
	})

	_ = closure.RegisterReserved[Behavior](table, closure.LabelSendResult, func(env []byte) (Behavior, error) {
		var e callProxyEnv
		if err := gobDecode(env, &e); err != nil {
			return nil, err
		}
		return func(p *LocalProcess) {
			inner, err := closure.UnClosure[CallValue](table, e.Inner)
			if err != nil {
				_ = p.Send(e.Caller, CallResult{Ref: e.Ref, Err: err.Error()})
				return
			}
			result, err := inner(p)
			if err != nil {
				_ = p.Send(e.Caller, CallResult{Ref: e.Ref, Err: err.Error()})
				return
			}
			_ = p.Send(e.Caller, CallResult{Ref: e.Ref, Value: result})
		}, nil
	})
}

// WrapLinkBack builds the closure spawnSupervised installs under
// LabelLinkBack: the spawned process links back to parent before running
// inner.
func WrapLinkBack(parent id.ProcessID, inner closure.Closure) closure.Closure {
	env, err := gobEncode(linkBackEnv{Parent: parent, Inner: inner})
	if err != nil {
		panic(err)
	}
	return closure.Closure{Label: closure.LabelLinkBack, Env: env}
}

// WrapCallProxy builds the closure call installs under LabelSendResult: the
// spawned proxy runs inner and sends its result back to caller tagged with
// ref.
func WrapCallProxy(caller id.ProcessID, ref id.SpawnRef, inner closure.Closure) closure.Closure {
	env, err := gobEncode(callProxyEnv{Caller: caller, Ref: ref, Inner: inner})
	if err != nil {
		panic(err)
	}
	return closure.Closure{Label: closure.LabelSendResult, Env: env}
}
