package node

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"

	"github.com/wyrefab/distproc/closure"
	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/id"
	"github.com/wyrefab/distproc/mailbox"
)

const greeterLabel = "test-greeter"

type greeterEnv struct {
	Caller id.ProcessID
}

// closureRegisterGreeter installs a behavior under greeterLabel that sends
// "hello" back to the caller named in its environment, then returns.
func closureRegisterGreeter(n *Node) error {
	return closure.Register[Behavior](n.RemoteTable(), greeterLabel, func(env []byte) (Behavior, error) {
		var e greeterEnv
		if err := gobDecode(env, &e); err != nil {
			return nil, err
		}
		return func(p *LocalProcess) {
			_ = p.Send(e.Caller, "hello")
		}, nil
	})
}

func greeterClosure(caller id.ProcessID) closure.Closure {
	env, err := gobEncode(greeterEnv{Caller: caller})
	if err != nil {
		panic(err)
	}
	return closure.Closure{Label: greeterLabel, Env: env}
}

func newTestNode(t *testing.T) *Node {
	t.Helper()
	port := dynaport.Get(1)[0]
	n, err := New("node-"+t.Name(), "127.0.0.1:"+strconv.Itoa(port))
	require.NoError(t, err)
	require.NoError(t, n.Start(context.Background()))
	t.Cleanup(func() { _ = n.Stop() })
	return n
}

func TestNode_SpawnAndSend(t *testing.T) {
	n := newTestNode(t)

	type ping struct{ Value int }

	received := make(chan int, 1)
	lp := n.Spawn(func(p *LocalProcess) {
		v, _, err := p.Receive(mailbox.Blocking(), mailbox.Match(func(m ping) (any, error) { return m, nil }))
		require.NoError(t, err)
		received <- v.(ping).Value
	})

	require.NoError(t, lp.Send(lp.Self(), ping{Value: 42}))

	select {
	case v := <-received:
		require.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNode_LinkNotifiesOnDeath(t *testing.T) {
	n := newTestNode(t)

	childDone := make(chan struct{})
	child := n.Spawn(func(p *LocalProcess) {
		<-childDone
	})

	notified := make(chan errors.DeathReason, 1)
	n.Spawn(func(p *LocalProcess) {
		require.NoError(t, p.Link(child.Self()))
		v, _, err := p.Receive(mailbox.Blocking(), mailbox.Match(func(m LinkExit) (any, error) { return m, nil }))
		require.NoError(t, err)
		notified <- v.(LinkExit).Reason
	})

	time.Sleep(50 * time.Millisecond)
	close(childDone)

	select {
	case reason := <-notified:
		require.True(t, reason.IsNormal())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for LinkExit")
	}
}

func TestNode_MonitorNotifiesOnDeath(t *testing.T) {
	n := newTestNode(t)

	childDone := make(chan struct{})
	child := n.Spawn(func(p *LocalProcess) {
		<-childDone
	})

	notified := make(chan id.MonitorRef, 1)
	n.Spawn(func(p *LocalProcess) {
		ref, err := p.Monitor(child.Self())
		require.NoError(t, err)
		v, _, err := p.Receive(mailbox.Blocking(), mailbox.Match(func(m MonitorNotification) (any, error) { return m, nil }))
		require.NoError(t, err)
		require.True(t, v.(MonitorNotification).Ref.Equal(ref))
		notified <- v.(MonitorNotification).Ref
	})

	time.Sleep(50 * time.Millisecond)
	close(childDone)

	select {
	case <-notified:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for MonitorNotification")
	}
}

func TestNode_UnmonitorSuppressesLaterNotification(t *testing.T) {
	n := newTestNode(t)

	childDone := make(chan struct{})
	child := n.Spawn(func(p *LocalProcess) {
		<-childDone
	})

	done := make(chan bool, 1)
	n.Spawn(func(p *LocalProcess) {
		ref, err := p.Monitor(child.Self())
		require.NoError(t, err)
		require.NoError(t, p.Unmonitor(ref))

		close(childDone)
		time.Sleep(100 * time.Millisecond)

		_, matched, err := p.Receive(mailbox.Timeout(100*time.Millisecond), mailbox.Match(func(m MonitorNotification) (any, error) { return m, nil }))
		require.NoError(t, err)
		done <- matched
	})

	select {
	case matched := <-done:
		require.False(t, matched, "expected no MonitorNotification after Unmonitor")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for assertion goroutine")
	}
}

func TestNode_RemoteSpawnBetweenTwoNodes(t *testing.T) {
	ports := dynaport.Get(2)
	a, err := New("node-a", "127.0.0.1:"+strconv.Itoa(ports[0]))
	require.NoError(t, err)
	b, err := New("node-b", "127.0.0.1:"+strconv.Itoa(ports[1]))
	require.NoError(t, err)

	require.NoError(t, closureRegisterGreeter(b))

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop() })
	t.Cleanup(func() { _ = b.Stop() })

	greeted := make(chan string, 1)
	a.Spawn(func(p *LocalProcess) {
		ref, err := p.SpawnAsync(b.ID(), greeterClosure(p.Self()))
		require.NoError(t, err)

		v, _, err := p.Receive(mailbox.Blocking(), mailbox.MatchIf(
			func(m DidSpawnMsg) bool { return m.SpawnRef.Equal(ref) },
			func(m DidSpawnMsg) (any, error) { return m, nil },
		))
		require.NoError(t, err)
		require.Empty(t, v.(DidSpawnMsg).Err)

		greeting, _, err := p.Receive(mailbox.Blocking(), mailbox.Match(func(m string) (any, error) { return m, nil }))
		require.NoError(t, err)
		greeted <- greeting.(string)
	})

	select {
	case g := <-greeted:
		require.Equal(t, "hello", g)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote spawn greeting")
	}
}

// TestNode_ConnFailureAfterMonitorFiredDoesNotDuplicate reproduces the
// scenario where a remote monitor fires normally and only afterwards does
// the connection to that peer's node fail for an unrelated reason.
// handleConnFailed must not re-synthesize a Disconnected notification for a
// ref whose normal notification already reached the mailbox.
func TestNode_ConnFailureAfterMonitorFiredDoesNotDuplicate(t *testing.T) {
	ports := dynaport.Get(2)
	a, err := New("node-a", "127.0.0.1:"+strconv.Itoa(ports[0]))
	require.NoError(t, err)
	b, err := New("node-b", "127.0.0.1:"+strconv.Itoa(ports[1]))
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop() })
	t.Cleanup(func() { _ = b.Stop() })

	childDone := make(chan struct{})
	child := b.Spawn(func(p *LocalProcess) {
		<-childDone
	})

	monitored := make(chan struct{})
	firedOnce := make(chan id.MonitorRef, 1)
	connFailed := make(chan struct{})
	result := make(chan bool, 1)
	a.Spawn(func(p *LocalProcess) {
		ref, err := p.Monitor(child.Self())
		require.NoError(t, err)
		close(monitored)

		v, _, err := p.Receive(mailbox.Blocking(), mailbox.Match(func(m MonitorNotification) (any, error) { return m, nil }))
		require.NoError(t, err)
		require.True(t, v.(MonitorNotification).Ref.Equal(ref))
		require.True(t, v.(MonitorNotification).Reason.IsNormal())
		firedOnce <- ref

		<-connFailed

		_, matched, err := p.Receive(mailbox.Timeout(200*time.Millisecond), mailbox.Match(func(m MonitorNotification) (any, error) { return m, nil }))
		require.NoError(t, err)
		result <- matched
	})

	select {
	case <-monitored:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for monitor installation")
	}
	close(childDone)

	select {
	case <-firedOnce:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for normal monitor notification")
	}

	a.handleConnFailed(b.ID())
	close(connFailed)

	select {
	case matched := <-result:
		require.False(t, matched, "expected no second MonitorNotification after an unrelated connection failure")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for post-disconnect receive")
	}
}

// TestNode_ConnFailureSynthesizesDisconnectedWhenNeverFired covers
// handleConnFailed's actual job: a monitor that never received a normal
// notification still gets exactly one Disconnected notification once its
// target's node connection fails.
func TestNode_ConnFailureSynthesizesDisconnectedWhenNeverFired(t *testing.T) {
	ports := dynaport.Get(2)
	a, err := New("node-a", "127.0.0.1:"+strconv.Itoa(ports[0]))
	require.NoError(t, err)
	b, err := New("node-b", "127.0.0.1:"+strconv.Itoa(ports[1]))
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, b.Start(context.Background()))
	t.Cleanup(func() { _ = a.Stop() })
	t.Cleanup(func() { _ = b.Stop() })

	childDone := make(chan struct{})
	t.Cleanup(func() { close(childDone) })
	child := b.Spawn(func(p *LocalProcess) {
		<-childDone
	})

	notified := make(chan MonitorNotification, 2)
	monitored := make(chan id.MonitorRef, 1)
	a.Spawn(func(p *LocalProcess) {
		ref, err := p.Monitor(child.Self())
		require.NoError(t, err)
		monitored <- ref

		for i := 0; i < 2; i++ {
			v, matched, err := p.Receive(mailbox.Timeout(2*time.Second), mailbox.Match(func(m MonitorNotification) (any, error) { return m, nil }))
			require.NoError(t, err)
			if !matched {
				return
			}
			notified <- v.(MonitorNotification)
		}
	})

	var ref id.MonitorRef
	select {
	case ref = <-monitored:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for monitor installation")
	}

	a.markFailed(b.ID(), fmt.Errorf("simulated transport failure"))

	select {
	case note := <-notified:
		require.True(t, note.Ref.Equal(ref))
		require.True(t, note.Reason.IsDisconnected())
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Disconnected MonitorNotification")
	}

	select {
	case <-notified:
		t.Fatal("received a second MonitorNotification for the same ref")
	case <-time.After(300 * time.Millisecond):
	}
}
