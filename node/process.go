package node

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/wyrefab/distproc/closure"
	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/id"
	"github.com/wyrefab/distproc/mailbox"
	"github.com/wyrefab/distproc/wire"
)

// channelDeliverer feeds a decoded wire.Message into one process-owned
// channel's ReceivePort, type-erased so LocalProcess can hold channels of
// any element type in one map.
type channelDeliverer func(wire.Message) error

// terminateSignal is the panic value Terminate raises; the goroutine
// running a LocalProcess's Behavior recovers it and reports Normal death
// for it specifically (terminate is requested, not a crash) while any other
// panic value is reported as Exception.
//
// Open question decision: linkers observe a terminated process as
// Exception("terminated"), not Normal, since the source-level behavior
// throws.
type terminateSignal struct{}

// LocalProcess is a unit of concurrent execution bound to a Node: its own
// mailbox, monotonic counters, channel table, and monitor/link sets.
type LocalProcess struct {
	pid id.ProcessID
	n   *Node

	mbox *mailbox.CQueue

	channelSeq atomic.Uint64
	monitorSeq atomic.Uint64
	spawnSeq   atomic.Uint64

	mu          sync.Mutex
	channels    map[uint64]channelDeliverer
	links       map[id.ProcessID]struct{}
	monitorsIn  map[id.MonitorRef]id.ProcessID // ref -> requester watching this process
	monitorsOut map[id.MonitorRef]id.ProcessID // ref -> target this process is watching
	dead        bool
	deathReason errors.DeathReason
}

func newLocalProcess(pid id.ProcessID, n *Node) *LocalProcess {
	return &LocalProcess{
		pid:         pid,
		n:           n,
		mbox:        mailbox.New(),
		channels:    make(map[uint64]channelDeliverer),
		links:       make(map[id.ProcessID]struct{}),
		monitorsIn:  make(map[id.MonitorRef]id.ProcessID),
		monitorsOut: make(map[id.MonitorRef]id.ProcessID),
	}
}

// Self returns this process's identifier.
func (p *LocalProcess) Self() id.ProcessID { return p.pid }

// SelfNode returns the identifier of the node this process runs on.
func (p *LocalProcess) SelfNode() id.NodeID { return p.n.id }

// Node exposes the owning Node to package process, which needs it to
// resolve remote targets for the generic channel and call operations.
func (p *LocalProcess) Node() *Node { return p.n }

// NextChannelIndex draws the next channel index from this process's
// monotonic counter.
func (p *LocalProcess) NextChannelIndex() uint64 { return p.channelSeq.Inc() }

// RegisterChannel records the type-erased deliverer for a channel this
// process owns, so inbound frames addressed to it can be routed without
// package node knowing the channel's element type.
func (p *LocalProcess) RegisterChannel(idx uint64, deliver channelDeliverer) {
	p.mu.Lock()
	p.channels[idx] = deliver
	p.mu.Unlock()
}

func (p *LocalProcess) deliverChannel(chID id.ChannelID, msg wire.Message) error {
	p.mu.Lock()
	deliver, ok := p.channels[chID.Index()]
	p.mu.Unlock()
	if !ok {
		return errors.NewErrDecode(errors.ErrChannelClosed)
	}
	return deliver(msg)
}

// Receive performs one selective-receive attempt against this process's
// mailbox, used by package process to implement expect,
// receiveWait and receiveTimeout.
func (p *LocalProcess) Receive(mode mailbox.BlockMode, matchers ...mailbox.Matcher) (any, bool, error) {
	return p.mbox.Receive(mode, matchers...)
}

// Send is fire-and-forget: it never fails observably at the
// call site beyond a local encode error; delivery failures surface only via
// monitors.
func (p *LocalProcess) Send(dest id.ProcessID, v any) error {
	msg, err := wire.Encode(v)
	if err != nil {
		return err
	}
	return p.n.deliverData(destProcess(dest), p.pid, msg)
}

// SendChannel delivers msg to the channel identified by chID, locally or
// over the wire, exactly like Send but addressed to a channel rather than a
// process mailbox. Used by package process to implement sendChan.
func (p *LocalProcess) SendChannel(chID id.ChannelID, msg wire.Message) error {
	return p.n.deliverData(destChannel(chID), p.pid, msg)
}

// Link installs a bidirectional link between this process and target
//. If target is already dead, this process observes an
// immediate LinkExit.
func (p *LocalProcess) Link(target id.ProcessID) error {
	p.mu.Lock()
	if p.dead {
		p.mu.Unlock()
		return errors.ErrProcessDead
	}
	p.links[target] = struct{}{}
	p.mu.Unlock()

	return p.n.sendSignal(target.Node(), Signal{Kind: SigLink, Requester: p.pid, Target: target})
}

// Unlink removes a previously installed link.
func (p *LocalProcess) Unlink(target id.ProcessID) error {
	p.mu.Lock()
	delete(p.links, target)
	p.mu.Unlock()

	return p.n.sendSignal(target.Node(), Signal{Kind: SigUnlink, Requester: p.pid, Target: target})
}

// Monitor installs a one-shot subscription to target's death, returning the
// MonitorRef that correlates the eventual MonitorNotification.
func (p *LocalProcess) Monitor(target id.ProcessID) (id.MonitorRef, error) {
	ref := id.NewMonitorRef(target, p.monitorSeq.Inc())

	p.mu.Lock()
	p.monitorsOut[ref] = target
	p.mu.Unlock()

	if err := p.n.sendSignal(target.Node(), Signal{Kind: SigMonitor, Requester: p.pid, Target: target, MonitorRef: ref}); err != nil {
		return ref, err
	}
	return ref, nil
}

// Unmonitor removes a monitor installed by this process. A notification
// already enqueued before Unmonitor runs is still delivered.
func (p *LocalProcess) Unmonitor(ref id.MonitorRef) error {
	p.mu.Lock()
	target, ok := p.monitorsOut[ref]
	delete(p.monitorsOut, ref)
	p.mu.Unlock()
	if !ok {
		return errors.NewErrMonitorNotFound(ref.String())
	}
	return p.n.sendSignal(target.Node(), Signal{Kind: SigUnmonitor, Requester: p.pid, MonitorRef: ref})
}

// clearMonitorOut removes ref from monitorsOut if present, reporting
// whether it was there. Called once a MonitorNotification for ref has
// actually reached this process's mailbox, so a later handleConnFailed scan
// over monitorsOut never finds a stale entry and re-fires the same ref.
func (p *LocalProcess) clearMonitorOut(ref id.MonitorRef) {
	p.mu.Lock()
	delete(p.monitorsOut, ref)
	p.mu.Unlock()
}

// NextCallRef draws a fresh correlation tag from this process's spawn
// counter, reused by package process to correlate a call's CallResult reply
// since more than one call may be outstanding from the same process at
// once.
func (p *LocalProcess) NextCallRef() id.SpawnRef {
	return id.NewSpawnRef(p.pid, p.spawnSeq.Inc())
}

// SpawnAsync asks target's node to resolve c and start a new process,
// returning a SpawnRef that correlates the eventual DidSpawnMsg delivered
// into this process's mailbox.
func (p *LocalProcess) SpawnAsync(target id.NodeID, c closure.Closure) (id.SpawnRef, error) {
	ref := id.NewSpawnRef(p.pid, p.spawnSeq.Inc())
	err := p.n.sendSignal(target, Signal{Kind: SigSpawn, Requester: p.pid, SpawnRef: ref, Closure: c})
	return ref, err
}

// Terminate unwinds the calling goroutine's stack up to the process's run
// loop, which reports it as Exception("terminated") to linkers and
// monitors (see the Open Question decision on terminateSignal).
func (p *LocalProcess) Terminate() {
	panic(terminateSignal{})
}

// IsTerminateSignal reports whether a value recovered from a panic (as
// Catch's handler receives) is the termination condition Terminate raises,
// as opposed to an ordinary UncaughtException.
func IsTerminateSignal(recovered any) bool {
	_, ok := recovered.(terminateSignal)
	return ok
}

func (p *LocalProcess) snapshotDeath() (links []id.ProcessID, monitorsIn map[id.MonitorRef]id.ProcessID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for peer := range p.links {
		links = append(links, peer)
	}
	monitorsIn = make(map[id.MonitorRef]id.ProcessID, len(p.monitorsIn))
	for ref, requester := range p.monitorsIn {
		monitorsIn[ref] = requester
	}
	return links, monitorsIn
}

// addLink records that peer linked to this process (installed by the NC
// when it processes a remote SigLink targeting this process).
func (p *LocalProcess) addLink(peer id.ProcessID) (alreadyDead bool, reason errors.DeathReason) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return true, p.deathReason
	}
	p.links[peer] = struct{}{}
	return false, errors.DeathReason{}
}

func (p *LocalProcess) removeLink(peer id.ProcessID) {
	p.mu.Lock()
	delete(p.links, peer)
	p.mu.Unlock()
}

func (p *LocalProcess) addMonitor(ref id.MonitorRef, requester id.ProcessID) (alreadyDead bool, reason errors.DeathReason) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead {
		return true, p.deathReason
	}
	p.monitorsIn[ref] = requester
	return false, errors.DeathReason{}
}

func (p *LocalProcess) removeMonitor(ref id.MonitorRef) {
	p.mu.Lock()
	delete(p.monitorsIn, ref)
	p.mu.Unlock()
}
