// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package errors

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	// ErrTransportFailure indicates a connection to a remote node broke.
	// The Node Controller converts this into Disconnected death reasons
	// for every local process with an outstanding link or monitor that
	// involves a process on the unreachable node.
	ErrTransportFailure = errors.New("transport failure")

	// ErrClosureResolutionError is returned when a closure's label has no
	// entry in the RemoteTable, or when the decoded value's fingerprint
	// does not match the type the caller expected.
	ErrClosureResolutionError = errors.New("closure resolution failed")

	// ErrDecode is returned when a message's fingerprint matches a
	// matcher but its bytes fail to decode. This is a programmer error;
	// the receiving process terminates with Exception(description).
	ErrDecode = errors.New("message decode failed")

	// ErrTerminationRequested is the sentinel panic value used to unwind
	// a process after terminate() is called. catch recovers it; if it
	// escapes uncaught, the process exits with reason Exception("terminated").
	ErrTerminationRequested = errors.New("termination requested")

	// ErrProcessDead indicates an operation was attempted against a
	// process that has already exited.
	ErrProcessDead = errors.New("process is dead")

	// ErrMonitorNotFound is returned when unmonitor is called with a
	// MonitorRef that does not correspond to an active monitor.
	ErrMonitorNotFound = errors.New("monitor not found")

	// ErrNodeUnreachable indicates the destination node is marked
	// permanently failed; no further sends to it are attempted.
	ErrNodeUnreachable = errors.New("node unreachable")

	// ErrChannelClosed is returned when sending on or receiving from a
	// channel whose ReceivePort has already been dropped.
	ErrChannelClosed = errors.New("channel closed")

	// ErrReceiveTimeout indicates a receiveTimeout call expired with no
	// matching message.
	ErrReceiveTimeout = errors.New("receive timed out")

	// ErrConcurrentReceive is returned when a merged ReceivePort and one
	// of its constituents are consumed concurrently, which this
	// implementation forbids.
	ErrConcurrentReceive = errors.New("concurrent receive on merged port and constituent is forbidden")

	// ErrInvalidNodeName is returned when a node name contains characters
	// outside [a-zA-Z0-9_-] or begins with a separator.
	ErrInvalidNodeName = errors.New("invalid node name, must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-' or '_')")

	// ErrNameRequired is returned when a node name is required but not
	// provided.
	ErrNameRequired = errors.New("node name is required")

	// ErrInvalidHost is returned when the specified bind or remote host
	// cannot be resolved.
	ErrInvalidHost = errors.New("invalid host")

	// ErrInvalidTimeout is returned when a timeout value is less than or
	// equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidTLSConfiguration is returned when TLS settings are
	// missing or misconfigured.
	ErrInvalidTLSConfiguration = errors.New("TLS configuration is invalid")

	// ErrNodeAlreadyStarted is returned when attempting to start a node
	// that is already running.
	ErrNodeAlreadyStarted = errors.New("node has already started")

	// ErrNodeNotStarted indicates a node has not been started before use.
	ErrNodeNotStarted = errors.New("node is not running")

	// ErrUndefinedClosureLabel is returned when registering a RemoteTable
	// entry under an empty label, or spawning from a closure whose label
	// was never registered.
	ErrUndefinedClosureLabel = errors.New("closure label is not defined")

	// ErrReservedLabel is returned when attempting to register a closure
	// under one of the reserved labels (sequence, bind, link-back,
	// send-result).
	ErrReservedLabel = errors.New("closure label is reserved")

	// ErrPeerNotFound is returned when a discovery provider cannot
	// resolve the requested peer.
	ErrPeerNotFound = errors.New("peer is not found")

	// ErrDiscoveryNotStarted is returned when a discovery provider is
	// used before it has started.
	ErrDiscoveryNotStarted = errors.New("discovery provider has not started")
)

// NewErrTransportFailure wraps a base error with ErrTransportFailure.
func NewErrTransportFailure(err error) error {
	return multierr.Combine(ErrTransportFailure, err)
}

// NewErrClosureResolutionError formats ErrClosureResolutionError with the
// offending label.
func NewErrClosureResolutionError(label string, err error) error {
	return fmt.Errorf("label=(%s) %w: %w", label, ErrClosureResolutionError, err)
}

// NewErrDecode wraps a base error with ErrDecode.
func NewErrDecode(err error) error {
	return multierr.Combine(ErrDecode, err)
}

// NewErrProcessDead formats ErrProcessDead with the dead process identifier.
func NewErrProcessDead(pid string) error {
	return fmt.Errorf("pid=(%s) %w", pid, ErrProcessDead)
}

// NewErrMonitorNotFound formats ErrMonitorNotFound with the missing ref.
func NewErrMonitorNotFound(ref string) error {
	return fmt.Errorf("ref=(%s) %w", ref, ErrMonitorNotFound)
}

// NewErrNodeUnreachable formats ErrNodeUnreachable with the target node id.
func NewErrNodeUnreachable(nodeID string) error {
	return fmt.Errorf("node=(%s) %w", nodeID, ErrNodeUnreachable)
}

// NewErrInvalidNodeName formats ErrInvalidNodeName with the offending name.
func NewErrInvalidNodeName(name string) error {
	return fmt.Errorf("name=(%s) %w", name, ErrInvalidNodeName)
}

// NewErrPeerNotFound formats ErrPeerNotFound with the peer identifier that
// could not be resolved.
func NewErrPeerNotFound(peer string) error {
	return fmt.Errorf("peer=(%s) %w", peer, ErrPeerNotFound)
}

// DeathReason is the closed sum type describing why a process exited. It
// crosses node boundaries in ProcessDied signals and monitor notifications.
type DeathReason struct {
	kind        deathKind
	description string
	other       string // other process id, set only for LinkedDeath
}

type deathKind uint8

const (
	deathNormal deathKind = iota
	deathException
	deathDisconnected
	deathUnreachable
	deathLinkedDeath
)

// Normal is the death reason for a process that ran its computation to
// completion without an uncaught exception.
func Normal() DeathReason { return DeathReason{kind: deathNormal} }

// Exception is the death reason for a process that unwound due to an
// uncaught error. description carries the error's message.
func Exception(description string) DeathReason {
	return DeathReason{kind: deathException, description: description}
}

// Disconnected is the death reason synthesized by the Node Controller for
// processes with outstanding links or monitors on a node whose connection
// just broke.
func Disconnected() DeathReason { return DeathReason{kind: deathDisconnected} }

// Unreachable is the death reason for a process whose node could never be
// reached in the first place, as opposed to one that was reachable and then
// disconnected.
func Unreachable() DeathReason { return DeathReason{kind: deathUnreachable} }

// LinkedDeath is the death reason propagated transitively through a link:
// otherPid died with reason, and this process is exiting as a consequence.
func LinkedDeath(otherPid string, reason DeathReason) DeathReason {
	return DeathReason{kind: deathLinkedDeath, other: otherPid, description: reason.String()}
}

// IsNormal reports whether the reason is Normal.
func (d DeathReason) IsNormal() bool { return d.kind == deathNormal }

// IsException reports whether the reason is Exception.
func (d DeathReason) IsException() bool { return d.kind == deathException }

// IsDisconnected reports whether the reason is Disconnected.
func (d DeathReason) IsDisconnected() bool { return d.kind == deathDisconnected }

// IsUnreachable reports whether the reason is Unreachable.
func (d DeathReason) IsUnreachable() bool { return d.kind == deathUnreachable }

// IsLinkedDeath reports whether the reason is LinkedDeath.
func (d DeathReason) IsLinkedDeath() bool { return d.kind == deathLinkedDeath }

// Description returns the exception message, or the description of the
// upstream reason for LinkedDeath. Empty for the other kinds.
func (d DeathReason) Description() string { return d.description }

// OtherProcess returns the identifier of the process whose death triggered
// this LinkedDeath. Empty for the other kinds.
func (d DeathReason) OtherProcess() string { return d.other }

// String renders the reason the way it appears in logs and link-exit
// signals.
func (d DeathReason) String() string {
	switch d.kind {
	case deathNormal:
		return "normal"
	case deathException:
		return fmt.Sprintf("exception(%s)", d.description)
	case deathDisconnected:
		return "disconnected"
	case deathUnreachable:
		return "unreachable"
	case deathLinkedDeath:
		return fmt.Sprintf("linked-death(%s, %s)", d.other, d.description)
	default:
		return "unknown"
	}
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// InternalError defines an error that is explicit to the application
type InternalError struct {
	err error
}

// enforce compilation error
var _ error = (*InternalError)(nil)

// NewInternalError returns an intance of InternalError
func NewInternalError(err error) *InternalError {
	return &InternalError{
		err: fmt.Errorf("internal error: %w", err),
	}
}

// Error implements the standard error interface
func (i *InternalError) Error() string {
	return i.err.Error()
}

func (i *InternalError) Unwrap() error {
	return i.err
}

// SpawnError defines an error when resolving or starting a process from a
// closure
type SpawnError struct {
	err error
}

var _ error = (*SpawnError)(nil)

// NewSpawnError returns an instance of SpawnError
func NewSpawnError(err error) *SpawnError {
	return &SpawnError{
		err: fmt.Errorf("spawn error: %w", err),
	}
}

// Error implements the standard error interface
func (s *SpawnError) Error() string {
	return s.err.Error()
}

func (s *SpawnError) Unwrap() error {
	return s.err
}
