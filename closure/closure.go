// Package closure implements serializable deferred computations: a Closure is a (label, environment bytes) pair resolved against a
// process-local RemoteTable built at node boot. spawn, spawnAsync and call
// all take a Closure rather than a function value, since function values
// cannot cross a node boundary.
package closure

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/wyrefab/distproc/errors"
	"github.com/wyrefab/distproc/wire"
)

// Closure is (label, env): label names an entry in a RemoteTable, env is
// the gob-encoded argument that entry's decoder expects.
type Closure struct {
	Label string
	Env   []byte
}

// Reserved labels. User code cannot register under these; the combinators
// below own them so that Seq and Bind round-trip deterministically across
// nodes without the caller having to invent a name.
const (
	LabelSequence = "sequence"
	LabelBind     = "bind"
	LabelLinkBack = "link-back"
	LabelSendResult = "send-result"
)

func isReserved(label string) bool {
	switch label {
	case LabelSequence, LabelBind, LabelLinkBack, LabelSendResult:
		return true
	}
	return false
}

type decoder struct {
	fp     wire.Fingerprint
	decode func(env []byte) (any, error)
}

type continuation struct {
	fp     wire.Fingerprint
	invoke func(env []byte, prior any) (Closure, error)
}

// RemoteTable is the immutable-after-boot map from label to reconstructor
// that closure resolution is checked against. It is built once at node
// startup from RemoteTable.Register calls and then only read.
type RemoteTable struct {
	decoders      map[string]decoder
	continuations map[string]continuation
}

// NewRemoteTable creates an empty RemoteTable. Register every label the
// application needs before the node starts accepting Spawn requests.
func NewRemoteTable() *RemoteTable {
	return &RemoteTable{
		decoders:      map[string]decoder{},
		continuations: map[string]continuation{},
	}
}

// Register records a decoder for label, producing values of type T from an
// environment's gob bytes.
func Register[T any](t *RemoteTable, label string, decode func(env []byte) (T, error)) error {
	if label == "" {
		return errors.ErrUndefinedClosureLabel
	}
	if isReserved(label) {
		return errors.ErrReservedLabel
	}
	t.decoders[label] = decoder{
		fp: wire.FingerprintOf(*new(T)),
		decode: func(env []byte) (any, error) {
			return decode(env)
		},
	}
	return nil
}

// RegisterReserved installs a decoder under one of the reserved labels
// (LabelLinkBack, LabelSendResult). It exists for package node to install
// the runtime's own built-in proxy behaviors under these standard labels,
// which ordinary Register refuses to touch.
func RegisterReserved[T any](t *RemoteTable, label string, decode func(env []byte) (T, error)) error {
	if label != LabelLinkBack && label != LabelSendResult {
		return errors.ErrReservedLabel
	}
	t.decoders[label] = decoder{
		fp: wire.FingerprintOf(*new(T)),
		decode: func(env []byte) (any, error) {
			return decode(env)
		},
	}
	return nil
}

// RegisterBind records a continuation for Bind: given the environment
// captured at Bind-construction time and the prior closure's decoded
// result (of type T), it produces the Closure to run next.
func RegisterBind[T any](t *RemoteTable, label string, fn func(env []byte, prior T) (Closure, error)) error {
	if label == "" {
		return errors.ErrUndefinedClosureLabel
	}
	t.continuations[label] = continuation{
		fp: wire.FingerprintOf(*new(T)),
		invoke: func(env []byte, prior any) (Closure, error) {
			typed, ok := prior.(T)
			if !ok {
				return Closure{}, fmt.Errorf("closure: bind continuation %q expected %T, got %T", label, typed, prior)
			}
			return fn(env, typed)
		},
	}
	return nil
}

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

// SeqEnv is the Seq combinator's environment: run First, discard its
// result, then run Second.
type SeqEnv struct {
	First  Closure
	Second Closure
}

// Seq builds a closure that runs a then b in order and returns b's result.
// It is itself a Closure under the reserved "sequence" label, so it
// round-trips across nodes like any other.
func Seq(a, b Closure) Closure {
	env, err := gobEncode(SeqEnv{First: a, Second: b})
	if err != nil {
		panic(err)
	}
	return Closure{Label: LabelSequence, Env: env}
}

// BindEnv is the Bind combinator's environment: run First, then look up
// ContinuationLabel in the RemoteTable's continuation registry and invoke
// it with First's result and ContinuationEnv to get the closure to run
// next.
type BindEnv struct {
	First              Closure
	ContinuationLabel  string
	ContinuationEnv    []byte
}

// Bind builds a closure that runs a, then passes its result and env to the
// continuation registered under label via RegisterBind.
func Bind(a Closure, continuationLabel string, continuationEnv []byte) Closure {
	env, err := gobEncode(BindEnv{First: a, ContinuationLabel: continuationLabel, ContinuationEnv: continuationEnv})
	if err != nil {
		panic(err)
	}
	return Closure{Label: LabelBind, Env: env}
}

// run evaluates c to a terminal value, recursively resolving Seq and Bind.
func (t *RemoteTable) run(c Closure) (any, error) {
	switch c.Label {
	case LabelSequence:
		var env SeqEnv
		if err := gobDecode(c.Env, &env); err != nil {
			return nil, errors.NewErrClosureResolutionError(c.Label, err)
		}
		if _, err := t.run(env.First); err != nil {
			return nil, err
		}
		return t.run(env.Second)

	case LabelBind:
		var env BindEnv
		if err := gobDecode(c.Env, &env); err != nil {
			return nil, errors.NewErrClosureResolutionError(c.Label, err)
		}
		firstResult, err := t.run(env.First)
		if err != nil {
			return nil, err
		}
		cont, ok := t.continuations[env.ContinuationLabel]
		if !ok {
			return nil, errors.NewErrClosureResolutionError(env.ContinuationLabel, errors.ErrUndefinedClosureLabel)
		}
		next, err := cont.invoke(env.ContinuationEnv, firstResult)
		if err != nil {
			return nil, errors.NewErrClosureResolutionError(env.ContinuationLabel, err)
		}
		return t.run(next)

	default:
		entry, ok := t.decoders[c.Label]
		if !ok {
			return nil, errors.NewErrClosureResolutionError(c.Label, errors.ErrUndefinedClosureLabel)
		}
		v, err := entry.decode(c.Env)
		if err != nil {
			return nil, errors.NewErrClosureResolutionError(c.Label, err)
		}
		return v, nil
	}
}

// UnClosure resolves c against t and checks that the produced value's
// runtime type matches T; a label miss or a type mismatch both surface as
// ErrClosureResolutionError.
func UnClosure[T any](t *RemoteTable, c Closure) (T, error) {
	var zero T
	v, err := t.run(c)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, errors.NewErrClosureResolutionError(c.Label, errors.ErrClosureResolutionError)
	}
	return typed, nil
}
