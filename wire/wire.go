// Package wire implements the serializer interface consumed by the rest of
// the core: every payload that crosses a mailbox or a
// connection is tagged with a stable type fingerprint and encoded/decoded
// by that fingerprint. Matchers in package mailbox compare fingerprints
// before ever attempting a decode.
package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a stable digest of a payload's static Go type. Two values
// produce the same Fingerprint iff reflect.TypeOf reports the same type,
// which is the property the mailbox's selective receive relies on: a
// matcher's expected fingerprint is computed once from its type parameter
// and compared against every queued Message's fingerprint before decoding.
type Fingerprint uint64

// FingerprintOf computes the Fingerprint of v's runtime type. Passing a nil
// interface value fingerprints the static type T via a typed nil, which is
// what callers should do: FingerprintOf((*T)(nil)) style helpers are
// provided per call site rather than here, since Go has no standalone
// "type value" outside of reflect.
func FingerprintOf(v any) Fingerprint {
	return fingerprintType(reflect.TypeOf(v))
}

// FingerprintType computes the Fingerprint of a reflect.Type directly. Used
// by generic callers (package channel, package mailbox) that only have a
// type parameter and construct the reflect.Type via reflect.TypeOf((*T)(nil)).Elem().
func FingerprintType(t reflect.Type) Fingerprint {
	return fingerprintType(t)
}

var (
	fpMu    sync.RWMutex
	fpCache = map[reflect.Type]Fingerprint{}
)

func fingerprintType(t reflect.Type) Fingerprint {
	fpMu.RLock()
	fp, ok := fpCache[t]
	fpMu.RUnlock()
	if ok {
		return fp
	}

	name := typeName(t)
	sum := xxhash.Sum64([]byte(name))

	fpMu.Lock()
	fpCache[t] = Fingerprint(sum)
	fpMu.Unlock()
	return Fingerprint(sum)
}

// typeName produces a fully package-path-qualified name so that two
// distinct types named the same in different packages never collide, and
// so that the fingerprint is stable across process restarts (it does not
// depend on map iteration order or pointer identity).
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.String()
	}
	return t.String()
}

// Message is the unit of mailbox storage: a fingerprinted, already-encoded
// payload. Decoding is only attempted by a matcher whose
// expected fingerprint equals Fingerprint.
type Message struct {
	Fingerprint Fingerprint
	Payload     []byte
}

// Encode fingerprints and gob-encodes v into a Message ready to enqueue
// locally or frame onto a connection.
func Encode(v any) (Message, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return Message{}, fmt.Errorf("wire: encode: %w", err)
	}
	return Message{
		Fingerprint: FingerprintOf(v),
		Payload:     buf.Bytes(),
	}, nil
}

// Decode decodes m's payload into *out. Callers must have already checked
// m.Fingerprint against the expected type's fingerprint; Decode itself does
// not re-derive the expected fingerprint, since the caller already has a
// typed destination and gob will itself reject structurally incompatible
// payloads.
func Decode(m Message, out any) error {
	dec := gob.NewDecoder(bytes.NewReader(m.Payload))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("wire: decode: %w", err)
	}
	return nil
}

// Register records T's concrete type with the gob codec so that values of
// T can be carried inside interface-typed fields (closure environments,
// NCMsg signal payloads). It mirrors gob.Register and should be called
// once at init time for every concrete type an application sends.
func Register(value any) {
	gob.Register(value)
}
