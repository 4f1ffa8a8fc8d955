package errors

import (
	"bytes"
	"encoding/gob"
)

// deathReasonWire mirrors DeathReason's unexported fields so it survives
// encoding/gob, which only encodes exported fields. DeathReason crosses
// node boundaries inside LinkExit and MonitorNotification messages, so
// without this it would decode as a zero value (silently becoming Normal)
// on the receiving node.
type deathReasonWire struct {
	Kind        deathKind
	Description string
	Other       string
}

func (d DeathReason) GobEncode() ([]byte, error) {
	return gobEncode(deathReasonWire{Kind: d.kind, Description: d.description, Other: d.other})
}

func (d *DeathReason) GobDecode(data []byte) error {
	var w deathReasonWire
	if err := gobDecode(data, &w); err != nil {
		return err
	}
	d.kind = w.Kind
	d.description = w.Description
	d.other = w.Other
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
