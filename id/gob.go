package id

import (
	"bytes"
	"encoding/gob"
)

// Every identifier type below has unexported fields, so the default gob
// encoding (which only walks exported fields) would silently produce empty
// values. Each type instead implements gob.GobEncoder/GobDecoder over a
// small exported mirror struct, which is what lets a SendPort, a
// ProcessID-addressed reply, or an NCMsg's sender field survive a trip
// across wire.Encode/Decode.

type nodeIDWire struct {
	Name string
	Host string
	Port int
}

func (n NodeID) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(nodeIDWire{n.name, n.host, n.port}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *NodeID) GobDecode(data []byte) error {
	var w nodeIDWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	n.name, n.host, n.port = w.Name, w.Host, w.Port
	return nil
}

type processIDWire struct {
	Node  NodeID
	Index uint64
}

func (p ProcessID) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(processIDWire{p.node, p.index}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *ProcessID) GobDecode(data []byte) error {
	var w processIDWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	p.node, p.index = w.Node, w.Index
	return nil
}

type channelIDWire struct {
	Owner ProcessID
	Index uint64
}

func (c ChannelID) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(channelIDWire{c.owner, c.index}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *ChannelID) GobDecode(data []byte) error {
	var w channelIDWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	c.owner, c.index = w.Owner, w.Index
	return nil
}

type monitorRefWire struct {
	Target  ProcessID
	Counter uint64
}

func (r MonitorRef) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(monitorRefWire{r.target, r.counter}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *MonitorRef) GobDecode(data []byte) error {
	var w monitorRefWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	r.target, r.counter = w.Target, w.Counter
	return nil
}

type spawnRefWire struct {
	Requester ProcessID
	Counter   uint64
}

func (r SpawnRef) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(spawnRefWire{r.requester, r.counter}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *SpawnRef) GobDecode(data []byte) error {
	var w spawnRefWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	r.requester, r.counter = w.Requester, w.Counter
	return nil
}
