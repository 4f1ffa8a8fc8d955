package id

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessIDNeverCompareEqualAcrossNodes(t *testing.T) {
	n1 := NewNodeID("a", "127.0.0.1", 9001)
	n2 := NewNodeID("b", "127.0.0.1", 9002)
	p1 := NewProcessID(n1, 1)
	p2 := NewProcessID(n2, 1)
	assert.False(t, p1.Equal(p2))
}

func TestProcessIDRoundTripsThroughGob(t *testing.T) {
	node := NewNodeID("n1", "10.0.0.1", 4000)
	pid := NewProcessID(node, 42)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(pid))

	var decoded ProcessID
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))
	assert.True(t, pid.Equal(decoded))
	assert.Equal(t, pid.String(), decoded.String())
}

func TestMonitorRefRoundTripsThroughGob(t *testing.T) {
	node := NewNodeID("n1", "10.0.0.1", 4000)
	target := NewProcessID(node, 7)
	ref := NewMonitorRef(target, 3)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(ref))

	var decoded MonitorRef
	require.NoError(t, gob.NewDecoder(&buf).Decode(&decoded))
	assert.True(t, ref.Equal(decoded))
}

func TestProcessIDLessIsAStrictOrder(t *testing.T) {
	node := NewNodeID("n1", "10.0.0.1", 4000)
	a := NewProcessID(node, 1)
	b := NewProcessID(node, 2)
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.False(t, a.Less(a))
}
