package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetaGetString(t *testing.T) {
	m := Meta{"region": "us-east-1", "count": 3}

	region, err := m.GetString("region")
	require.NoError(t, err)
	require.Equal(t, "us-east-1", region)

	_, err = m.GetString("missing")
	require.Error(t, err)

	_, err = m.GetString("count")
	require.Error(t, err)
}

func TestMetaGetIntAndBool(t *testing.T) {
	m := Meta{"replicas": 5, "ready": true}

	n, err := m.GetInt("replicas")
	require.NoError(t, err)
	require.Equal(t, 5, n)

	ready, err := m.GetBool("ready")
	require.NoError(t, err)
	require.True(t, *ready)

	_, err = m.GetInt("ready")
	require.Error(t, err)
}

func TestMetaGetMapString(t *testing.T) {
	m := Meta{"tags": map[string]string{"zone": "a"}}

	tags, err := m.GetMapString("tags")
	require.NoError(t, err)
	require.Equal(t, "a", tags["zone"])

	_, err = m.GetMapString("missing")
	require.Error(t, err)
}
