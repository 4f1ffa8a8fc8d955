package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigGetString(t *testing.T) {
	cfg := Config{"subject": "distproc.discovery", "count": 3}

	subject, err := cfg.GetString("subject")
	require.NoError(t, err)
	require.Equal(t, "distproc.discovery", subject)

	_, err = cfg.GetString("missing")
	require.Error(t, err)

	_, err = cfg.GetString("count")
	require.Error(t, err)
}

func TestConfigGetInt(t *testing.T) {
	cfg := Config{"replicas": 4, "timeout": "30", "name": "node-a"}

	n, err := cfg.GetInt("replicas")
	require.NoError(t, err)
	require.Equal(t, 4, n)

	// values arriving as decimal strings (env vars, flags) still coerce.
	n, err = cfg.GetInt("timeout")
	require.NoError(t, err)
	require.Equal(t, 30, n)

	_, err = cfg.GetInt("name")
	require.Error(t, err)

	_, err = cfg.GetInt("missing")
	require.Error(t, err)
}

func TestConfigGetBool(t *testing.T) {
	cfg := Config{"secure": true, "verbose": "false", "name": "node-a"}

	secure, err := cfg.GetBool("secure")
	require.NoError(t, err)
	require.True(t, *secure)

	// values arriving as "true"/"false" strings still coerce.
	verbose, err := cfg.GetBool("verbose")
	require.NoError(t, err)
	require.False(t, *verbose)

	_, err = cfg.GetBool("name")
	require.Error(t, err)

	_, err = cfg.GetBool("missing")
	require.Error(t, err)
}

func TestConfigGetMapString(t *testing.T) {
	cfg := Config{"tags": map[string]string{"zone": "us-east-1"}}

	tags, err := cfg.GetMapString("tags")
	require.NoError(t, err)
	require.Equal(t, "us-east-1", tags["zone"])

	_, err = cfg.GetMapString("missing")
	require.Error(t, err)
}
