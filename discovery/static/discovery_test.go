package static

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyrefab/distproc/discovery"
	"github.com/wyrefab/distproc/log"
)

func TestStaticProvider(t *testing.T) {
	t.Run("With new instance", func(t *testing.T) {
		logger := log.DefaultLogger
		var nodes []*discovery.Node
		provider := NewDiscovery(nodes, logger)
		require.NotNil(t, provider)
		assert.IsType(t, &Discovery{}, provider)
		var p interface{} = provider
		_, ok := p.(discovery.Discovery)
		assert.True(t, ok)
	})
	t.Run("With ID assertion", func(t *testing.T) {
		logger := log.DefaultLogger
		var nodes []*discovery.Node
		provider := NewDiscovery(nodes, logger)
		require.NotNil(t, provider)
		assert.Equal(t, "static", provider.ID())
	})
	t.Run("With Start", func(t *testing.T) {
		ctx := context.TODO()
		logger := log.DefaultLogger
		nodes := []*discovery.Node{
			{
				Name:          "node-1",
				Host:          "localhost",
				DiscoveryPort: 1111,
				PeersPort:     1112,
				StartTime:     time.Now().Add(time.Second).UnixMilli(),
			},
		}
		provider := NewDiscovery(nodes, logger)
		require.NotNil(t, provider)
		assert.NoError(t, provider.Start(ctx))
		assert.NoError(t, provider.Stop())
	})
	t.Run("With failed Start", func(t *testing.T) {
		ctx := context.TODO()
		logger := log.DefaultLogger
		var nodes []*discovery.Node
		provider := NewDiscovery(nodes, logger)
		require.NotNil(t, provider)
		assert.Error(t, provider.Start(ctx))
	})
	t.Run("With Nodes", func(t *testing.T) {
		ctx := context.TODO()
		logger := log.DefaultLogger
		nodes := []*discovery.Node{
			{
				Name:          "node-1",
				Host:          "localhost",
				DiscoveryPort: 1111,
				PeersPort:     1112,
				StartTime:     time.Now().Add(time.Second).UnixMilli(),
			},
		}
		provider := NewDiscovery(nodes, logger)
		require.NotNil(t, provider)
		assert.NoError(t, provider.Start(ctx))

		actual, err := provider.Nodes(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, actual)
		require.Len(t, actual, 1)

		assert.NoError(t, provider.Stop())
	})
	t.Run("With Nodes before Start", func(t *testing.T) {
		ctx := context.TODO()
		logger := log.DefaultLogger
		nodes := []*discovery.Node{
			{Name: "node-1", Host: "localhost", DiscoveryPort: 1111},
		}
		provider := NewDiscovery(nodes, logger)
		_, err := provider.Nodes(ctx)
		assert.Error(t, err)
	})
	t.Run("With Earliest node", func(t *testing.T) {
		ctx := context.TODO()
		logger := log.DefaultLogger
		ts := time.Now()
		nodes := []*discovery.Node{
			{
				Name:          "node-1",
				Host:          "localhost",
				DiscoveryPort: 1111,
				PeersPort:     1112,
				StartTime:     ts.AddDate(0, 0, -1).UnixMilli(),
			},
			{
				Name:          "node-2",
				Host:          "localhost",
				DiscoveryPort: 1113,
				PeersPort:     1114,
				StartTime:     ts.Add(time.Second).UnixMilli(),
			},
		}
		provider := NewDiscovery(nodes, logger)
		require.NotNil(t, provider)
		assert.NoError(t, provider.Start(ctx))

		actual, err := provider.EarliestNode(ctx)
		require.NoError(t, err)
		require.NotNil(t, actual)

		expected := &discovery.Node{
			Name:          "node-1",
			Host:          "localhost",
			DiscoveryPort: 1111,
			PeersPort:     1112,
			StartTime:     ts.AddDate(0, 0, -1).UnixMilli(),
		}
		assert.True(t, cmp.Equal(expected, actual))
		assert.NoError(t, provider.Stop())
	})
	t.Run("With Stop before Start", func(t *testing.T) {
		logger := log.DefaultLogger
		var nodes []*discovery.Node
		provider := NewDiscovery(nodes, logger)
		assert.Error(t, provider.Stop())
	})
	t.Run("With NewDiscoveryFromConfig", func(t *testing.T) {
		ctx := context.TODO()
		logger := log.DefaultLogger
		cfg := Config{Hosts: []string{"10.0.0.1:3000", "10.0.0.2:3000"}}

		provider, err := NewDiscoveryFromConfig(cfg, logger)
		require.NoError(t, err)
		require.NotNil(t, provider)

		require.NoError(t, provider.Start(ctx))
		nodes, err := provider.Nodes(ctx)
		require.NoError(t, err)
		require.Len(t, nodes, 2)
		assert.Equal(t, "10.0.0.1", nodes[0].Host)
		assert.Equal(t, 3000, nodes[0].DiscoveryPort)
		assert.Equal(t, 3001, nodes[0].PeersPort)
		assert.Equal(t, 3002, nodes[0].RemotingPort)
	})
	t.Run("With NewDiscoveryFromConfig invalid config", func(t *testing.T) {
		logger := log.DefaultLogger
		cfg := Config{}
		_, err := NewDiscoveryFromConfig(cfg, logger)
		assert.Error(t, err)
	})
}
