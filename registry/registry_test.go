package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresEndpoints(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoints cannot be empty")
}

func TestNewClientFromEnvUnset(t *testing.T) {
	t.Setenv(EndpointsEnv, "")
	client, err := NewClientFromEnv()
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewTLSInfo(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		info, err := newTLSInfo(nil)
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("disabled", func(t *testing.T) {
		info, err := newTLSInfo(&TLSConfig{Enabled: false, CertFile: "c"})
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("missing files", func(t *testing.T) {
		cases := []TLSConfig{
			{Enabled: true, KeyFile: "k", CAFile: "ca"},
			{Enabled: true, CertFile: "c", CAFile: "ca"},
			{Enabled: true, CertFile: "c", KeyFile: "k"},
		}
		for _, cfg := range cases {
			_, err := newTLSInfo(&cfg)
			assert.Error(t, err)
		}
	})

	t.Run("complete", func(t *testing.T) {
		info, err := newTLSInfo(&TLSConfig{
			Enabled: true, CertFile: "c", KeyFile: "k", CAFile: "ca",
		})
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "c", info.CertFile)
	})
}

func TestBuildKey(t *testing.T) {
	c := &Client{namespace: "dominator"}
	key := c.buildKey("rocketsim", "abc-123")
	assert.Equal(t, "/dominator/simulators/rocketsim/abc-123", key)
}

func TestProbeRequiresEndpoint(t *testing.T) {
	err := Probe(context.Background(), "", "dominator.sim")
	require.Error(t, err)
}

func TestProbeUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Probe(ctx, "127.0.0.1:1", "dominator.sim")
	require.Error(t, err)
}
