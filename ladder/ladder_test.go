package ladder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudiup423/dominator/suite"
)

func testSuite() *suite.Config {
	pinned := 1000.0
	return &suite.Config{
		Name: "standard",
		Tiers: []suite.TierConfig{
			{Name: "baseline", Type: suite.TierScripted, FixedElo: &pinned, Ready: true},
			{Name: "nexto", Type: suite.TierCheckpoint, CheckpointPath: "/models/nexto.pt", Ready: true},
			{Name: "seer", Type: suite.TierCheckpoint, CheckpointPath: "/models/seer.pt", Ready: false},
		},
	}
}

func TestFromSuite(t *testing.T) {
	l, err := FromSuite(testSuite())
	require.NoError(t, err)

	assert.Equal(t, 3, l.Len())
	assert.Equal(t, Scripted, l.Tiers()[0].Type)
	assert.Equal(t, Checkpoint, l.Tiers()[1].Type)

	t.Run("unknown type rejected", func(t *testing.T) {
		cfg := testSuite()
		cfg.Tiers[0].Type = "neural"
		_, err := FromSuite(cfg)
		require.Error(t, err)
	})
}

func TestReady(t *testing.T) {
	l, err := FromSuite(testSuite())
	require.NoError(t, err)

	ready := l.Ready()
	require.Len(t, ready, 2)
	assert.Equal(t, "baseline", ready[0].Name)
	assert.Equal(t, "nexto", ready[1].Name)
}

func TestLookup(t *testing.T) {
	l, err := FromSuite(testSuite())
	require.NoError(t, err)

	tier, ok := l.Lookup("nexto")
	require.True(t, ok)
	assert.Equal(t, "/models/nexto.pt", tier.CheckpointPath)

	_, ok = l.Lookup("unknown")
	assert.False(t, ok)
}

func TestAnchorRating(t *testing.T) {
	l, err := FromSuite(testSuite())
	require.NoError(t, err)

	learned := map[string]float64{"nexto": 1412.5}

	baseline, _ := l.Lookup("baseline")
	assert.Equal(t, 1000.0, baseline.AnchorRating(learned, 1000))

	nexto, _ := l.Lookup("nexto")
	assert.Equal(t, 1412.5, nexto.AnchorRating(learned, 1000))

	seer, _ := l.Lookup("seer")
	assert.Equal(t, 1000.0, seer.AnchorRating(learned, 1000), "no history falls back to initial rating")
}
