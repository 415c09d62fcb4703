package mars

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/core"
)

func TestRegisterSeedsSuccessRate(t *testing.T) {
	n := newStrategyNetwork()
	entry := n.register("decompose the problem", "decomposition", "agent-0", true, time.Time{})
	require.Equal(t, 1.0, entry.SuccessRate)
}

func TestRegisterAppliesEMAOnRepeat(t *testing.T) {
	n := newStrategyNetwork()
	n.register("decompose the problem", "decomposition", "agent-0", true, time.Time{})
	entry := n.register("decompose the problem", "decomposition", "agent-1", false, time.Time{})
	require.InDelta(t, 0.8, entry.SuccessRate, 1e-9)
}

func TestAllPreservesDiscoveryOrder(t *testing.T) {
	n := newStrategyNetwork()
	n.register("first", "t1", "agent-0", true, time.Time{})
	n.register("second", "t2", "agent-0", true, time.Time{})
	entries := n.all()
	require.Len(t, entries, 2)
	require.Equal(t, "first", entries[0].Description)
	require.Equal(t, "second", entries[1].Description)
}

func TestPlaceholderExtractorReturnsFixedDescriptors(t *testing.T) {
	descriptors, tokens, err := PlaceholderExtractor(context.Background(), core.Solution{}, nil)
	require.NoError(t, err)
	require.Equal(t, 0, tokens)
	require.Len(t, descriptors, 2)
}
