package moa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestPadsWhenFewerThanThreeSucceedWithFallback(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Final Answer: 1"},
		mock.Response{Err: core.New(core.KindClient, "mock", "connection reset")},
		mock.Response{Text: "Final Answer: 1"},
		mock.Response{Text: "critique text"},
		mock.Response{Text: "Final Answer: synthesized"},
	)
	sol, meta, err := Run(context.Background(), "question", "system", DefaultConfig(), be)
	require.NoError(t, err)
	require.Equal(t, "synthesized", sol.Answer)
	candidates, ok := meta.Extra["candidates"].([]string)
	require.True(t, ok)
	require.Len(t, candidates, 3)
}

func TestAllThreeFailIsAggregationError(t *testing.T) {
	failing := core.New(core.KindClient, "mock", "down")
	be := mock.New(
		mock.Response{Err: failing},
		mock.Response{Err: failing},
		mock.Response{Err: failing},
	)
	_, _, err := Run(context.Background(), "question", "system", DefaultConfig(), be)
	require.Error(t, err)
	require.True(t, core.IsAggregation(err))
}

func TestFewerThanThreeWithFallbackDisabledIsAggregationError(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Final Answer: 1"},
		mock.Response{Err: core.New(core.KindClient, "mock", "connection reset")},
	)
	cfg := DefaultConfig()
	cfg.FallbackEnabled = false
	_, _, err := Run(context.Background(), "question", "system", cfg, be)
	require.Error(t, err)
	require.True(t, core.IsAggregation(err))
}
