package rto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestRunShortCircuitsWhenCodeOnlyDiffersInWhitespace(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Answer: ```\nprint(42)\n```", Usage: &core.TokenUsage{OutputTokens: 3}},
		mock.Response{Text: "Answer: print 42", Usage: &core.TokenUsage{OutputTokens: 2}},
		mock.Response{Text: "Answer: ```\n  print(42)  \n```", Usage: &core.TokenUsage{OutputTokens: 4}},
	)

	sol, meta, err := Run(context.Background(), "write a function", "system", DefaultConfig(), be)
	require.NoError(t, err)

	require.Equal(t, false, meta.Extra["solutions_differed"])
	require.Equal(t, false, meta.Extra["synthesized"])
	require.Equal(t, core.PhaseInitial, sol.Phase)
	require.Equal(t, "```\nprint(42)\n```", sol.Answer)
	require.Equal(t, 9, meta.TotalTokens)
	require.Len(t, be.Prompts, 3)
}

func TestRunSynthesizesWhenCodeDiffers(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Answer: ```\nprint(1)\n```", Usage: &core.TokenUsage{OutputTokens: 1}},
		mock.Response{Text: "Answer: print 1", Usage: &core.TokenUsage{OutputTokens: 1}},
		mock.Response{Text: "Answer: ```\nprint(2)\n```", Usage: &core.TokenUsage{OutputTokens: 1}},
		mock.Response{Text: "Answer: ```\nprint(3)\n```", Usage: &core.TokenUsage{OutputTokens: 1}},
	)

	sol, meta, err := Run(context.Background(), "write a function", "system", DefaultConfig(), be)
	require.NoError(t, err)

	require.Equal(t, true, meta.Extra["solutions_differed"])
	require.Equal(t, true, meta.Extra["synthesized"])
	require.Equal(t, core.PhaseSynthesized, sol.Phase)
	require.Equal(t, "```\nprint(3)\n```", sol.Answer)
	require.Equal(t, 4, meta.TotalTokens)
	require.Len(t, be.Prompts, 4)
}
