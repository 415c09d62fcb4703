package diversesampling

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestRunReturnsFirstSampleAndCountsUniqueAnswers(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Answer: 42", Usage: &core.TokenUsage{OutputTokens: 1}},
		mock.Response{Text: "Answer: 42", Usage: &core.TokenUsage{OutputTokens: 1}},
		mock.Response{Text: "Answer: 43", Usage: &core.TokenUsage{OutputTokens: 1}},
	)
	cfg := DefaultConfig()
	cfg.N = 3

	sol, meta, err := Run(context.Background(), "query", "system", cfg, be)
	require.NoError(t, err)
	require.Equal(t, "42", sol.Answer)
	require.Equal(t, 2, meta.Extra["unique_answers"])
	require.Equal(t, 3, meta.TotalTokens)

	samples, ok := meta.Extra["samples"].([]core.Solution)
	require.True(t, ok)
	require.Len(t, samples, 3)
}

func TestValidateRejectsInvertedTemperatures(t *testing.T) {
	cfg := Config{N: 1, MinTemperature: 1.0, MaxTemperature: 0.2}
	require.Error(t, cfg.Validate())
}
