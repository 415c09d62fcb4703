package deepthinking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestRunCarriesConfigToMetadata(t *testing.T) {
	be := mock.New(mock.Response{Text: "Final Answer: done", Usage: &core.TokenUsage{OutputTokens: 4}})
	cfg := DefaultConfig()

	sol, meta, err := Run(context.Background(), "query", "system", cfg, be)
	require.NoError(t, err)
	require.Equal(t, "done", sol.Answer)
	require.Equal(t, cfg.MinTokens, meta.Extra["min_tokens"])
	require.Equal(t, cfg.Iterations, meta.Extra["iterations"])
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	cfg := Config{MinTokens: 100, MaxTokens: 10, Iterations: 1}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroIterations(t *testing.T) {
	cfg := Config{MinTokens: 10, MaxTokens: 100, Iterations: 0}
	require.Error(t, cfg.Validate())
}
