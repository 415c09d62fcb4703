package rstar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestRunCarriesConfigToMetadata(t *testing.T) {
	be := mock.New(mock.Response{Text: "Answer: ok", Usage: &core.TokenUsage{OutputTokens: 5}})
	cfg := DefaultConfig()

	sol, meta, err := Run(context.Background(), "query", "system", cfg, be)
	require.NoError(t, err)
	require.Equal(t, "ok", sol.Answer)
	require.Equal(t, cfg.Simulations, meta.Extra["simulations"])
	require.Equal(t, cfg.Candidates, meta.Extra["candidates"])
}

func TestValidateRejectsNegativeSimulations(t *testing.T) {
	cfg := Config{Simulations: -1, Candidates: 1}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroCandidates(t *testing.T) {
	cfg := Config{Simulations: 1, Candidates: 0}
	require.Error(t, cfg.Validate())
}
