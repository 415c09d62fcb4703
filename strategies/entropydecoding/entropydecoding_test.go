package entropydecoding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestRunCarriesConfigToMetadata(t *testing.T) {
	be := mock.New(mock.Response{Text: "Answer: yes", Usage: &core.TokenUsage{OutputTokens: 3}})
	cfg := DefaultConfig()

	sol, meta, err := Run(context.Background(), "query", "system", cfg, be)
	require.NoError(t, err)
	require.Equal(t, "yes", sol.Answer)
	require.Equal(t, cfg.TargetEntropy, meta.Extra["target_entropy"])
	require.Equal(t, cfg.NumSamples, meta.Extra["num_samples"])
}

func TestValidateRejectsOutOfRangeEntropy(t *testing.T) {
	cfg := Config{TargetEntropy: 1.5, NumSamples: 1}
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroSamples(t *testing.T) {
	cfg := Config{TargetEntropy: 0.5, NumSamples: 0}
	require.Error(t, cfg.Validate())
}
