package cotdecoding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestRunAppendsStepScaffold(t *testing.T) {
	be := mock.New(mock.Response{Text: "Step 1. Step 2. Final Answer: 42", Usage: &core.TokenUsage{OutputTokens: 9}})
	cfg := DefaultConfig()
	cfg.Steps = 2

	sol, meta, err := Run(context.Background(), "What is the answer?", "You are helpful.", cfg, be)
	require.NoError(t, err)
	require.Equal(t, "42", sol.Answer)
	require.Equal(t, 9, meta.TotalTokens)
	require.Equal(t, 2, meta.Extra["steps"])

	require.Len(t, be.Prompts, 1)
	sys := be.Prompts[0].Messages[0].Text()
	require.Contains(t, sys, "Step 1")
	require.Contains(t, sys, "Step 2")
	require.NotContains(t, sys, "Step 3")
}

func TestValidateRejectsZeroSteps(t *testing.T) {
	cfg := Config{Steps: 0}
	require.Error(t, cfg.Validate())
}
