package reread

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestRunRepeatsQuestionInPrompt(t *testing.T) {
	be := mock.New(mock.Response{Text: "Answer: 42", Usage: &core.TokenUsage{OutputTokens: 2}})

	sol, meta, err := Run(context.Background(), "What is the answer?", "system", DefaultConfig(), be)
	require.NoError(t, err)
	require.Equal(t, "42", sol.Answer)
	require.Equal(t, 2, meta.TotalTokens)

	require.Len(t, be.Prompts, 1)
	userText := be.Prompts[0].Messages[1].Text()
	require.Contains(t, userText, "What is the answer?\n\nRead the question again: What is the answer?")
}

func TestValidateRejectsNegativeTemperature(t *testing.T) {
	cfg := Config{Temperature: -1}
	require.Error(t, cfg.Validate())
}
