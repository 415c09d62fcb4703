package leap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestValidateRejectsOutOfRangeTemperature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MistakeTemperature = 3.0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroMaxPrinciples(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPrinciples = 0
	require.Error(t, cfg.Validate())
}

func TestRunWithNoExamplesFallsBackToSingleGeneration(t *testing.T) {
	be := mock.New(mock.Response{Text: "<output>[]</output>", Usage: &core.TokenUsage{OutputTokens: 5}},
		mock.Response{Text: "Final Answer: 42", Usage: &core.TokenUsage{OutputTokens: 3}})

	sol, meta, err := Run(context.Background(), "What is 2+2?", "system", DefaultConfig(), be)
	require.NoError(t, err)
	require.Equal(t, "42", sol.Answer)
	require.Equal(t, 0, meta.Extra["examples_extracted"])
	require.Equal(t, 8, meta.TotalTokens)
}

func TestRunWithExamplesLearnsPrinciples(t *testing.T) {
	extraction := `<output>[{"question":"What is 2+2?","answer":"4"}]</output>`
	mistakeResp := `<output>5</output>` // deliberately wrong, differs from "4"
	lowLevel := `<output>Double-check arithmetic before answering.</output>`
	highLevel := "<output>\n1. Double-check arithmetic.\n</output>"
	final := "Final Answer: 4"

	be := mock.New(
		mock.Response{Text: extraction},
		mock.Response{Text: mistakeResp},
		mock.Response{Text: lowLevel},
		mock.Response{Text: highLevel},
		mock.Response{Text: final},
	)

	sol, meta, err := Run(context.Background(), "What is 2+2?", "system", DefaultConfig(), be)
	require.NoError(t, err)
	require.Equal(t, "4", sol.Answer)
	require.Equal(t, 1, meta.Extra["examples_extracted"])
	require.Equal(t, 1, meta.Extra["mistakes_generated"])
	require.Equal(t, 1, meta.Extra["principles_learned"])
}

func TestExtractExamplesIgnoresMalformedJSON(t *testing.T) {
	be := mock.New(mock.Response{Text: "<output>not json</output>"})
	examples, _, err := extractExamples(context.Background(), be, "system", "query", DefaultConfig())
	require.NoError(t, err)
	require.Empty(t, examples)
}
