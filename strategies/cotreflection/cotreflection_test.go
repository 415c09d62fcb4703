package cotreflection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestRunExtractsThinkingAndOutput(t *testing.T) {
	text := "<thinking>step one<reflection>double-checked</reflection></thinking><output>42</output>"
	be := mock.New(mock.Response{Text: text, Usage: &core.TokenUsage{OutputTokens: 11}})

	sol, meta, err := Run(context.Background(), "query", "system", DefaultConfig(), be)
	require.NoError(t, err)
	require.Equal(t, "42", sol.Answer)
	require.Contains(t, sol.Reasoning, "step one")
	require.Contains(t, sol.Reasoning, "double-checked")
	require.Equal(t, false, meta.Extra["is_fallback"])
}

func TestRunFallsBackWhenOutputTagMissing(t *testing.T) {
	be := mock.New(mock.Response{Text: "just a plain answer with no tags"})
	sol, meta, err := Run(context.Background(), "query", "system", DefaultConfig(), be)
	require.NoError(t, err)
	require.Equal(t, "just a plain answer with no tags", sol.Answer)
	require.Equal(t, true, meta.Extra["is_fallback"])
}
