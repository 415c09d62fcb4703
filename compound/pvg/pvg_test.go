package pvg

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
)

func TestKeepsGlobalMaxAcrossRounds(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Final Answer: weak"},
		mock.Response{Text: "Final Answer: weak-sneaky"},
		mock.Response{Text: "Score: 3"},
		mock.Response{Text: "Score: 2"},
		mock.Response{Text: "Final Answer: refined question"},

		mock.Response{Text: "Final Answer: strong"},
		mock.Response{Text: "Final Answer: strong-sneaky"},
		mock.Response{Text: "Score: 9"},
		mock.Response{Text: "Score: 4"},
	)
	cfg := Config{NumRounds: 2, NumSolutions: 1, InitialTemperature: 0.9, MaxTokens: 256}
	sol, meta, err := Run(context.Background(), "question", "system", cfg, be)
	require.NoError(t, err)
	require.Equal(t, "strong", sol.Answer)
	require.InDelta(t, 0.9, sol.VerificationScore, 1e-9)
	scores, ok := meta.Extra["round_scores"].([]float64)
	require.True(t, ok)
	require.Len(t, scores, 2)
}

func TestRefinedQueryNotFedIntoNextRoundPrompt(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Final Answer: a1"},
		mock.Response{Text: "Final Answer: a2"},
		mock.Response{Text: "Score: 5"},
		mock.Response{Text: "Score: 5"},
		mock.Response{Text: "Final Answer: totally different refined question"},

		mock.Response{Text: "Final Answer: b1"},
		mock.Response{Text: "Final Answer: b2"},
		mock.Response{Text: "Score: 6"},
		mock.Response{Text: "Score: 6"},
	)
	cfg := Config{NumRounds: 2, NumSolutions: 1, InitialTemperature: 0.9, MaxTokens: 256}
	_, _, err := Run(context.Background(), "original question", "system", cfg, be)
	require.NoError(t, err)

	for _, p := range be.Prompts {
		for _, m := range p.Messages {
			require.NotContains(t, m.Text(), "totally different refined question")
		}
	}
}

func TestTemperatureClampedAtMinimum(t *testing.T) {
	be := mock.New(mock.Response{Text: "Final Answer: x"}, mock.Response{Text: "Score: 5"})
	cfg := Config{NumRounds: 10, NumSolutions: 1, InitialTemperature: 0.2, MaxTokens: 128}
	_, _, err := Run(context.Background(), "q", "system", cfg, be)
	require.NoError(t, err)
	for _, p := range be.Prompts {
		// Verification calls run at a fixed 0.0; only round generation is clamped.
		if strings.Contains(p.Messages[len(p.Messages)-1].Text(), "Score this answer's correctness") {
			continue
		}
		require.GreaterOrEqual(t, p.Temperature, 0.1)
	}
}
