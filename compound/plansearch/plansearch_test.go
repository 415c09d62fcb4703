package plansearch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestValidateRejectsOutOfRangeTemperature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SolutionTemperature = -1
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroInitialObservations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumInitialObservations = 0
	require.Error(t, cfg.Validate())
}

func TestRunProducesCodeFromFencedBlock(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Observation one\nObservation two", Usage: &core.TokenUsage{OutputTokens: 5}},
		mock.Response{Text: "Derived observation", Usage: &core.TokenUsage{OutputTokens: 5}},
		mock.Response{Text: "Quoting observation one, do X then Y.", Usage: &core.TokenUsage{OutputTokens: 5}},
		mock.Response{Text: "```python\ndef solve():\n    return 42\n```", Usage: &core.TokenUsage{OutputTokens: 5}},
	)

	sol, meta, err := Run(context.Background(), "problem", "system", DefaultConfig(), be)
	require.NoError(t, err)
	require.Contains(t, sol.Answer, "def solve")
	require.NotContains(t, sol.Answer, "```")
	require.Equal(t, 3, meta.Extra["observations_count"])
	require.Equal(t, 20, meta.TotalTokens)
}

func TestRunWithNoFenceReturnsTextUnchanged(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Observation one"},
		mock.Response{Text: "Derived one"},
		mock.Response{Text: "Natural language solution."},
		mock.Response{Text: "plain text with no code fence"},
	)

	sol, _, err := Run(context.Background(), "problem", "system", DefaultConfig(), be)
	require.NoError(t, err)
	require.Equal(t, "plain text with no code fence", sol.Answer)
}
