package bestofn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/core"
)

func TestMostConciseSelectsShortestAnswer(t *testing.T) {
	cands := []candidate{
		{sol: core.Solution{ID: "a", Reasoning: "r", Answer: "42"}},
		{sol: core.Solution{ID: "b", Reasoning: "r", Answer: "The answer is 42"}},
		{sol: core.Solution{ID: "c", Reasoning: "r", Answer: "Indeed, as shown above, the answer is forty-two"}},
	}
	cfg := DefaultConfig()
	cfg.Selection = MostConcise
	scoreCandidates(cands, cfg)
	winner := pickWinner(cands)

	require.Equal(t, "a", winner.sol.ID)
	require.Greater(t, winner.score, 0.0)
	require.LessOrEqual(t, winner.score, 1.0)
}

func TestValidateRejectsBadRange(t *testing.T) {
	cfg := Config{N: 0}
	require.Error(t, cfg.Validate())
}
