package rsa

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestEmptyPopulationIsAggregationError(t *testing.T) {
	be := mock.New()
	_, _, _, err := Run(context.Background(), nil, DefaultConfig(), be)
	require.Error(t, err)
	require.True(t, core.IsAggregation(err))
}

func TestDiversityMetric(t *testing.T) {
	pop := []core.Solution{{ID: "a", Answer: "42"}, {ID: "b", Answer: "42"}, {ID: "c", Answer: "43"}}
	require.InDelta(t, 2.0/3.0, diversityMetric(pop), 1e-9)
}

func TestSynthesisPicksModalAnswer(t *testing.T) {
	selected := []core.Solution{
		{ID: "a", Answer: "42", Reasoning: "r1"},
		{ID: "b", Answer: "42", Reasoning: "r2"},
		{ID: "c", Answer: "43", Reasoning: "r3"},
	}
	sol := aggregate(selected, "test-id", false)
	require.Equal(t, "42", sol.Answer)
}

func TestRunProducesImprovingPopulation(t *testing.T) {
	be := mock.New()
	pop := []core.Solution{
		{ID: "a", Answer: "42", VerificationScore: 0.5},
		{ID: "b", Answer: "42", VerificationScore: 0.4},
	}
	cfg := Config{PopulationSize: 2, SelectionSize: 2, NumIterations: 2, Selection: BestScore, Refinement: Merge, Elitism: true}
	winner, stats, _, err := Run(context.Background(), pop, cfg, be)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.GreaterOrEqual(t, winner.VerificationScore, 0.5)
}
