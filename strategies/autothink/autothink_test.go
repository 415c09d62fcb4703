package autothink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestClassifySimpleQuery(t *testing.T) {
	cfg := DefaultConfig()
	score := Score("What is 2+2?")
	require.Less(t, score, cfg.SimpleThreshold)
	require.Equal(t, Simple, Classify(score, cfg))
	require.Equal(t, cfg.SimpleTemperature, TemperatureFor(Simple, cfg))
}

func TestClassifyComplexQuery(t *testing.T) {
	cfg := DefaultConfig()
	query := "Prove that the set of all prime numbers is infinite using proof by contradiction; " +
		"analyze the algorithm and its edge cases rigorously"
	score := Score(query)
	require.GreaterOrEqual(t, score, cfg.ComplexThreshold)
	require.Equal(t, Complex, Classify(score, cfg))
	require.Equal(t, cfg.ComplexTemperature, TemperatureFor(Complex, cfg))
}

func TestScoreIsDeterministicAndBounded(t *testing.T) {
	query := "Why does this recursive algorithm terminate?"
	first := Score(query)
	second := Score(query)
	require.Equal(t, first, second)
	require.GreaterOrEqual(t, first, 0.0)
	require.LessOrEqual(t, first, 1.0)
}

func TestRunReturnsTemperatureForClassifiedLevel(t *testing.T) {
	be := mock.New(mock.Response{Text: "Answer: 4", Usage: &core.TokenUsage{InputTokens: 5, OutputTokens: 2}})
	sol, meta, err := Run(context.Background(), "What is 2+2?", "You are a helpful assistant.", DefaultConfig(), be)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().SimpleTemperature, sol.Temperature)
	require.Equal(t, 7, meta.TotalTokens)
	require.Equal(t, Simple, meta.Extra["complexity"])
}

func TestRunRejectsEmptyQuery(t *testing.T) {
	be := mock.New(mock.Response{Text: "x"})
	_, _, err := Run(context.Background(), "", "system", DefaultConfig(), be)
	require.Error(t, err)
}
