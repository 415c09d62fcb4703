package core

import "testing"

import "github.com/stretchr/testify/require"

func TestAddVerificationPassEMA(t *testing.T) {
	var s Solution
	s.AddVerificationPass(1.0)
	require.InDelta(t, 0.5, s.VerificationScore, 1e-9)
	s.AddVerificationPass(1.0)
	require.InDelta(t, 0.75, s.VerificationScore, 1e-9)
	require.Equal(t, 2, s.VerificationPasses)
}

func TestIsVerified(t *testing.T) {
	s := Solution{VerificationPasses: 2}
	require.True(t, s.IsVerified())

	s.AddVerificationFailure()
	require.False(t, s.IsVerified())

	s2 := Solution{VerificationPasses: 1}
	require.False(t, s2.IsVerified())
}

func TestAnswerReasoningIndependentlySet(t *testing.T) {
	s := Solution{Answer: "42"}
	require.Empty(t, s.Reasoning)
	require.NotEmpty(t, s.Answer)
}
