package selfconsistency

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMajorityVoteTally(t *testing.T) {
	paths := []path{
		{answer: "42", reasoning: "a"},
		{answer: "42", reasoning: "b"},
		{answer: "43", reasoning: "c"},
	}
	answer, score, tally := tallyVotes(paths, MajorityVote)
	require.Equal(t, "42", answer)
	require.InDelta(t, 2.0/3.0, score, 1e-9)
	require.Equal(t, 2, tally["42"])
	require.Equal(t, 1, tally["43"])
}

func TestSingleCandidateConsensus(t *testing.T) {
	paths := []path{{answer: "42", reasoning: "a"}}
	answer, score, _ := tallyVotes(paths, MajorityVote)
	require.Equal(t, "42", answer)
	require.Equal(t, 1.0, score)
}
