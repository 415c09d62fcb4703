package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/core"
)

func TestAddIncrementsLen(t *testing.T) {
	w := New()
	w.Add(core.Solution{ID: "a", Answer: "1"})
	require.Equal(t, 1, w.Len())
	w.Add(core.Solution{ID: "b", Answer: "2"})
	require.Equal(t, 2, w.Len())
}

func TestReplacePreservesLen(t *testing.T) {
	w := New()
	w.Add(core.Solution{ID: "a", Answer: "1"})
	require.NoError(t, w.Replace(core.Solution{ID: "a", Answer: "2"}))
	require.Equal(t, 1, w.Len())
	s, ok := w.Get("a")
	require.True(t, ok)
	require.Equal(t, "2", s.Answer)
}

func TestReplaceMissingErrors(t *testing.T) {
	w := New()
	err := w.Replace(core.Solution{ID: "missing"})
	require.Error(t, err)
	require.True(t, core.IsNoSolutions(err))
}

func TestBestUnverifiedPicksShortest(t *testing.T) {
	w := New()
	w.Add(core.Solution{ID: "a", Answer: "a long answer here"})
	w.Add(core.Solution{ID: "b", Answer: "42"})
	w.Add(core.Solution{ID: "c", Answer: "a longer answer", VerificationFailures: 1})
	best, ok := w.BestUnverified()
	require.True(t, ok)
	require.Equal(t, "b", best.ID)
}

func TestSortedByScoreDescending(t *testing.T) {
	w := New()
	w.Add(core.Solution{ID: "a", VerificationScore: 0.2})
	w.Add(core.Solution{ID: "b", VerificationScore: 0.8})
	sorted := w.SortedByScore()
	require.Equal(t, "b", sorted[0].ID)
	require.Equal(t, "a", sorted[1].ID)
}
