package mars

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/workspace"
)

var assertErr = errors.New("simulated verifier failure")

func newTestWorkspace() *workspace.Workspace {
	return workspace.New()
}

func TestValidateRejectsTooFewTemperatures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAgents = 5
	require.Error(t, cfg.Validate())
}

func TestMajorityVotingSynthesis(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Final Answer: 42", Usage: &core.TokenUsage{OutputTokens: 3}},
		mock.Response{Text: "Final Answer: 42", Usage: &core.TokenUsage{OutputTokens: 3}},
		mock.Response{Text: "Final Answer: 43", Usage: &core.TokenUsage{OutputTokens: 3}},
		mock.Response{Text: "RESULT: INCORRECT\nSCORE: 0.3", Usage: &core.TokenUsage{OutputTokens: 2}},
	)

	cfg := DefaultConfig()
	cfg.NumAgents = 3
	cfg.MaxIterations = 0
	coord, err := New(cfg, be)
	require.NoError(t, err)

	out, err := coord.Run(context.Background(), "query", "system")
	require.NoError(t, err)
	require.Equal(t, MajorityVoting, out.SelectionMethod)
	require.Equal(t, "42", out.Answer)
	require.Len(t, out.Solutions, 3)
}

func TestSynthesisOnEmptyWorkspaceIsNoSolutionsError(t *testing.T) {
	coord := &Coordinator{cfg: DefaultConfig(), network: newStrategyNetwork()}
	_, err := coord.phase5Synthesis(newTestWorkspace())
	require.True(t, core.IsNoSolutions(err))
}

func TestVerificationErrorContinuesTheLoop(t *testing.T) {
	be := mock.New(
		mock.Response{Text: "Final Answer: 1", Usage: &core.TokenUsage{OutputTokens: 1}},
		mock.Response{Err: assertErr},
	)

	cfg := DefaultConfig()
	cfg.NumAgents = 1
	cfg.MaxIterations = 0
	coord, err := New(cfg, be)
	require.NoError(t, err)

	out, err := coord.Run(context.Background(), "query", "system")
	require.NoError(t, err)
	require.Equal(t, Synthesized, out.SelectionMethod)
}

func TestUnverifiedMajorityWinsOverBestVerified(t *testing.T) {
	ws := newTestWorkspace()
	verified := core.Solution{ID: "v1", AgentID: "a", Answer: "good", VerificationPasses: 2, VerificationScore: 0.9}
	unverifiedA := core.Solution{ID: "u1", AgentID: "b", Answer: "x"}
	unverifiedB := core.Solution{ID: "u2", AgentID: "c", Answer: "x"}
	ws.Add(verified)
	ws.Add(unverifiedA)
	ws.Add(unverifiedB)

	coord := &Coordinator{cfg: DefaultConfig(), network: newStrategyNetwork()}
	out, err := coord.phase5Synthesis(ws)
	require.NoError(t, err)
	require.Equal(t, MajorityVoting, out.SelectionMethod)
	require.Equal(t, "x", out.Answer)
}
