package mcts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/optillm-go/optillm/backend/mock"
	"github.com/optillm-go/optillm/core"
)

func TestIsTerminalOnGoodbye(t *testing.T) {
	cfg := DefaultConfig()
	state := DialogueState{CurrentQuery: "Goodbye for now"}
	require.True(t, cfg.IsTerminal(state))
}

func TestIsTerminalOnHistoryLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxHistoryLength = 2
	state := DialogueState{History: []DialogueMessage{{}, {}, {}}}
	require.True(t, cfg.IsTerminal(state))
}

func TestIsTerminalFalseOtherwise(t *testing.T) {
	cfg := DefaultConfig()
	state := DialogueState{CurrentQuery: "What is 2+2?"}
	require.False(t, cfg.IsTerminal(state))
}

func TestSearchWithZeroSimulationsReturnsInitialUnchanged(t *testing.T) {
	be := mock.New()
	cfg := DefaultConfig()
	cfg.NumSimulations = 0
	tree := New(cfg)
	initial := DialogueState{CurrentQuery: "What is 2+2?"}

	out, tokens, err := tree.Search(context.Background(), initial, "system", be)
	require.NoError(t, err)
	require.Equal(t, initial, out)
	require.Equal(t, 0, tokens)
	require.Empty(t, be.Prompts)
}

func TestSearchRootVisitCountEqualsNumSimulations(t *testing.T) {
	responses := make([]mock.Response, 0, 64)
	for i := 0; i < 64; i++ {
		responses = append(responses, mock.Response{Text: "0.7", Usage: &core.TokenUsage{OutputTokens: 1}})
	}
	be := mock.New(responses...)

	cfg := DefaultConfig()
	cfg.NumSimulations = 3
	cfg.NumActions = 2
	cfg.SimulationDepth = 1
	tree := New(cfg)
	initial := DialogueState{CurrentQuery: "What is 2+2?"}

	_, _, err := tree.Search(context.Background(), initial, "system", be)
	require.NoError(t, err)

	visits := 0
	for _, n := range tree.nodes {
		if n.parent == -1 {
			visits = n.visits
		}
	}
	require.Equal(t, cfg.NumSimulations, visits)
}

func TestSearchTerminalInitialStateSkipsExpansion(t *testing.T) {
	be := mock.New(mock.Response{Text: "0.5"})
	cfg := DefaultConfig()
	cfg.NumSimulations = 1
	tree := New(cfg)
	initial := DialogueState{CurrentQuery: "Goodbye, thanks for the help"}

	out, _, err := tree.Search(context.Background(), initial, "system", be)
	require.NoError(t, err)
	require.Equal(t, initial.CurrentQuery, out.CurrentQuery)
}
