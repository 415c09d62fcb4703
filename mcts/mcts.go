// Package mcts implements Monte Carlo Tree Search over dialogue states:
// selection by UCB, expansion by backend-generated candidate responses,
// random-rollout simulation, and backpropagation. The tree is arena-
// indexed (nodes live in a slice; parent/children are indices, never
// pointers) so the root is the only node without a parent.
package mcts

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/parsing"
	"github.com/optillm-go/optillm/strategy"
)

// Config is MCTS's immutable options.
type Config struct {
	SimulationDepth       int
	ExplorationWeight     float64
	NumSimulations        int
	NumActions            int
	GenerationTemperature float64
	EvaluationTemperature float64
	MaxHistoryLength      int
	MaxTokens             int
}

func DefaultConfig() Config {
	return Config{
		SimulationDepth:       1,
		ExplorationWeight:     0.2,
		NumSimulations:        2,
		NumActions:            3,
		GenerationTemperature: 1.0,
		EvaluationTemperature: 0.1,
		MaxHistoryLength:      10,
		MaxTokens:             512,
	}
}

func (c Config) Validate() error {
	if c.NumSimulations < 0 {
		return core.New(core.KindInvalidConfig, "mcts.Validate", "num_simulations must be >= 0")
	}
	if c.NumActions < 1 {
		return core.New(core.KindInvalidConfig, "mcts.Validate", "num_actions must be >= 1")
	}
	return nil
}

// DialogueMessage is one turn of conversation history carried by a
// DialogueState. Unlike core.Message it is a flat role/content pair,
// matching the conversational shape MCTS reasons over rather than the
// backend's typed-content Prompt shape.
type DialogueMessage struct {
	Role    string
	Content string
}

// DialogueState is one node's payload: the conversation so far plus the
// query under consideration at this point in the tree.
type DialogueState struct {
	SystemPrompt string
	History      []DialogueMessage
	CurrentQuery string
}

// IsTerminal reports whether state ends the dialogue: history grown
// past MaxHistoryLength, or the current query case-foldedly mentions
// "goodbye".
func (c Config) IsTerminal(state DialogueState) bool {
	return len(state.History) > c.MaxHistoryLength || strings.Contains(strings.ToLower(state.CurrentQuery), "goodbye")
}

// node is one arena entry. parent is -1 for the root.
type node struct {
	state    DialogueState
	parent   int
	children []int
	visits   int
	value    float64
}

// Tree is an arena-indexed MCTS search tree, grounded on spec.md §9's
// "nodes cannot own their parents" note.
type Tree struct {
	cfg   Config
	nodes []node
}

// New returns an empty tree. Call Search to seed and run it.
func New(cfg Config) *Tree {
	return &Tree{cfg: cfg}
}

// Search runs cfg.NumSimulations MCTS iterations from initial and
// returns the dialogue state of the root's most-visited child (ties
// broken first-in-wins). NumSimulations=0 returns the initial state
// unchanged without any backend calls.
func (t *Tree) Search(ctx context.Context, initial DialogueState, system string, be backend.Backend) (DialogueState, int, error) {
	totalTokens := 0
	if t.cfg.NumSimulations == 0 {
		return initial, totalTokens, nil
	}

	t.nodes = []node{{state: initial, parent: -1}}
	root := 0

	for i := 0; i < t.cfg.NumSimulations; i++ {
		idx := root
		for len(t.nodes[idx].children) > 0 {
			idx = t.selectChild(idx)
		}

		if !t.cfg.IsTerminal(t.nodes[idx].state) {
			expanded, tokens, err := t.expand(ctx, idx, system, be)
			totalTokens += tokens
			if err != nil {
				return DialogueState{}, totalTokens, err
			}
			idx = expanded
		}

		value, tokens, err := t.simulate(ctx, idx, system, be)
		totalTokens += tokens
		if err != nil {
			return DialogueState{}, totalTokens, err
		}

		t.backpropagate(idx, value)
	}

	rootNode := t.nodes[root]
	if len(rootNode.children) == 0 {
		return rootNode.state, totalTokens, nil
	}

	best := rootNode.children[0]
	for _, c := range rootNode.children[1:] {
		if t.nodes[c].visits > t.nodes[best].visits {
			best = c
		}
	}
	return t.nodes[best].state, totalTokens, nil
}

// selectChild picks the child of node idx maximizing the UCB score:
// value/visits + c*sqrt(ln(parent_visits+1)/(visits+eps)).
func (t *Tree) selectChild(idx int) int {
	const epsilon = 1e-8
	parentVisits := float64(t.nodes[idx].visits)

	best := t.nodes[idx].children[0]
	bestScore := math.Inf(-1)
	for _, c := range t.nodes[idx].children {
		child := t.nodes[c]
		exploitation := child.value / (float64(child.visits) + epsilon)
		exploration := t.cfg.ExplorationWeight * math.Sqrt(math.Log(parentVisits+1)/(float64(child.visits)+epsilon))
		score := exploitation + exploration
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}

// expand generates cfg.NumActions candidate assistant responses for
// node idx, attaches one child per action, and returns the index of a
// uniformly-randomly chosen child to simulate from.
func (t *Tree) expand(ctx context.Context, idx int, system string, be backend.Backend) (int, int, error) {
	state := t.nodes[idx].state
	totalTokens := 0

	actions, tokens, err := t.generateActions(ctx, state, system, be)
	totalTokens += tokens
	if err != nil {
		return idx, totalTokens, err
	}

	for _, action := range actions {
		newState, tokens, err := t.applyAction(ctx, state, action, system, be)
		totalTokens += tokens
		if err != nil {
			return idx, totalTokens, err
		}
		child := node{state: newState, parent: idx}
		childIdx := len(t.nodes)
		t.nodes = append(t.nodes, child)
		t.nodes[idx].children = append(t.nodes[idx].children, childIdx)
	}

	if len(t.nodes[idx].children) == 0 {
		return idx, totalTokens, nil
	}
	chosen := t.nodes[idx].children[rand.Intn(len(t.nodes[idx].children))]
	return chosen, totalTokens, nil
}

// simulate rolls out from node idx for up to cfg.SimulationDepth random
// steps, stopping early on a terminal state, then scores the resulting
// state with an evaluation call in [0, 1].
func (t *Tree) simulate(ctx context.Context, idx int, system string, be backend.Backend) (float64, int, error) {
	state := t.nodes[idx].state
	totalTokens := 0

	for step := 0; step < t.cfg.SimulationDepth; step++ {
		if t.cfg.IsTerminal(state) {
			break
		}
		actions, tokens, err := t.generateActions(ctx, state, system, be)
		totalTokens += tokens
		if err != nil {
			return 0, totalTokens, err
		}
		if len(actions) == 0 {
			break
		}
		action := actions[rand.Intn(len(actions))]
		state, tokens, err = t.applyAction(ctx, state, action, system, be)
		totalTokens += tokens
		if err != nil {
			return 0, totalTokens, err
		}
	}

	value, tokens, err := t.evaluateState(ctx, state, system, be)
	totalTokens += tokens
	return value, totalTokens, err
}

func (t *Tree) backpropagate(idx int, value float64) {
	for idx != -1 {
		t.nodes[idx].visits++
		t.nodes[idx].value += value
		idx = t.nodes[idx].parent
	}
}

func renderHistory(state DialogueState) string {
	var b strings.Builder
	for _, m := range state.History {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "user: %s", state.CurrentQuery)
	return b.String()
}

// generateActions asks the backend for cfg.NumActions candidate
// assistant responses to state's current query, one call per action at
// GenerationTemperature.
func (t *Tree) generateActions(ctx context.Context, state DialogueState, system string, be backend.Backend) ([]string, int, error) {
	prompt := renderHistory(state)
	totalTokens := 0
	actions := make([]string, 0, t.cfg.NumActions)
	for i := 0; i < t.cfg.NumActions; i++ {
		_, _, answer, tokens, err := strategy.GenerateOnce(ctx, be, system, prompt, t.cfg.GenerationTemperature, t.cfg.MaxTokens)
		if err != nil {
			return nil, totalTokens, core.Wrap(core.KindClient, "mcts.generateActions", "action generation failed", err)
		}
		totalTokens += tokens
		actions = append(actions, answer)
	}
	return actions, totalTokens, nil
}

// applyAction appends action as an assistant turn and asks the backend
// to predict the next likely user query, producing the child state.
func (t *Tree) applyAction(ctx context.Context, state DialogueState, action, system string, be backend.Backend) (DialogueState, int, error) {
	newHistory := append(append([]DialogueMessage(nil), state.History...), DialogueMessage{Role: "assistant", Content: action})

	predictPrompt := renderHistory(DialogueState{History: newHistory, CurrentQuery: ""}) +
		"\n\nBased on this conversation, what might the user ask or say next? Provide a likely user query."

	_, _, nextQuery, tokens, err := strategy.GenerateOnce(ctx, be, system, predictPrompt, t.cfg.GenerationTemperature, t.cfg.MaxTokens)
	if err != nil {
		return DialogueState{}, tokens, core.Wrap(core.KindClient, "mcts.applyAction", "next-query prediction failed", err)
	}

	return DialogueState{
		SystemPrompt: state.SystemPrompt,
		History:      newHistory,
		CurrentQuery: nextQuery,
	}, tokens, nil
}

const evaluationPrompt = "\n\nEvaluate the quality of this conversation on a scale from 0 to 1, where 0 is poor and 1 is excellent. Consider factors such as coherence, relevance, and engagement. Respond with only a number."

// evaluateState scores a rollout's terminal state with a rubric call at
// EvaluationTemperature, clamped to [0, 1].
func (t *Tree) evaluateState(ctx context.Context, state DialogueState, system string, be backend.Backend) (float64, int, error) {
	prompt := renderHistory(state) + evaluationPrompt
	_, _, response, tokens, err := strategy.GenerateOnce(ctx, be, system, prompt, t.cfg.EvaluationTemperature, t.cfg.MaxTokens)
	if err != nil {
		return 0, tokens, core.Wrap(core.KindClient, "mcts.evaluateState", "evaluation call failed", err)
	}
	return parsing.ExtractScore(response, 0, 1), tokens, nil
}
