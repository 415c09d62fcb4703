// Package mars implements the Multi-Agent Reasoning System coordinator:
// a five-phase pipeline (exploration, optional aggregation, optional
// strategy network, cross-verification, iterative improvement,
// synthesis) over a shared workspace, emitting a best-effort event
// stream a caller may or may not be listening on.
package mars

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/compound/rsa"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/parsing"
	"github.com/optillm-go/optillm/strategy"
	"github.com/optillm-go/optillm/workspace"
)

// SelectionMethod names the Phase 5 rule that produced the final answer.
type SelectionMethod string

const (
	MajorityVoting SelectionMethod = "MajorityVoting"
	BestVerified   SelectionMethod = "BestVerified"
	Synthesized    SelectionMethod = "Synthesized"
)

// Config is MARS's immutable options.
type Config struct {
	NumAgents             int
	Temperatures          []float64
	MaxTokens             int
	EnableAggregation     bool
	AggregationPopulation int
	AggregationSelection  int
	AggregationLoops      int
	EnableStrategyNetwork bool
	StrategyExtractor     StrategyExtractor
	MaxIterations         int
}

func DefaultConfig() Config {
	return Config{
		NumAgents:             3,
		Temperatures:          []float64{0.2, 0.5, 0.8},
		MaxTokens:             1024,
		EnableAggregation:     false,
		AggregationPopulation: 6,
		AggregationSelection:  3,
		AggregationLoops:      2,
		EnableStrategyNetwork: false,
		StrategyExtractor:     PlaceholderExtractor,
		MaxIterations:         2,
	}
}

func (c Config) Validate() error {
	if c.NumAgents < 1 {
		return core.New(core.KindInvalidConfig, "mars.Validate", "num_agents must be >= 1")
	}
	if len(c.Temperatures) < c.NumAgents {
		return core.New(core.KindInvalidConfig, "mars.Validate", "temperatures must have length >= num_agents")
	}
	if c.MaxIterations < 0 {
		return core.New(core.KindInvalidConfig, "mars.Validate", "max_iterations must be >= 0")
	}
	return nil
}

// MarsOutput is the record returned once Phase 5 completes.
type MarsOutput struct {
	Answer          string
	Reasoning       string
	Solutions       []core.Solution
	SelectionMethod SelectionMethod
	Iterations      int
	TotalTokens     int
	CompletedAt     time.Time
}

// Coordinator drives the five MARS phases over a fresh workspace for
// each Run call, optionally emitting events to Events.
type Coordinator struct {
	cfg     Config
	be      backend.Backend
	network *strategyNetwork
	// Events, if non-nil, receives the run's event stream. Sends never
	// block and are dropped if the channel is full or nil.
	Events chan<- Event
}

// New constructs a Coordinator over be with cfg, validating cfg
// up-front.
func New(cfg Config, be backend.Backend) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.StrategyExtractor == nil {
		cfg.StrategyExtractor = PlaceholderExtractor
	}
	return &Coordinator{cfg: cfg, be: be, network: newStrategyNetwork()}, nil
}

// Run drives the full pipeline for query/system and returns the
// synthesized MarsOutput.
func (c *Coordinator) Run(ctx context.Context, query, system string) (MarsOutput, error) {
	ws := workspace.New()
	totalTokens := 0
	iterations := 0

	tokens, err := c.phase1Exploration(ctx, ws, query, system)
	totalTokens += tokens
	if err != nil {
		return MarsOutput{}, err
	}

	if c.cfg.EnableAggregation {
		tokens, err = c.phase2aAggregation(ctx, ws, system)
		totalTokens += tokens
		if err != nil {
			return MarsOutput{}, err
		}
	}

	if c.cfg.EnableStrategyNetwork {
		tokens = c.phase2bStrategyNetwork(ctx, ws)
		totalTokens += tokens
	}

	tokens = c.phase3Verification(ctx, ws, system)
	totalTokens += tokens

	iterations, tokens, err = c.phase4Improvement(ctx, ws, system)
	totalTokens += tokens
	if err != nil {
		return MarsOutput{}, err
	}

	out, err := c.phase5Synthesis(ws)
	if err != nil {
		return MarsOutput{}, err
	}
	out.Iterations = iterations
	out.TotalTokens = totalTokens
	out.CompletedAt = time.Now()
	emit(c.Events, Event{Kind: EventAnswerSynthesized, Answer: out.Answer})
	return out, nil
}

func (c *Coordinator) phase1Exploration(ctx context.Context, ws *workspace.Workspace, query, system string) (int, error) {
	emit(c.Events, Event{Kind: EventExplorationStarted, NumAgents: c.cfg.NumAgents})
	totalTokens := 0
	for i := 0; i < c.cfg.NumAgents; i++ {
		agentID := "mars-agent-" + strconv.Itoa(i)
		temp := c.cfg.Temperatures[i]
		_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, c.be, system, fmt.Sprintf(explorationPrompt, query), temp, c.cfg.MaxTokens)
		totalTokens += tokens
		if err != nil {
			return totalTokens, core.Wrap(core.KindClient, "mars.phase1Exploration", "agent generation failed", err)
		}
		sol := core.Solution{
			ID:          agentID + "-" + uuid.NewString(),
			AgentID:     agentID,
			Reasoning:   reasoning,
			Answer:      answer,
			Temperature: temp,
			TokenCount:  tokens,
			Phase:       core.PhaseInitial,
			CreatedAt:   time.Now(),
		}
		ws.Add(sol)
		emit(c.Events, Event{Kind: EventSolutionGenerated, SolutionID: sol.ID, AgentID: agentID})
	}
	return totalTokens, nil
}

func (c *Coordinator) phase2aAggregation(ctx context.Context, ws *workspace.Workspace, system string) (int, error) {
	emit(c.Events, Event{Kind: EventAggregationStarted})
	population := ws.All()
	if len(population) == 0 {
		return 0, nil
	}
	rsaCfg := rsa.DefaultConfig()
	rsaCfg.PopulationSize = c.cfg.AggregationPopulation
	rsaCfg.SelectionSize = c.cfg.AggregationSelection
	rsaCfg.NumIterations = c.cfg.AggregationLoops

	_, stats, meta, err := rsa.Run(ctx, population, rsaCfg, c.be)
	if err != nil {
		return 0, err
	}
	for _, stat := range stats {
		for _, sol := range stat.Refined {
			ws.Add(sol)
			emit(c.Events, Event{Kind: EventSolutionsAggregated, SolutionID: sol.ID})
		}
	}
	return meta.TotalTokens, nil
}

func (c *Coordinator) phase2bStrategyNetwork(ctx context.Context, ws *workspace.Workspace) int {
	emit(c.Events, Event{Kind: EventStrategyNetStarted})
	totalTokens := 0
	for _, sol := range ws.All() {
		descriptors, tokens, err := c.cfg.StrategyExtractor(ctx, sol, c.be)
		totalTokens += tokens
		if err != nil {
			emit(c.Events, Event{Kind: EventError, Message: err.Error()})
			continue
		}
		for _, desc := range descriptors {
			entry := c.network.register(desc, desc, sol.AgentID, sol.IsVerified(), time.Now())
			emit(c.Events, Event{Kind: EventStrategyExtracted, StrategyID: entry.ID})
		}
	}
	return totalTokens
}

func (c *Coordinator) phase3Verification(ctx context.Context, ws *workspace.Workspace, system string) int {
	emit(c.Events, Event{Kind: EventVerificationStarted})
	totalTokens := 0
	for _, sol := range ws.All() {
		for v := 0; v < 2; v++ {
			score, tokens, err := c.verifySolution(ctx, system, sol)
			totalTokens += tokens
			if err != nil {
				emit(c.Events, Event{Kind: EventError, Message: err.Error()})
				continue
			}
			current, ok := ws.Get(sol.ID)
			if !ok {
				continue
			}
			clone := current.Clone()
			isCorrect := score >= 0.5
			if isCorrect {
				clone.AddVerificationPass(score)
			} else {
				clone.AddVerificationFailure()
			}
			if err := ws.Replace(clone); err != nil {
				emit(c.Events, Event{Kind: EventError, Message: err.Error()})
				continue
			}
			emit(c.Events, Event{Kind: EventSolutionVerified, SolutionID: sol.ID, IsCorrect: isCorrect, Score: score})
		}
	}
	return totalTokens
}

// verifySolution runs one low-temperature verification pass over sol
// and returns a score in [0, 1].
func (c *Coordinator) verifySolution(ctx context.Context, system string, sol core.Solution) (float64, int, error) {
	prompt := fmt.Sprintf(verificationPrompt, sol.Reasoning, sol.Answer)
	response, _, _, tokens, err := strategy.GenerateOnce(ctx, c.be, system, prompt, 0.1, c.cfg.MaxTokens)
	if err != nil {
		return 0, tokens, core.Wrap(core.KindVerification, "mars.verifySolution", "verification call failed", err)
	}
	return parsing.ExtractScore(response, 0, 1), tokens, nil
}

func (c *Coordinator) phase4Improvement(ctx context.Context, ws *workspace.Workspace, system string) (int, int, error) {
	totalTokens := 0
	iterations := 0
	for iter := 0; iter < c.cfg.MaxIterations; iter++ {
		candidates := candidatesNeedingImprovement(ws)
		if len(candidates) == 0 {
			break
		}
		iterations++
		emit(c.Events, Event{Kind: EventImprovementStarted, Iteration: iter})
		for _, sol := range candidates {
			improved, tokens, err := c.improveSolution(ctx, system, sol)
			totalTokens += tokens
			if err != nil {
				emit(c.Events, Event{Kind: EventError, Message: err.Error()})
				continue
			}
			ws.Add(improved)
			emit(c.Events, Event{Kind: EventSolutionImproved, SolutionID: improved.ID})
		}
	}
	return iterations, totalTokens, nil
}

func candidatesNeedingImprovement(ws *workspace.Workspace) []core.Solution {
	var out []core.Solution
	for _, sol := range ws.All() {
		if sol.VerificationFailures < 2 && !sol.IsVerified() {
			out = append(out, sol)
		}
	}
	return out
}

// improveSolution produces a revised clone of sol from its reasoning,
// its answer and a fixed, generic feedback line. It does not use
// Phase 3's verifier output or re-run verification, but it
// does make one real backend call to revise the answer, per the
// binding resolution that a no-op rename would be untestable.
func (c *Coordinator) improveSolution(ctx context.Context, system string, sol core.Solution) (core.Solution, int, error) {
	feedback := "The solution may contain errors; re-derive the answer carefully."
	prompt := fmt.Sprintf(improvementPrompt, sol.Reasoning, sol.Answer, feedback)
	_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, c.be, system, prompt, sol.Temperature, c.cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, tokens, core.Wrap(core.KindClient, "mars.improveSolution", "improvement call failed", err)
	}
	improved := core.Solution{
		ID:          sol.ID + "-improved-" + uuid.NewString(),
		AgentID:     sol.AgentID,
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: sol.Temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseImproved,
		CreatedAt:   time.Now(),
	}
	return improved, tokens, nil
}

func (c *Coordinator) phase5Synthesis(ws *workspace.Workspace) (MarsOutput, error) {
	emit(c.Events, Event{Kind: EventSynthesisStarted})
	all := ws.All()
	if len(all) == 0 {
		return MarsOutput{}, core.New(core.KindNoSolutions, "mars.phase5Synthesis", "workspace is empty")
	}

	if answer, ok := majorityAnswer(all); ok {
		return MarsOutput{Answer: answer, Reasoning: reasoningForAnswer(all, answer), Solutions: all, SelectionMethod: MajorityVoting}, nil
	}

	if best, ok := bestVerified(all); ok {
		return MarsOutput{Answer: best.Answer, Reasoning: best.Reasoning, Solutions: all, SelectionMethod: BestVerified}, nil
	}

	top := topNByScore(all, 3)
	var reasoningParts string
	for i, s := range top {
		if i > 0 {
			reasoningParts += "\n"
		}
		reasoningParts += s.Reasoning
	}
	return MarsOutput{Answer: top[0].Answer, Reasoning: reasoningParts, Solutions: all, SelectionMethod: Synthesized}, nil
}

// majorityAnswer returns the first answer (in workspace insertion
// order) that appears at least twice.
func majorityAnswer(all []core.Solution) (string, bool) {
	counts := map[string]int{}
	for _, s := range all {
		counts[s.Answer]++
	}
	for _, s := range all {
		if counts[s.Answer] >= 2 {
			return s.Answer, true
		}
	}
	return "", false
}

func reasoningForAnswer(all []core.Solution, answer string) string {
	for _, s := range all {
		if s.Answer == answer {
			return s.Reasoning
		}
	}
	return ""
}

func bestVerified(all []core.Solution) (core.Solution, bool) {
	var best core.Solution
	found := false
	for _, s := range all {
		if !s.IsVerified() {
			continue
		}
		if !found || s.VerificationScore > best.VerificationScore {
			best = s
			found = true
		}
	}
	return best, found
}

func topNByScore(all []core.Solution, n int) []core.Solution {
	sorted := append([]core.Solution(nil), all...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].VerificationScore > sorted[j-1].VerificationScore; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
