// Package moa implements Mixture of Agents: three sequential phases —
// generate three candidates, critique them together, then synthesize a
// final answer from the candidates plus the critique.
package moa

import (
	"context"
	"fmt"
	"strings"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

// Config is MOA's immutable options.
type Config struct {
	Temperature     float64
	MaxTokens       int
	FallbackEnabled bool
}

func DefaultConfig() Config {
	return Config{Temperature: 0.7, MaxTokens: 1024, FallbackEnabled: true}
}

func (c Config) Validate() error { return nil }

const critiquePrompt = `Here are three candidate answers to the same question:

%s

Critique these candidates: note strengths, weaknesses, and any factual errors. Be specific.`

const synthesizePrompt = `Here are three candidate answers to the question, and a critique of them:

%s

Critique:
%s

Synthesize a single final answer that addresses the critique.`

// Run implements strategy.Func for MOA.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("moa.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}

	totalTokens := 0
	var candidates []string

	for i := 0; i < 3; i++ {
		_, _, answer, tokens, err := strategy.GenerateOnce(ctx, be, system, query, cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			if cfg.FallbackEnabled {
				continue
			}
			return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindAggregation, "moa.Run", "initial completion failed", err)
		}
		totalTokens += tokens
		candidates = append(candidates, answer)
	}

	if len(candidates) == 0 {
		return core.Solution{}, strategy.Metadata{}, core.New(core.KindAggregation, "moa.Run", "all initial completions failed")
	}
	for len(candidates) < 3 {
		candidates = append(candidates, candidates[0])
	}

	candidateBlock := formatCandidates(candidates)

	critiquePromptText := fmt.Sprintf(critiquePrompt, candidateBlock)
	_, _, critique, critiqueTokens, err := strategy.GenerateOnce(ctx, be, system, critiquePromptText, cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindAggregation, "moa.Run", "critique phase failed", err)
	}
	totalTokens += critiqueTokens

	synthesizePromptText := fmt.Sprintf(synthesizePrompt, candidateBlock, critique)
	_, reasoning, answer, synthTokens, err := strategy.GenerateOnce(ctx, be, system, synthesizePromptText, cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindAggregation, "moa.Run", "synthesis phase failed", err)
	}
	totalTokens += synthTokens

	sol := core.Solution{
		ID:        "moa-synthesized",
		AgentID:   "moa",
		Reasoning: reasoning,
		Answer:    answer,
		Phase:     core.PhaseSynthesized,
	}
	meta := strategy.Metadata{
		TotalTokens: totalTokens,
		Extra: map[string]interface{}{
			"candidates": candidates,
			"critique":   critique,
		},
	}
	return sol, meta, nil
}

func formatCandidates(candidates []string) string {
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = fmt.Sprintf("Candidate %d:\n%s", i+1, c)
	}
	return strings.Join(parts, "\n\n")
}
