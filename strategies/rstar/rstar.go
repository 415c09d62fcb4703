// Package rstar is currently a single-call strategy: its configuration
// (simulation/exploration/candidate counts, named after the MCTS engine
// it is conceptually related to) is carried through to metadata for
// downstream analysis but does not alter generation beyond the prompt.
package rstar

import (
	"context"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

type Config struct {
	Simulations int
	Exploration float64
	Candidates  int
	Temperature float64
	MaxTokens   int
}

func DefaultConfig() Config {
	return Config{Simulations: 10, Exploration: 1.414, Candidates: 3, Temperature: 0.7, MaxTokens: 1024}
}

func (c Config) Validate() error {
	if c.Simulations < 0 {
		return core.New(core.KindInvalidConfig, "rstar.Validate", "simulations must be >= 0")
	}
	if c.Candidates < 1 {
		return core.New(core.KindInvalidConfig, "rstar.Validate", "candidates must be >= 1")
	}
	return nil
}

// Run implements strategy.Func for R*.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("rstar.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, be, system, query, cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "rstar.Run", "generation failed", err)
	}

	sol := core.Solution{
		ID:          "r-star-solution",
		AgentID:     "r-star",
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: cfg.Temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseInitial,
	}
	meta := strategy.Metadata{
		TotalTokens: tokens,
		Extra: map[string]interface{}{
			"simulations": cfg.Simulations, "exploration": cfg.Exploration, "candidates": cfg.Candidates,
		},
	}
	return sol, meta, nil
}
