// Package deepthinking is currently a single-call strategy: its
// configuration (token bounds, iteration count) is carried through to
// metadata for downstream analysis but does not alter generation beyond
// the prompt.
package deepthinking

import (
	"context"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

type Config struct {
	MinTokens   int
	MaxTokens   int
	Iterations  int
	Temperature float64
}

func DefaultConfig() Config {
	return Config{MinTokens: 256, MaxTokens: 2048, Iterations: 3, Temperature: 0.7}
}

func (c Config) Validate() error {
	if c.MinTokens > c.MaxTokens {
		return core.New(core.KindInvalidConfig, "deepthinking.Validate", "min_tokens must be <= max_tokens")
	}
	if c.Iterations < 1 {
		return core.New(core.KindInvalidConfig, "deepthinking.Validate", "iterations must be >= 1")
	}
	return nil
}

// Run implements strategy.Func for deep thinking.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("deepthinking.Run", query, system); err != nil {
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
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "deepthinking.Run", "generation failed", err)
	}

	sol := core.Solution{
		ID:          "deep-thinking-solution",
		AgentID:     "deep-thinking",
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: cfg.Temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseInitial,
	}
	meta := strategy.Metadata{
		TotalTokens: tokens,
		Extra: map[string]interface{}{
			"min_tokens": cfg.MinTokens, "max_tokens": cfg.MaxTokens, "iterations": cfg.Iterations,
		},
	}
	return sol, meta, nil
}
