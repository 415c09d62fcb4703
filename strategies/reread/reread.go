// Package reread implements the ReRead strategy: a single call that
// repeats the question back to the model before asking it to answer.
package reread

import (
	"context"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

// Config is ReRead's immutable options.
type Config struct {
	Temperature float64
	MaxTokens   int
}

func DefaultConfig() Config {
	return Config{Temperature: 0.7, MaxTokens: 1024}
}

func (c Config) Validate() error {
	if c.Temperature < 0 {
		return core.New(core.KindInvalidConfig, "reread.Validate", "temperature must be >= 0")
	}
	return nil
}

// Run implements strategy.Func for ReRead.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("reread.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	prompt := query + "\n\nRead the question again: " + query
	_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, be, system, prompt, cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "reread.Run", "generation failed", err)
	}

	sol := core.Solution{
		ID:          "reread-solution",
		AgentID:     "reread",
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: cfg.Temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseInitial,
	}
	return sol, strategy.Metadata{TotalTokens: tokens}, nil
}
