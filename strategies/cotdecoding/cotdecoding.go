// Package cotdecoding appends a fixed step-by-step scaffold to the
// system prompt and makes a single call.
package cotdecoding

import (
	"context"
	"fmt"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

type Config struct {
	Steps       int
	Verify      bool
	Temperature float64
	MaxTokens   int
}

func DefaultConfig() Config {
	return Config{Steps: 4, Temperature: 0.5, MaxTokens: 1024}
}

func (c Config) Validate() error {
	if c.Steps < 1 {
		return core.New(core.KindInvalidConfig, "cotdecoding.Validate", "steps must be >= 1")
	}
	return nil
}

const scaffold = "\n\nWork through this using exactly these steps:\n%s\nFinal Answer:"

// Run implements strategy.Func for CoT decoding.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("cotdecoding.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	steps := ""
	for i := 1; i <= cfg.Steps; i++ {
		steps += fmt.Sprintf("Step %d\n", i)
	}
	wrappedSystem := system + fmt.Sprintf(scaffold, steps)

	_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, be, wrappedSystem, query, cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "cotdecoding.Run", "generation failed", err)
	}

	sol := core.Solution{
		ID:          "cot-decoding-solution",
		AgentID:     "cot-decoding",
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: cfg.Temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseInitial,
	}
	meta := strategy.Metadata{TotalTokens: tokens, Extra: map[string]interface{}{"steps": cfg.Steps, "verify": cfg.Verify}}
	return sol, meta, nil
}
