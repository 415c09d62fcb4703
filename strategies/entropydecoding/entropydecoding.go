// Package entropydecoding is currently a single-call strategy: its
// configuration (target entropy, sample count) is carried through to
// metadata for downstream analysis but does not alter generation beyond
// the prompt — no tokenizer-level logit manipulation is performed.
package entropydecoding

import (
	"context"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

type Config struct {
	TargetEntropy float64
	NumSamples    int
	Temperature   float64
	MaxTokens     int
}

func DefaultConfig() Config {
	return Config{TargetEntropy: 0.6, NumSamples: 3, Temperature: 0.7, MaxTokens: 1024}
}

func (c Config) Validate() error {
	if c.TargetEntropy < 0 || c.TargetEntropy > 1 {
		return core.New(core.KindInvalidConfig, "entropydecoding.Validate", "target_entropy must be in [0,1]")
	}
	if c.NumSamples < 1 {
		return core.New(core.KindInvalidConfig, "entropydecoding.Validate", "num_samples must be >= 1")
	}
	return nil
}

// Run implements strategy.Func for entropy decoding.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("entropydecoding.Run", query, system); err != nil {
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
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "entropydecoding.Run", "generation failed", err)
	}

	sol := core.Solution{
		ID:          "entropy-decoding-solution",
		AgentID:     "entropy-decoding",
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: cfg.Temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseInitial,
	}
	meta := strategy.Metadata{
		TotalTokens: tokens,
		Extra: map[string]interface{}{
			"target_entropy": cfg.TargetEntropy, "num_samples": cfg.NumSamples,
		},
	}
	return sol, meta, nil
}
