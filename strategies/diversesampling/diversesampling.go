// Package diversesampling generates N samples at linearly interpolated
// temperatures and reports how many distinct answers resulted.
package diversesampling

import (
	"context"
	"strconv"
	"strings"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

// Config is diverse sampling's immutable options.
type Config struct {
	N              int
	MinTemperature float64
	MaxTemperature float64
	MaxTokens      int
}

func DefaultConfig() Config {
	return Config{N: 3, MinTemperature: 0.2, MaxTemperature: 1.2, MaxTokens: 1024}
}

func (c Config) Validate() error {
	if c.N < 1 {
		return core.New(core.KindInvalidConfig, "diversesampling.Validate", "n must be >= 1")
	}
	if c.MinTemperature > c.MaxTemperature {
		return core.New(core.KindInvalidConfig, "diversesampling.Validate", "min_temperature must be <= max_temperature")
	}
	return nil
}

// Run implements strategy.Func for diverse sampling.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("diversesampling.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	temps := strategy.LinspaceTemperatures(cfg.N, cfg.MinTemperature, cfg.MaxTemperature)
	samples := make([]core.Solution, 0, cfg.N)
	totalTokens := 0
	seen := map[string]bool{}

	for i, temp := range temps {
		_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, be, system, query, temp, cfg.MaxTokens)
		if err != nil {
			return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "diversesampling.Run", "sample generation failed", err)
		}
		totalTokens += tokens
		samples = append(samples, core.Solution{
			ID:          "diverse-sample-" + strconv.Itoa(i),
			AgentID:     "diverse-sampling",
			Reasoning:   reasoning,
			Answer:      answer,
			Temperature: temp,
			TokenCount:  tokens,
			Phase:       core.PhaseInitial,
		})
		seen[strings.ToLower(answer)] = true
	}

	winner := samples[0]
	meta := strategy.Metadata{
		TotalTokens: totalTokens,
		Extra: map[string]interface{}{
			"samples":         samples,
			"unique_answers":  len(seen),
		},
	}
	return winner, meta, nil
}
