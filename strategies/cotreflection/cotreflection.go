// Package cotreflection wraps the system prompt with a template
// demanding <thinking><reflection>...</reflection></thinking> followed
// by <output>, then extracts both sections.
package cotreflection

import (
	"context"
	"fmt"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/parsing"
	"github.com/optillm-go/optillm/strategy"
)

type Config struct {
	Temperature float64
	MaxTokens   int
}

func DefaultConfig() Config {
	return Config{Temperature: 0.7, MaxTokens: 2048}
}

func (c Config) Validate() error { return nil }

const template = `%s

Think through this step by step inside <thinking> tags, including a <reflection> section where you double-check your reasoning. Then give your final answer inside <output> tags.

Format:
<thinking>
...
<reflection>
...
</reflection>
</thinking>
<output>
...
</output>`

// Run implements strategy.Func for CoT reflection.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("cotreflection.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}

	wrappedSystem := fmt.Sprintf(template, system)
	text, _, _, tokens, err := strategy.GenerateOnce(ctx, be, wrappedSystem, query, cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "cotreflection.Run", "generation failed", err)
	}

	thinking, _ := parsing.ExtractSection(text, "thinking")
	reflection, _ := parsing.ExtractSection(text, "reflection")
	output, isFallback := parsing.ExtractSection(text, "output")

	answer := output
	reasoning := thinking
	if isFallback {
		answer = text
	}
	if reflection != "" {
		reasoning = reasoning + "\n[reflection] " + reflection
	}

	sol := core.Solution{
		ID:          "cot-reflection-solution",
		AgentID:     "cot-reflection",
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: cfg.Temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseInitial,
	}
	meta := strategy.Metadata{TotalTokens: tokens, Extra: map[string]interface{}{"is_fallback": isFallback}}
	return sol, meta, nil
}
