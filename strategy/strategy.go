// Package strategy holds the contract every simple and compound
// strategy implements, plus the small helpers shared by all of them:
// temperature spacing, input validation, and a one-shot
// generate-and-parse call that reports its token count.
package strategy

import (
	"context"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/parsing"
)

// Metadata is returned alongside a Solution by every strategy entry
// point. TotalTokens is always the sum of tokens reported by every
// Completed event the strategy observed; Extra carries strategy-specific
// detail (candidate lists, vote tallies, iteration stats, ...) for the
// driver to print.
type Metadata struct {
	TotalTokens int
	Extra       map[string]interface{}
}

// Func is the uniform shape every strategy exposes: (query, system,
// config, backend) → (Solution, Metadata). Closed dispatch over the set
// of strategy names lives in the CLI (cmd/optillm), not here.
type Func func(ctx context.Context, query, system string, cfg core.StrategyConfig, be backend.Backend) (core.Solution, Metadata, error)

// LinspaceTemperatures returns n temperatures evenly spaced from min to
// max inclusive. n=1 returns just min.
func LinspaceTemperatures(n int, min, max float64) []float64 {
	if n <= 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = min + step*float64(i)
	}
	return out
}

// GenerateOnce issues a single backend call at the given temperature and
// returns the full response text, reasoning/answer split, and token
// count observed.
func GenerateOnce(ctx context.Context, be backend.Backend, system, userText string, temperature float64, maxTokens int) (text, reasoning, answer string, tokens int, err error) {
	prompt := core.Prompt{
		Messages: []core.Message{
			core.SystemMessage(system),
			core.UserMessage(userText),
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	s, err := be.Stream(ctx, prompt)
	if err != nil {
		return "", "", "", 0, err
	}
	text, usage, err := backend.Collect(ctx, s)
	if err != nil {
		return "", "", "", 0, err
	}
	if usage != nil {
		tokens = usage.Total()
	}
	reasoning, answer = parsing.SplitReasoningAnswer(text)
	return text, reasoning, answer, tokens, nil
}

// RequireNonEmpty validates the two inputs every strategy entry point
// requires.
func RequireNonEmpty(op, query, system string) error {
	if query == "" {
		return core.New(core.KindInvalidConfig, op, "query must not be empty")
	}
	if system == "" {
		return core.New(core.KindInvalidConfig, op, "system instructions must not be empty")
	}
	return nil
}
