// Package rto implements Round-Trip Optimization: generate code, have
// the model describe it back as an instruction, regenerate from that
// instruction, and synthesize a final answer only if the round trip
// produced different code.
package rto

import (
	"fmt"
	"regexp"
	"strings"

	"context"

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
	return Config{Temperature: 0.5, MaxTokens: 1024}
}

func (c Config) Validate() error { return nil }

const describePrompt = "Describe the following code as a precise instruction that would produce it:\n\n%s"
const synthesizePrompt = "Original request:\n%s\n\nFirst attempt:\n%s\n\nSecond attempt (from a derived instruction):\n%s\n\nSynthesize the best final answer, reconciling any differences."

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalize(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// Run implements strategy.Func for RTO.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("rto.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}

	totalTokens := 0

	_, _, c1, tokens, err := strategy.GenerateOnce(ctx, be, system, query, cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "rto.Run", "C1 generation failed", err)
	}
	totalTokens += tokens

	_, _, q2, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(describePrompt, c1), cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "rto.Run", "Q2 generation failed", err)
	}
	totalTokens += tokens

	_, _, c2, tokens, err := strategy.GenerateOnce(ctx, be, system, q2, cfg.Temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "rto.Run", "C2 generation failed", err)
	}
	totalTokens += tokens

	code1 := normalize(parsing.ExtractCode(c1))
	code2 := normalize(parsing.ExtractCode(c2))
	solutionsDiffered := code1 != code2

	finalAnswer := c1
	synthesized := false
	if solutionsDiffered {
		_, _, c3, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(synthesizePrompt, query, c1, c2), cfg.Temperature, cfg.MaxTokens)
		if err != nil {
			return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "rto.Run", "C3 synthesis failed", err)
		}
		totalTokens += tokens
		finalAnswer = c3
		synthesized = true
	}

	phase := core.PhaseInitial
	if synthesized {
		phase = core.PhaseSynthesized
	}

	sol := core.Solution{
		ID:      "rto-solution",
		AgentID: "rto",
		Answer:  finalAnswer,
		Phase:   phase,
	}
	meta := strategy.Metadata{
		TotalTokens: totalTokens,
		Extra: map[string]interface{}{
			"solutions_differed": solutionsDiffered,
			"synthesized":        synthesized,
			"c1":                 c1,
			"c2":                 c2,
		},
	}
	return sol, meta, nil
}
