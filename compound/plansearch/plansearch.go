// Package plansearch implements the observations-then-code compound
// strategy: generate observations about the problem, derive further
// observations from those, write a natural-language solution quoting
// them, then implement it in code.
package plansearch

import (
	"fmt"
	"strings"

	"context"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/parsing"
	"github.com/optillm-go/optillm/strategy"
)

// Config is PlanSearch's immutable options.
type Config struct {
	ObservationTemperature    float64
	SolutionTemperature       float64
	ImplementationTemperature float64
	NumInitialObservations    int
	NumDerivedObservations    int
	MaxTokensObservations     int
	MaxTokensSolution         int
	MaxTokensImplementation   int
}

func DefaultConfig() Config {
	return Config{
		ObservationTemperature:     0.7,
		SolutionTemperature:        0.7,
		ImplementationTemperature:  0.1,
		NumInitialObservations:     3,
		NumDerivedObservations:     2,
		MaxTokensObservations:      1024,
		MaxTokensSolution:          2048,
		MaxTokensImplementation:    2048,
	}
}

func (c Config) Validate() error {
	for _, t := range []float64{c.ObservationTemperature, c.SolutionTemperature, c.ImplementationTemperature} {
		if t < 0 || t > 2 {
			return core.New(core.KindInvalidConfig, "plansearch.Validate", "temperatures must be in [0, 2]")
		}
	}
	if c.NumInitialObservations < 1 {
		return core.New(core.KindInvalidConfig, "plansearch.Validate", "num_initial_observations must be >= 1")
	}
	return nil
}

const observationsPrompt = "You are an expert problem solver. You will be given a problem specification. You will return several useful, non-obvious, and correct observations about the problem, like hints to solve the problem. You will NOT return any code. Be as creative as possible, going beyond what you think is intuitively correct.\n\nHere is the problem:\n%s\n\nPlease provide %d observations."

const derivedObservationsPrompt = "You are an expert problem solver. You will be given a problem specification and several correct observations about the problem. You will brainstorm several new, useful, and correct observations about the problem, derived from the given observations. You will NOT return any code. Be as creative as possible.\n\nHere is the problem:\n%s\n\nHere are the existing observations:\n%s\n\nPlease provide %d new observations derived from the existing ones."

const solutionPrompt = "Here is the problem:\n%s\n\nHere are intelligent observations to help solve the problem:\n%s\n\nUse these observations above to brainstorm a natural language solution to the problem above. Note that your intuition may lead you astray, so come up with simple, creative ideas that go beyond what you would usually come up with. Quote relevant parts of the observations EXACTLY before each step of the solution. QUOTING IS CRUCIAL."

const implementationPrompt = "You are an expert programmer. You will be given a problem specification and a natural language solution/tutorial that describes how to solve the problem. You will generate a correct program that matches said specification and tutorial. You will NOT return anything except for the program inside markdown codeblocks.\n\nProblem:\n%s\n\nSolution:\n%s\n\nPlease implement the solution in code."

// Run implements strategy.Func for PlanSearch.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("plansearch.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	totalTokens := 0

	initial, tokens, err := generateObservations(ctx, be, system, fmt.Sprintf(observationsPrompt, query, cfg.NumInitialObservations), cfg.ObservationTemperature, cfg.MaxTokensObservations)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	observationsText := formatObservations(initial)
	derived, tokens, err := generateObservations(ctx, be, system, fmt.Sprintf(derivedObservationsPrompt, query, observationsText, cfg.NumDerivedObservations), cfg.ObservationTemperature, cfg.MaxTokensObservations)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	all := append(append([]string(nil), initial...), derived...)

	solutionText, _, _, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(solutionPrompt, query, formatObservationsNumbered(all)), cfg.SolutionTemperature, cfg.MaxTokensSolution)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "plansearch.Run", "solution generation failed", err)
	}

	implResponse, _, _, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(implementationPrompt, query, solutionText), cfg.ImplementationTemperature, cfg.MaxTokensImplementation)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "plansearch.Run", "implementation generation failed", err)
	}
	code := parsing.ExtractCode(implResponse)

	sol := core.Solution{
		ID:        "plansearch-solution",
		AgentID:   "plansearch",
		Reasoning: solutionText,
		Answer:    code,
		Phase:     core.PhaseSynthesized,
	}
	meta := strategy.Metadata{
		TotalTokens: totalTokens,
		Extra: map[string]interface{}{
			"observations_count":   len(all),
			"initial_observations": initial,
			"derived_observations": derived,
		},
	}
	return sol, meta, nil
}

func generateObservations(ctx context.Context, be backend.Backend, system, prompt string, temperature float64, maxTokens int) ([]string, int, error) {
	text, _, _, tokens, err := strategy.GenerateOnce(ctx, be, system, prompt, temperature, maxTokens)
	if err != nil {
		return nil, tokens, core.Wrap(core.KindClient, "plansearch.generateObservations", "observation generation failed", err)
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, tokens, nil
}

func formatObservations(obs []string) string {
	parts := make([]string, len(obs))
	for i, o := range obs {
		parts[i] = fmt.Sprintf("%d. %s", i+1, o)
	}
	return strings.Join(parts, "\n")
}

func formatObservationsNumbered(obs []string) string {
	parts := make([]string, len(obs))
	for i, o := range obs {
		parts[i] = fmt.Sprintf("Observation %d: %s", i+1, o)
	}
	return strings.Join(parts, "\n")
}
