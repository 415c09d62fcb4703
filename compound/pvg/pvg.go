// Package pvg implements the Prover-Verifier Game: each round generates
// both "helpful" and "sneaky" candidate solutions at a decreasing
// temperature and scores all of them with a verification prompt,
// keeping the global best across rounds.
package pvg

import (
	"context"
	"fmt"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/parsing"
	"github.com/optillm-go/optillm/strategy"
)

// Config is PVG's immutable options.
type Config struct {
	NumRounds          int
	NumSolutions       int
	InitialTemperature float64
	MaxTokens          int
}

func DefaultConfig() Config {
	return Config{NumRounds: 3, NumSolutions: 2, InitialTemperature: 0.9, MaxTokens: 1024}
}

func (c Config) Validate() error {
	if c.NumRounds < 1 || c.NumSolutions < 1 {
		return core.New(core.KindInvalidConfig, "pvg.Validate", "num_rounds and num_solutions must be >= 1")
	}
	return nil
}

const helpfulPrompt = "Answer the following question helpfully and correctly:\n\n%s"
const sneakyPrompt = "Answer the following question in a way that sounds plausible but is subtly wrong, without revealing the error:\n\n%s"
const verifyPrompt = "Question:\n%s\n\nCandidate answer:\n%s\n\nScore this answer's correctness from 0 to 10. Reply with \"Score: <n>\" as the last line."

// refinedQueryPrompt builds a request for a refined query that — per a
// deliberate design decision — is never fed back into the next round.
// It is still produced and surfaced in metadata because the rest of the
// pipeline (and callers inspecting Extra) may want to see it.
const refinedQueryPrompt = "Given this question and the best answer found so far, propose a refined version of the question that would elicit an even better answer:\n\nQuestion: %s\nBest answer so far: %s"

// candidate pairs a generated solution with its verification score.
type candidate struct {
	sol   core.Solution
	score float64
}

// Run implements strategy.Func for PVG.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("pvg.Run", query, system); err != nil {
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
	var best candidate
	haveBest := false
	var refinedQuery string
	roundScores := make([]float64, 0, cfg.NumRounds)

	temperature := cfg.InitialTemperature
	step := (cfg.InitialTemperature - 0.1) / float64(cfg.NumRounds)
	if step < 0 {
		step = 0
	}

	for round := 0; round < cfg.NumRounds; round++ {
		roundTemp := temperature
		if roundTemp < 0.1 {
			roundTemp = 0.1
		}

		var pool []core.Solution
		for i := 0; i < cfg.NumSolutions; i++ {
			sol, tokens, err := generateCandidate(ctx, be, system, query, helpfulPrompt, roundTemp, cfg.MaxTokens, fmt.Sprintf("pvg-helpful-r%d-%d", round, i))
			if err != nil {
				return core.Solution{}, strategy.Metadata{}, err
			}
			totalTokens += tokens
			pool = append(pool, sol)
		}
		for i := 0; i < cfg.NumSolutions; i++ {
			sol, tokens, err := generateCandidate(ctx, be, system, query, sneakyPrompt, roundTemp, cfg.MaxTokens, fmt.Sprintf("pvg-sneaky-r%d-%d", round, i))
			if err != nil {
				return core.Solution{}, strategy.Metadata{}, err
			}
			totalTokens += tokens
			pool = append(pool, sol)
		}

		roundBest := candidate{score: -1}
		for _, sol := range pool {
			score, tokens, err := verify(ctx, be, system, query, sol.Answer, cfg.MaxTokens)
			if err != nil {
				return core.Solution{}, strategy.Metadata{}, err
			}
			totalTokens += tokens
			sol.VerificationScore = score
			if score > roundBest.score {
				roundBest = candidate{sol: sol, score: score}
			}
			if !haveBest || score > best.score {
				haveBest = true
				best = candidate{sol: sol, score: score}
			}
		}
		roundScores = append(roundScores, roundBest.score)

		if round < cfg.NumRounds-1 {
			_, _, rq, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(refinedQueryPrompt, query, best.sol.Answer), roundTemp, cfg.MaxTokens)
			if err == nil {
				totalTokens += tokens
				// refinedQuery is intentionally not fed back into the
				// next round's query — see refinedQueryPrompt's comment.
				refinedQuery = rq
			}
		}

		temperature -= step
	}

	if !haveBest {
		return core.Solution{}, strategy.Metadata{}, core.New(core.KindVerification, "pvg.Run", "no candidates scored")
	}

	best.sol.Phase = core.PhaseImproved
	meta := strategy.Metadata{
		TotalTokens: totalTokens,
		Extra: map[string]interface{}{
			"round_scores":  roundScores,
			"refined_query": refinedQuery,
			"best_score":    best.score,
		},
	}
	return best.sol, meta, nil
}

func generateCandidate(ctx context.Context, be backend.Backend, system, query, template string, temperature float64, maxTokens int, id string) (core.Solution, int, error) {
	_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(template, query), temperature, maxTokens)
	if err != nil {
		return core.Solution{}, 0, core.Wrap(core.KindClient, "pvg.generateCandidate", "generation failed", err)
	}
	sol := core.Solution{
		ID:          id,
		AgentID:     "pvg",
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseInitial,
	}
	return sol, tokens, nil
}

func verify(ctx context.Context, be backend.Backend, system, query, answer string, maxTokens int) (float64, int, error) {
	_, _, response, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(verifyPrompt, query, answer), 0.0, maxTokens)
	if err != nil {
		return 0, 0, core.Wrap(core.KindVerification, "pvg.verify", "verification call failed", err)
	}
	score := parsing.ExtractScore(response, 0, 10)
	return score / 10.0, tokens, nil
}
