// Package bestofn generates N candidates at N temperatures and picks a
// winner by one of several selection methods.
package bestofn

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

// SelectionMethod chooses the winning candidate.
type SelectionMethod int

const (
	BestScore SelectionMethod = iota
	HighestConfidence
	MostThorough
	MostConcise
	MultiCriteria
)

// Config is best-of-N's immutable options.
type Config struct {
	N               int
	MinTemperature  float64
	MaxTemperature  float64
	MaxTokens       int
	Selection       SelectionMethod
}

// DefaultConfig matches spec defaults: N candidates evenly spaced in
// [0.3, 1.0].
func DefaultConfig() Config {
	return Config{N: 3, MinTemperature: 0.3, MaxTemperature: 1.0, MaxTokens: 1024, Selection: BestScore}
}

func (c Config) Validate() error {
	if c.N < 1 {
		return core.New(core.KindInvalidConfig, "bestofn.Validate", "n must be >= 1")
	}
	if c.MinTemperature > c.MaxTemperature {
		return core.New(core.KindInvalidConfig, "bestofn.Validate", "min_temperature must be <= max_temperature")
	}
	return nil
}

type candidate struct {
	sol         core.Solution
	score       float64
	temperature float64
}

// Run implements strategy.Func for best-of-N.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("bestofn.Run", query, system); err != nil {
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
	candidates := make([]candidate, 0, cfg.N)
	totalTokens := 0

	for i, temp := range temps {
		_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, be, system, query, temp, cfg.MaxTokens)
		if err != nil {
			return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "bestofn.Run", "candidate generation failed", err)
		}
		totalTokens += tokens
		candidates = append(candidates, candidate{
			sol: core.Solution{
				ID:          sprintfCandidateID(i),
				AgentID:     "best-of-n",
				Reasoning:   reasoning,
				Answer:      answer,
				Temperature: temp,
				TokenCount:  tokens,
				Phase:       core.PhaseInitial,
			},
			temperature: temp,
		})
	}

	scoreCandidates(candidates, cfg)
	winner := pickWinner(candidates)
	winner.sol.VerificationScore = winner.score

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = c.score
	}

	meta := strategy.Metadata{
		TotalTokens: totalTokens,
		Extra: map[string]interface{}{
			"candidates":    extractSolutions(candidates),
			"scores_mean":   mean(scores),
			"scores_max":    max(scores),
			"scores_min":    min(scores),
			"scores_stddev": stddev(scores),
			"selection":     cfg.Selection,
		},
	}
	return winner.sol, meta, nil
}

func sprintfCandidateID(i int) string {
	return "best-of-n-candidate-" + strconv.Itoa(i)
}

func scoreCandidates(cands []candidate, cfg Config) {
	maxReasoningLen, minAnswerLen := 0, -1
	for _, c := range cands {
		if len(c.sol.Reasoning) > maxReasoningLen {
			maxReasoningLen = len(c.sol.Reasoning)
		}
		if minAnswerLen == -1 || len(c.sol.Answer) < minAnswerLen {
			minAnswerLen = len(c.sol.Answer)
		}
	}

	for i := range cands {
		c := &cands[i]
		switch cfg.Selection {
		case BestScore:
			c.score = c.sol.VerificationScore
		case HighestConfidence:
			c.score = confidenceScore(c.sol)
		case MostThorough:
			if maxReasoningLen > 0 {
				c.score = float64(len(c.sol.Reasoning)) / float64(maxReasoningLen)
			}
		case MostConcise:
			if len(c.sol.Answer) > 0 {
				c.score = float64(minAnswerLen) / float64(len(c.sol.Answer))
			} else {
				c.score = 1
			}
		case MultiCriteria:
			normScore := c.sol.VerificationScore
			normThorough := 0.0
			if maxReasoningLen > 0 {
				normThorough = float64(len(c.sol.Reasoning)) / float64(maxReasoningLen)
			}
			normLenInv := 0.0
			if len(c.sol.Answer) > 0 {
				normLenInv = float64(minAnswerLen) / float64(len(c.sol.Answer))
			}
			diversity := temperatureDiversity(c.temperature, cfg.MinTemperature, cfg.MaxTemperature)
			c.score = 0.4*normScore + 0.3*normThorough + 0.2*normLenInv + 0.1*diversity
		}
	}
}

// confidenceScore implements HighestConfidence's formula.
func confidenceScore(s core.Solution) float64 {
	return 0.6*s.VerificationScore + 0.4*math.Min(1, float64(len(s.Reasoning))/1000)
}

func temperatureDiversity(t, min, max float64) float64 {
	if max == min {
		return 0
	}
	mid := (min + max) / 2
	return math.Abs(t-mid) / ((max - min) / 2)
}

func pickWinner(cands []candidate) candidate {
	best := cands[0]
	for _, c := range cands[1:] {
		if c.score > best.score {
			best = c
		}
	}
	return best
}

func extractSolutions(cands []candidate) []core.Solution {
	out := make([]core.Solution, len(cands))
	for i, c := range cands {
		out[i] = c.sol
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func max(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1]
}

func min(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	if len(sorted) == 0 {
		return 0
	}
	return sorted[0]
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		sumSq += (x - m) * (x - m)
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}
