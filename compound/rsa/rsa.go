// Package rsa implements Reinforced Self-Aggregation: iterative
// selection-and-refinement over a population of Solutions. Within this
// module its caller is MARS Phase 2a; it is not in the CLI registry.
package rsa

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

type SelectionCriterion int

const (
	BestScore SelectionCriterion = iota
	Diversity
	Thoroughness
	Random
	Tournament
)

type RefinementStrategy int

const (
	Synthesis RefinementStrategy = iota
	Merge
	Iterative
	Ensemble
)

// Config is RSA's immutable options.
type Config struct {
	PopulationSize int
	SelectionSize  int
	NumIterations  int
	Selection      SelectionCriterion
	Refinement     RefinementStrategy
	Elitism        bool
}

func DefaultConfig() Config {
	return Config{PopulationSize: 6, SelectionSize: 3, NumIterations: 3, Selection: BestScore, Refinement: Synthesis, Elitism: true}
}

func (c Config) Validate() error {
	if c.PopulationSize < 1 || c.SelectionSize < 1 {
		return core.New(core.KindInvalidConfig, "rsa.Validate", "population_size and selection_size must be >= 1")
	}
	if c.SelectionSize > c.PopulationSize {
		return core.New(core.KindInvalidConfig, "rsa.Validate", "selection_size must be <= population_size")
	}
	if c.NumIterations < 0 {
		return core.New(core.KindInvalidConfig, "rsa.Validate", "num_iterations must be >= 0")
	}
	return nil
}

// IterationStat records one iteration's summary for metadata.
type IterationStat struct {
	Iteration      int
	PopulationSize int
	Diversity      float64
	BestScore      float64
	Refined        []core.Solution
}

// Run refines population over cfg.NumIterations iterations and returns
// the highest-scoring Solution along with per-iteration statistics.
func Run(ctx context.Context, population []core.Solution, cfg Config, be backend.Backend) (core.Solution, []IterationStat, strategy.Metadata, error) {
	if len(population) == 0 {
		return core.Solution{}, nil, strategy.Metadata{}, core.New(core.KindAggregation, "rsa.Run", "empty population")
	}
	if err := cfg.Validate(); err != nil {
		return core.Solution{}, nil, strategy.Metadata{}, err
	}

	pop := append([]core.Solution(nil), population...)
	stats := make([]IterationStat, 0, cfg.NumIterations)
	totalTokens := 0

	for iter := 0; iter < cfg.NumIterations; iter++ {
		globalBest := bestOf(pop)

		pop = truncate(pop, cfg.PopulationSize)

		leftPopulation := !contains(pop, globalBest.ID)

		selected := selectMembers(pop, cfg.Selection, cfg.SelectionSize)

		refined, tokens, err := refine(ctx, selected, pop, cfg.Refinement, iter, be)
		if err != nil {
			return core.Solution{}, nil, strategy.Metadata{}, err
		}
		totalTokens += tokens

		pop = append(pop, refined...)

		if cfg.Elitism && leftPopulation {
			pop = append(pop, globalBest)
		}

		stats = append(stats, IterationStat{
			Iteration:      iter,
			PopulationSize: len(pop),
			Diversity:      diversityMetric(pop),
			BestScore:      bestOf(pop).VerificationScore,
			Refined:        append([]core.Solution(nil), refined...),
		})
	}

	winner := bestOf(pop)
	meta := strategy.Metadata{TotalTokens: totalTokens, Extra: map[string]interface{}{"iterations": stats}}
	return winner, stats, meta, nil
}

func bestOf(pop []core.Solution) core.Solution {
	best := pop[0]
	for _, s := range pop[1:] {
		if s.VerificationScore > best.VerificationScore {
			best = s
		}
	}
	return best
}

func contains(pop []core.Solution, id string) bool {
	for _, s := range pop {
		if s.ID == id {
			return true
		}
	}
	return false
}

func truncate(pop []core.Solution, size int) []core.Solution {
	sorted := append([]core.Solution(nil), pop...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].VerificationScore > sorted[j].VerificationScore })
	if len(sorted) <= size {
		return sorted
	}
	return sorted[:size]
}

func diversityMetric(pop []core.Solution) float64 {
	seen := map[string]bool{}
	for _, s := range pop {
		seen[strings.ToLower(s.Answer)] = true
	}
	if len(pop) == 0 {
		return 0
	}
	return float64(len(seen)) / float64(len(pop))
}

func selectMembers(pop []core.Solution, criterion SelectionCriterion, n int) []core.Solution {
	if n > len(pop) {
		n = len(pop)
	}
	sorted := append([]core.Solution(nil), pop...)
	switch criterion {
	case BestScore:
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].VerificationScore > sorted[j].VerificationScore })
	case Thoroughness:
		sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i].Reasoning) > len(sorted[j].Reasoning) })
	case Diversity:
		// Greedily pick members maximizing distinct answers seen so far.
		chosen := make([]core.Solution, 0, n)
		seen := map[string]bool{}
		for _, s := range sorted {
			if len(chosen) >= n {
				break
			}
			if !seen[strings.ToLower(s.Answer)] {
				seen[strings.ToLower(s.Answer)] = true
				chosen = append(chosen, s)
			}
		}
		for _, s := range sorted {
			if len(chosen) >= n {
				break
			}
			if !contains(chosen, s.ID) {
				chosen = append(chosen, s)
			}
		}
		return chosen
	case Random, Tournament:
		// Deterministic stand-ins: Random/Tournament both fall back to
		// stable score order here since the module has no seeded RNG
		// threaded through strategy configs.
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].VerificationScore > sorted[j].VerificationScore })
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

func refine(ctx context.Context, selected, pop []core.Solution, strat RefinementStrategy, iter int, be backend.Backend) ([]core.Solution, int, error) {
	switch strat {
	case Merge:
		out := make([]core.Solution, len(selected))
		for i, s := range selected {
			clone := s
			clone.ID = "rsa-merged-" + strconv.Itoa(iter) + "-" + strconv.Itoa(i)
			clone.VerificationScore = math.Min(1.0, clone.VerificationScore+0.1)
			clone.Phase = core.PhaseAggregated
			out[i] = clone
		}
		return out, 0, nil
	case Iterative:
		best := bestOf(selected)
		clone := best
		clone.ID = "rsa-iterative-" + strconv.Itoa(iter)
		clone.VerificationScore = math.Min(1.0, clone.VerificationScore+0.05)
		clone.Phase = core.PhaseAggregated
		return []core.Solution{clone}, 0, nil
	case Ensemble:
		sol := aggregate(selected, "rsa-ensemble-"+strconv.Itoa(iter), true)
		return []core.Solution{sol}, 0, nil
	default: // Synthesis
		sol := aggregate(selected, "rsa-synthesized-iter"+strconv.Itoa(iter), false)
		return []core.Solution{sol}, 0, nil
	}
}

func aggregate(selected []core.Solution, id string, averageStats bool) core.Solution {
	var reasoningParts []string
	tally := map[string]int{}
	order := []string{}
	sumTemp, sumScore := 0.0, 0.0
	for i, s := range selected {
		reasoningParts = append(reasoningParts, "[approach "+strconv.Itoa(i+1)+"] "+s.Reasoning)
		if _, seen := tally[s.Answer]; !seen {
			order = append(order, s.Answer)
		}
		tally[s.Answer]++
		sumTemp += s.Temperature
		sumScore += s.VerificationScore
	}

	modalAnswer := order[0]
	best := tally[modalAnswer]
	for _, a := range order {
		if tally[a] > best {
			modalAnswer, best = a, tally[a]
		}
	}

	sol := core.Solution{
		ID:        id,
		AgentID:   "rsa",
		Reasoning: strings.Join(reasoningParts, "\n"),
		Answer:    modalAnswer,
		Phase:     core.PhaseAggregated,
	}
	if averageStats && len(selected) > 0 {
		sol.Temperature = sumTemp / float64(len(selected))
		sol.VerificationScore = sumScore / float64(len(selected))
	}
	return sol
}
