// Package selfconsistency generates K reasoning paths at K temperatures,
// extracts an answer from each, and tallies a consensus by a configured
// voting rule.
package selfconsistency

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/parsing"
	"github.com/optillm-go/optillm/strategy"
)

type VotingStrategy int

const (
	MajorityVote VotingStrategy = iota
	QualityWeighted
	HighestConfidence
	RankedChoice
)

// Config is self-consistency's immutable options.
type Config struct {
	K                 int
	BaseTemperature   float64
	TemperatureStep   float64
	MaxTokens         int
	AnswerExtraction  parsing.AnswerExtractionStrategy
	Voting            VotingStrategy
}

// DefaultConfig: K paths starting at temperature 0.5, step 0.8/K.
func DefaultConfig() Config {
	k := 5
	return Config{
		K:                k,
		BaseTemperature:  0.5,
		TemperatureStep:  0.8 / float64(k),
		MaxTokens:        1024,
		AnswerExtraction: parsing.LastLine,
		Voting:           MajorityVote,
	}
}

func (c Config) Validate() error {
	if c.K < 1 {
		return core.New(core.KindInvalidConfig, "selfconsistency.Validate", "k must be >= 1")
	}
	return nil
}

type path struct {
	reasoning   string
	rawText     string
	answer      string
	temperature float64
}

// Run implements strategy.Func for self-consistency.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("selfconsistency.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	paths := make([]path, 0, cfg.K)
	totalTokens := 0

	for i := 0; i < cfg.K; i++ {
		temp := cfg.BaseTemperature + cfg.TemperatureStep*float64(i)
		text, reasoning, _, tokens, err := strategy.GenerateOnce(ctx, be, system, query, temp, cfg.MaxTokens)
		if err != nil {
			return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "selfconsistency.Run", "path generation failed", err)
		}
		totalTokens += tokens
		answer := parsing.ExtractAnswer(text, cfg.AnswerExtraction)
		paths = append(paths, path{reasoning: reasoning, rawText: text, answer: answer, temperature: temp})
	}

	consensusAnswer, consensusScore, tally := tallyVotes(paths, cfg.Voting)

	reasoningParts := make([]string, 0, 3)
	for i, p := range paths {
		if i >= 3 {
			break
		}
		reasoningParts = append(reasoningParts, p.reasoning)
	}

	sol := core.Solution{
		ID:                "self-consistency-consensus",
		AgentID:           "self-consistency",
		Reasoning:         strings.Join(reasoningParts, "\n---\n"),
		Answer:            consensusAnswer,
		VerificationScore: consensusScore,
		Phase:             core.PhaseInitial,
	}

	meta := strategy.Metadata{
		TotalTokens: totalTokens,
		Extra: map[string]interface{}{
			"voting_results":  tally,
			"consensus_score": consensusScore,
			"paths":           len(paths),
		},
	}
	return sol, meta, nil
}

func tallyVotes(paths []path, voting VotingStrategy) (answer string, score float64, tally map[string]int) {
	tally = make(map[string]int)
	order := make([]string, 0)
	for _, p := range paths {
		if _, seen := tally[p.answer]; !seen {
			order = append(order, p.answer)
		}
		tally[p.answer]++
	}

	switch voting {
	case MajorityVote:
		answer = majorityWinner(order, tally)
		score = float64(tally[answer]) / float64(len(paths))
	case QualityWeighted:
		weighted := map[string]float64{}
		meanLen := meanReasoningLen(paths)
		for _, p := range paths {
			weight := 1.0
			if meanLen > 0 {
				weight = math.Min(2, float64(len(p.reasoning))/meanLen)
			}
			weighted[p.answer] += weight
		}
		answer = weightedWinner(order, weighted)
		score = float64(tally[answer]) / float64(len(paths))
	case HighestConfidence:
		meanLenByAnswer := map[string]float64{}
		countByAnswer := map[string]int{}
		for _, p := range paths {
			meanLenByAnswer[p.answer] += float64(len(p.reasoning))
			countByAnswer[p.answer]++
		}
		best, bestScore := "", -1.0
		for _, a := range order {
			voteShare := float64(tally[a]) / float64(len(paths))
			avgLen := meanLenByAnswer[a] / float64(countByAnswer[a])
			conf := 0.7*voteShare + 0.3*math.Min(1, avgLen/1000)
			if conf > bestScore {
				best, bestScore = a, conf
			}
		}
		answer, score = best, bestScore
	case RankedChoice:
		sorted := append([]string(nil), order...)
		sort.SliceStable(sorted, func(i, j int) bool { return tally[sorted[i]] > tally[sorted[j]] })
		answer = sorted[0]
		score = float64(tally[answer]) / float64(len(paths))
	default:
		answer = majorityWinner(order, tally)
		score = float64(tally[answer]) / float64(len(paths))
	}
	return answer, score, tally
}

func majorityWinner(order []string, tally map[string]int) string {
	best, bestCount := "", -1
	for _, a := range order {
		if tally[a] > bestCount {
			best, bestCount = a, tally[a]
		}
	}
	return best
}

func weightedWinner(order []string, weighted map[string]float64) string {
	best, bestWeight := "", -1.0
	for _, a := range order {
		if weighted[a] > bestWeight {
			best, bestWeight = a, weighted[a]
		}
	}
	return best
}

func meanReasoningLen(paths []path) float64 {
	if len(paths) == 0 {
		return 0
	}
	sum := 0
	for _, p := range paths {
		sum += len(p.reasoning)
	}
	return float64(sum) / float64(len(paths))
}
