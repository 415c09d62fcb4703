// Package autothink classifies a query's complexity with a deterministic
// scoring function and generates once at the temperature matching the
// classified level. The complexity score is an explicitly heuristic
// approximation, not a measure of correctness.
package autothink

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

// Complexity is the classified query complexity level.
type Complexity string

const (
	Simple  Complexity = "Simple"
	Medium  Complexity = "Medium"
	Complex Complexity = "Complex"
)

// Config is AutoThink's immutable options.
type Config struct {
	SimpleThreshold     float64
	ComplexThreshold    float64
	SimpleTemperature   float64
	MediumTemperature   float64
	ComplexTemperature  float64
	MaxTokens           int
}

func DefaultConfig() Config {
	return Config{
		SimpleThreshold: 0.25, ComplexThreshold: 0.40,
		SimpleTemperature: 0.3, MediumTemperature: 0.6, ComplexTemperature: 1.0,
		MaxTokens: 1024,
	}
}

func (c Config) Validate() error {
	if c.SimpleThreshold >= c.ComplexThreshold {
		return core.New(core.KindInvalidConfig, "autothink.Validate", "simple_threshold must be < complex_threshold")
	}
	return nil
}

var advancedWords = map[string]bool{
	"analyze": true, "synthesize": true, "paradigm": true, "heuristic": true,
	"asymptotic": true, "invariant": true, "orthogonal": true, "empirical": true,
	"algorithm": true, "topology": true, "axiom": true, "inference": true,
}

var jargonWords = map[string]bool{
	"polynomial": true, "recursion": true, "entropy": true, "gradient": true,
	"eigenvalue": true, "homomorphism": true, "derivative": true, "integral": true,
}

var reasoningKeywordWeights = map[string]float64{
	"prove":   1.0,
	"why":     0.6,
	"because": 0.6,
	"analyze": 0.8,
	"compare": 0.7,
	"rigorously": 0.9,
	"edge case": 0.8,
	"contradiction": 0.9,
	"derive":  0.8,
}

var domainKeywords = map[string][]string{
	"math":        {"prove", "theorem", "equation", "integral", "derivative", "prime"},
	"programming": {"algorithm", "function", "recursion", "complexity", "code"},
	"science":     {"hypothesis", "experiment", "molecule", "reaction", "physics"},
	"logic":       {"contradiction", "syllogism", "premise", "inference", "axiom"},
}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Score computes AutoThink's deterministic complexity score in [0,1].
func Score(query string) float64 {
	return 0.20*lengthFactor(query) +
		0.25*vocabularyFactor(query) +
		0.25*reasoningKeywordFactor(query) +
		0.15*domainFactor(query) +
		0.15*structuralFactor(query)
}

func words(query string) []string {
	return strings.Fields(query)
}

func lengthFactor(query string) float64 {
	n := len(words(query))
	switch {
	case n <= 10:
		return 0
	case n <= 30:
		return 0.2
	case n <= 70:
		return 0.5
	case n <= 150:
		return 0.75
	default:
		return 1.0
	}
}

func vocabularyFactor(query string) float64 {
	ws := words(query)
	if len(ws) == 0 {
		return 0
	}
	advancedCount, jargonCount, totalLen := 0, 0, 0
	for _, w := range ws {
		lw := strings.ToLower(strings.Trim(w, ".,;:!?\"'"))
		if advancedWords[lw] {
			advancedCount++
		}
		if jargonWords[lw] {
			jargonCount++
		}
		totalLen += len(lw)
	}
	advancedFraction := float64(advancedCount) / float64(len(ws))
	avgWordLen := float64(totalLen) / float64(len(ws))
	avgLenBucket := math.Min(1, avgWordLen/8)
	jargonFraction := float64(jargonCount) / float64(len(ws))

	return 0.4*advancedFraction + 0.3*avgLenBucket + 0.3*jargonFraction
}

func reasoningKeywordFactor(query string) float64 {
	lower := strings.ToLower(query)
	maxWeight := 0.0
	matches := 0
	for kw, weight := range reasoningKeywordWeights {
		if strings.Contains(lower, kw) {
			matches++
			if weight > maxWeight {
				maxWeight = weight
			}
		}
	}
	bonus := math.Min(0.3, float64(matches)*0.1)
	return 0.7*maxWeight + 0.3*bonus
}

func domainFactor(query string) float64 {
	lower := strings.ToLower(query)
	score := 0.0
	for _, keywords := range domainKeywords {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				score += 0.15
				break
			}
		}
	}
	return math.Min(1, score)
}

func structuralFactor(query string) float64 {
	questionMarks := strings.Count(query, "?")
	brackets := strings.Count(query, "(") + strings.Count(query, ")") +
		strings.Count(query, "[") + strings.Count(query, "]")
	punctuation := strings.Count(query, ":") + strings.Count(query, ";")

	sentences := sentenceSplit.Split(strings.TrimSpace(query), -1)
	nonEmpty := 0
	for _, s := range sentences {
		if strings.TrimSpace(s) != "" {
			nonEmpty++
		}
	}
	avgSentenceLen := 0.0
	if nonEmpty > 0 {
		avgSentenceLen = float64(len(words(query))) / float64(nonEmpty)
	}

	questionScore := math.Min(0.3, float64(questionMarks)*0.15)
	bracketScore := math.Min(0.3, float64(brackets)*0.1)
	punctScore := math.Min(0.2, float64(punctuation)*0.1)
	sentenceScore := math.Min(0.3, avgSentenceLen/60)

	return math.Min(1, questionScore+bracketScore+punctScore+sentenceScore)
}

// Classify maps a score to a Complexity level per cfg's thresholds.
func Classify(score float64, cfg Config) Complexity {
	switch {
	case score < cfg.SimpleThreshold:
		return Simple
	case score < cfg.ComplexThreshold:
		return Medium
	default:
		return Complex
	}
}

// TemperatureFor returns the configured temperature for a classified
// level.
func TemperatureFor(level Complexity, cfg Config) float64 {
	switch level {
	case Simple:
		return cfg.SimpleTemperature
	case Medium:
		return cfg.MediumTemperature
	default:
		return cfg.ComplexTemperature
	}
}

// Run implements strategy.Func for AutoThink.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("autothink.Run", query, system); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}
	cfg, ok := rawCfg.(Config)
	if !ok {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	score := Score(query)
	level := Classify(score, cfg)
	temperature := TemperatureFor(level, cfg)

	_, reasoning, answer, tokens, err := strategy.GenerateOnce(ctx, be, system, query, temperature, cfg.MaxTokens)
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, core.Wrap(core.KindClient, "autothink.Run", "generation failed", err)
	}

	sol := core.Solution{
		ID:          "autothink-solution",
		AgentID:     "autothink",
		Reasoning:   reasoning,
		Answer:      answer,
		Temperature: temperature,
		TokenCount:  tokens,
		Phase:       core.PhaseInitial,
	}
	meta := strategy.Metadata{
		TotalTokens: tokens,
		Extra: map[string]interface{}{
			"complexity_score": score,
			"complexity":       level,
		},
	}
	return sol, meta, nil
}
