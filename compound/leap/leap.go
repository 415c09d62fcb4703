// Package leap implements Learn from Errors: extract few-shot examples
// from the query, deliberately get each wrong, derive a principle from
// each mistake, consolidate the principles, then generate a final
// answer that is told to keep them in mind.
package leap

import (
	"encoding/json"
	"fmt"
	"strings"

	"context"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/parsing"
	"github.com/optillm-go/optillm/strategy"
)

// Config is LEAP's immutable options.
type Config struct {
	ExtractionTemperature float64
	MistakeTemperature    float64
	PrincipleTemperature  float64
	FinalTemperature      float64
	MaxTokensExtraction   int
	MaxTokensMistakes     int
	MaxTokensPrinciples   int
	MaxTokensFinal        int
	MaxPrinciples         int
}

func DefaultConfig() Config {
	return Config{
		ExtractionTemperature: 0.3,
		MistakeTemperature:    0.7,
		PrincipleTemperature:  0.3,
		FinalTemperature:      0.5,
		MaxTokensExtraction:   1024,
		MaxTokensMistakes:     1024,
		MaxTokensPrinciples:   1024,
		MaxTokensFinal:        1024,
		MaxPrinciples:         8,
	}
}

func (c Config) Validate() error {
	for _, t := range []float64{c.ExtractionTemperature, c.MistakeTemperature, c.PrincipleTemperature, c.FinalTemperature} {
		if t < 0 || t > 2 {
			return core.New(core.KindInvalidConfig, "leap.Validate", "temperatures must be in [0, 2]")
		}
	}
	if c.MaxPrinciples < 1 {
		return core.New(core.KindInvalidConfig, "leap.Validate", "max_principles must be >= 1")
	}
	return nil
}

// example is a few-shot (question, answer) pair parsed out of the query.
type example struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// mistake pairs an example with the intentionally-flawed response it
// produced.
type mistake struct {
	question        string
	reasoning       string
	generatedAnswer string
	correctAnswer   string
}

const extractionPrompt = "Analyze the following query and determine if it contains few-shot examples. If it does, extract the examples and their corresponding answers. Format the examples as a JSON array of objects with 'question' and 'answer' fields. If there are no examples, return an empty array. Enclose your response within <output></output> tags.\n\nQuery: %s"

const mistakePrompt = "Answer the following question step by step. To induce a mistake, deliberately introduce an error in your reasoning or calculation.\n\nQuestion: %s\n\nProvide your step-by-step reasoning, then enclose your final answer within <output></output> tags. Think step by step, but make sure to include a mistake."

const lowLevelPrinciplePrompt = "Question: %s\nGenerated Reasoning: %s\nGenerated Answer: %s\nCorrect Answer: %s\n\nConduct a thorough analysis of the generated answer compared to the correct answer. Identify discrepancies, misunderstandings, or errors. Provide clear insights and principles that can improve future responses. Focus on general principles, not just this specific case.\n\nEnclose ONLY the principles within <output></output> tags."

const highLevelPrinciplePrompt = "Low-level principles:\n%s\n\nCreate a list of unique and insightful principles to improve future responses based on the analysis above. Focus on capturing the essence while eliminating redundancies. Each point should be clear, concise, and directly derived from the analysis.\n\nCreate a numbered list of principles. Limit to at most %d principles.\nEnclose your list within <output></output> tags."

// Run implements strategy.Func for LEAP.
func Run(ctx context.Context, query, system string, rawCfg core.StrategyConfig, be backend.Backend) (core.Solution, strategy.Metadata, error) {
	if err := strategy.RequireNonEmpty("leap.Run", query, system); err != nil {
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

	examples, tokens, err := extractExamples(ctx, be, system, query, cfg)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	if len(examples) == 0 {
		answer, tokens, err := generateFinal(ctx, be, system, query, nil, cfg)
		totalTokens += tokens
		if err != nil {
			return core.Solution{}, strategy.Metadata{}, err
		}
		return finish(answer, totalTokens, 0, 0, nil)
	}

	mistakes, tokens, err := generateMistakes(ctx, be, system, examples, cfg)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	lowLevel, tokens, err := generateLowLevelPrinciples(ctx, be, system, mistakes, cfg)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	highLevel, tokens, err := generateHighLevelPrinciples(ctx, be, system, lowLevel, cfg)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	answer, tokens, err := generateFinal(ctx, be, system, query, highLevel, cfg)
	totalTokens += tokens
	if err != nil {
		return core.Solution{}, strategy.Metadata{}, err
	}

	return finish(answer, totalTokens, len(examples), len(mistakes), highLevel)
}

func finish(answer string, totalTokens, examplesExtracted, mistakesGenerated int, principles []string) (core.Solution, strategy.Metadata, error) {
	reasoning, finalAnswer := parsing.SplitReasoningAnswer(answer)
	sol := core.Solution{
		ID:        "leap-solution",
		AgentID:   "leap",
		Reasoning: reasoning,
		Answer:    finalAnswer,
		Phase:     core.PhaseSynthesized,
	}
	meta := strategy.Metadata{
		TotalTokens: totalTokens,
		Extra: map[string]interface{}{
			"examples_extracted": examplesExtracted,
			"mistakes_generated": mistakesGenerated,
			"principles_learned": len(principles),
			"final_principles":   principles,
		},
	}
	return sol, meta, nil
}

func extractExamples(ctx context.Context, be backend.Backend, system, query string, cfg Config) ([]example, int, error) {
	response, _, _, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(extractionPrompt, query), cfg.ExtractionTemperature, cfg.MaxTokensExtraction)
	if err != nil {
		return nil, 0, core.Wrap(core.KindClient, "leap.extractExamples", "extraction call failed", err)
	}
	extracted, _ := parsing.ExtractSection(response, "output")
	if extracted == "" {
		return nil, tokens, nil
	}

	var raw []example
	if jsonErr := json.Unmarshal([]byte(extracted), &raw); jsonErr != nil {
		return nil, tokens, nil
	}
	examples := make([]example, 0, len(raw))
	for _, e := range raw {
		if e.Question != "" && e.Answer != "" {
			examples = append(examples, e)
		}
	}
	return examples, tokens, nil
}

func generateMistakes(ctx context.Context, be backend.Backend, system string, examples []example, cfg Config) ([]mistake, int, error) {
	totalTokens := 0
	var mistakes []mistake
	for _, ex := range examples {
		response, _, _, tokens, err := strategy.GenerateOnce(ctx, be, system, fmt.Sprintf(mistakePrompt, ex.Question), cfg.MistakeTemperature, cfg.MaxTokensMistakes)
		if err != nil {
			return nil, totalTokens, core.Wrap(core.KindClient, "leap.generateMistakes", "mistake generation failed", err)
		}
		totalTokens += tokens
		generatedAnswer, _ := parsing.ExtractSection(response, "output")
		if generatedAnswer != ex.Answer {
			mistakes = append(mistakes, mistake{
				question:        ex.Question,
				reasoning:       response,
				generatedAnswer: generatedAnswer,
				correctAnswer:   ex.Answer,
			})
		}
	}
	return mistakes, totalTokens, nil
}

func generateLowLevelPrinciples(ctx context.Context, be backend.Backend, system string, mistakes []mistake, cfg Config) ([]string, int, error) {
	totalTokens := 0
	var principles []string
	for _, m := range mistakes {
		prompt := fmt.Sprintf(lowLevelPrinciplePrompt, m.question, m.reasoning, m.generatedAnswer, m.correctAnswer)
		response, _, _, tokens, err := strategy.GenerateOnce(ctx, be, system, prompt, cfg.PrincipleTemperature, cfg.MaxTokensPrinciples)
		if err != nil {
			return nil, totalTokens, core.Wrap(core.KindClient, "leap.generateLowLevelPrinciples", "principle derivation failed", err)
		}
		totalTokens += tokens
		if principle, _ := parsing.ExtractSection(response, "output"); principle != "" {
			principles = append(principles, principle)
		}
	}
	return principles, totalTokens, nil
}

func generateHighLevelPrinciples(ctx context.Context, be backend.Backend, system string, lowLevel []string, cfg Config) ([]string, int, error) {
	if len(lowLevel) == 0 {
		return nil, 0, nil
	}
	prompt := fmt.Sprintf(highLevelPrinciplePrompt, strings.Join(lowLevel, "\n"), cfg.MaxPrinciples)
	response, _, _, tokens, err := strategy.GenerateOnce(ctx, be, system, prompt, cfg.PrincipleTemperature, cfg.MaxTokensPrinciples)
	if err != nil {
		return nil, tokens, core.Wrap(core.KindClient, "leap.generateHighLevelPrinciples", "consolidation call failed", err)
	}
	section, _ := parsing.ExtractSection(response, "output")
	var out []string
	for _, line := range strings.Split(section, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) > cfg.MaxPrinciples {
		out = out[:cfg.MaxPrinciples]
	}
	return out, tokens, nil
}

func generateFinal(ctx context.Context, be backend.Backend, system, query string, principles []string, cfg Config) (string, int, error) {
	var prefix string
	if len(principles) > 0 {
		prefix = "Keep in mind these principles:\n" + strings.Join(principles, "\n") + "\n\n"
	}
	text, _, _, tokens, err := strategy.GenerateOnce(ctx, be, system, prefix+"Please answer the following query:\n\n"+query, cfg.FinalTemperature, cfg.MaxTokensFinal)
	if err != nil {
		return "", tokens, core.Wrap(core.KindClient, "leap.generateFinal", "final generation failed", err)
	}
	return text, tokens, nil
}
