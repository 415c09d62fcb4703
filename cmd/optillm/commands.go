package main

import (
	"fmt"

	"github.com/optillm-go/optillm/strategies/autothink"
	"github.com/optillm-go/optillm/strategies/cotdecoding"
	"github.com/optillm-go/optillm/strategies/deepthinking"
	"github.com/optillm-go/optillm/strategies/entropydecoding"
	"github.com/optillm-go/optillm/strategies/rstar"
)

// AutoThinkCmd classifies query complexity and generates once at the
// matching temperature.
type AutoThinkCmd struct {
	Query  string `required:"" help:"The user query."`
	System string `help:"System instructions (falls back to the config file's system_prompt)."`

	SimpleThreshold  float64 `name:"simple-threshold" default:"0.25" help:"Complexity score below which a query is Simple."`
	ComplexThreshold float64 `name:"complex-threshold" default:"0.40" help:"Complexity score at/above which a query is Complex."`
}

func (c *AutoThinkCmd) Run(cli *CLI) error {
	rc, err := cli.resolve()
	if err != nil {
		return err
	}
	cfg := autothink.DefaultConfig()
	cfg.SimpleThreshold = c.SimpleThreshold
	cfg.ComplexThreshold = c.ComplexThreshold
	return runAndPrint(cli, rc, "auto-think", c.Query, c.System, cfg, autothink.Run)
}

// DeepThinkingCmd runs the deep-thinking strategy.
type DeepThinkingCmd struct {
	Query  string `required:"" help:"The user query."`
	System string `help:"System instructions (falls back to the config file's system_prompt)."`

	MinTokens  int `name:"min-tokens" default:"256" help:"Minimum token budget."`
	MaxTokens  int `name:"max-tokens" default:"2048" help:"Maximum token budget."`
	Iterations int `default:"3" help:"Iteration count carried to metadata."`
}

func (c *DeepThinkingCmd) Run(cli *CLI) error {
	rc, err := cli.resolve()
	if err != nil {
		return err
	}
	cfg := deepthinking.DefaultConfig()
	cfg.MinTokens = c.MinTokens
	cfg.MaxTokens = c.MaxTokens
	cfg.Iterations = c.Iterations
	return runAndPrint(cli, rc, "deep-thinking", c.Query, c.System, cfg, deepthinking.Run)
}

// EntropyDecodingCmd runs the entropy-decoding strategy.
type EntropyDecodingCmd struct {
	Query  string `required:"" help:"The user query."`
	System string `help:"System instructions (falls back to the config file's system_prompt)."`

	TargetEntropy float64 `name:"target-entropy" default:"0.6" help:"Target entropy, carried to metadata."`
	NumSamples    int     `name:"num-samples" default:"3" help:"Sample count, carried to metadata."`
}

func (c *EntropyDecodingCmd) Run(cli *CLI) error {
	rc, err := cli.resolve()
	if err != nil {
		return err
	}
	cfg := entropydecoding.DefaultConfig()
	cfg.TargetEntropy = c.TargetEntropy
	cfg.NumSamples = c.NumSamples
	return runAndPrint(cli, rc, "entropy-decoding", c.Query, c.System, cfg, entropydecoding.Run)
}

// CotDecodingCmd runs the chain-of-thought decoding strategy.
type CotDecodingCmd struct {
	Query  string `required:"" help:"The user query."`
	System string `help:"System instructions (falls back to the config file's system_prompt)."`

	Steps  int  `default:"4" help:"Number of scaffolded reasoning steps."`
	Verify bool `help:"Recorded in metadata; the scaffold and the call are unchanged."`
}

func (c *CotDecodingCmd) Run(cli *CLI) error {
	rc, err := cli.resolve()
	if err != nil {
		return err
	}
	cfg := cotdecoding.DefaultConfig()
	cfg.Steps = c.Steps
	cfg.Verify = c.Verify
	return runAndPrint(cli, rc, "cot-decoding", c.Query, c.System, cfg, cotdecoding.Run)
}

// RStarCmd runs the R* strategy.
type RStarCmd struct {
	Query  string `required:"" help:"The user query."`
	System string `help:"System instructions (falls back to the config file's system_prompt)."`

	Simulations int     `default:"10" help:"Simulation count, carried to metadata."`
	Exploration float64 `default:"1.414" help:"Exploration constant, carried to metadata."`
	Candidates  int     `default:"3" help:"Candidate count, carried to metadata."`
}

func (c *RStarCmd) Run(cli *CLI) error {
	rc, err := cli.resolve()
	if err != nil {
		return err
	}
	cfg := rstar.DefaultConfig()
	cfg.Simulations = c.Simulations
	cfg.Exploration = c.Exploration
	cfg.Candidates = c.Candidates
	return runAndPrint(cli, rc, "r-star", c.Query, c.System, cfg, rstar.Run)
}

// StrategiesCmd lists every strategy reachable from the registry.
type StrategiesCmd struct{}

func (c *StrategiesCmd) Run(cli *CLI) error {
	fmt.Println("Available strategies:")
	for _, name := range strategyNames() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println("  mars (multi-agent coordinator)")
	return nil
}
