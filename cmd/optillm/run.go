package main

import (
	"context"
	"fmt"

	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

// runAndPrint validates cfg, resolves system instructions, builds the
// reference backend, invokes fn under the resolved per-call timeout,
// and prints a human summary plus the strategy's metadata.
func runAndPrint(cli *CLI, rc runCtx, name, query, systemFlag string, cfg core.StrategyConfig, fn strategy.Func) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	system := rc.resolveSystem(systemFlag)
	if system == "" {
		return core.New(core.KindInvalidConfig, "cmd."+name, "system instructions are required (pass --system or set system_prompt in the config file)")
	}

	be := rc.newBackend()
	ctx, cancel := withTimeout(context.Background(), rc.backend.Timeout)
	defer cancel()

	sol, meta, err := fn(ctx, query, system, cfg, be)
	if err != nil {
		return err
	}

	printSolution(name, sol, meta)
	return nil
}

func printSolution(name string, sol core.Solution, meta strategy.Metadata) {
	fmt.Printf("Strategy: %s\n", name)
	fmt.Printf("Answer: %s\n", sol.Answer)
	if sol.Reasoning != "" {
		fmt.Printf("Reasoning: %s\n", sol.Reasoning)
	}
	fmt.Printf("Temperature: %.2f\n", sol.Temperature)
	fmt.Printf("Verification score: %.3f\n", sol.VerificationScore)
	fmt.Printf("Total tokens: %d\n", meta.TotalTokens)
	for k, v := range meta.Extra {
		fmt.Printf("  %s: %v\n", k, v)
	}
}
