package main

import (
	"context"
	"fmt"

	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/mars"
)

// MarsCmd runs the five-phase multi-agent coordinator and prints its
// event stream followed by the synthesized answer.
type MarsCmd struct {
	Query  string `required:"" help:"The user query."`
	System string `help:"System instructions (falls back to the config file's system_prompt)."`

	NumAgents int `name:"num-agents" default:"3" help:"Number of exploration-phase agents."`
}

func (c *MarsCmd) Run(cli *CLI) error {
	rc, err := cli.resolve()
	if err != nil {
		return err
	}
	system := rc.resolveSystem(c.System)
	if system == "" {
		return core.New(core.KindInvalidConfig, "cmd.mars", "system instructions are required (pass --system or set system_prompt in the config file)")
	}

	cfg := mars.DefaultConfig()
	cfg.NumAgents = c.NumAgents
	cfg.Temperatures = evenlySpacedTemperatures(c.NumAgents)

	be := rc.newBackend()
	coord, err := mars.New(cfg, be)
	if err != nil {
		return err
	}

	events := make(chan mars.Event, 64)
	coord.Events = events
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			printMarsEvent(ev)
		}
	}()

	ctx, cancel := withTimeout(context.Background(), rc.backend.Timeout)
	defer cancel()

	out, err := coord.Run(ctx, c.Query, system)
	close(events)
	<-done
	if err != nil {
		return err
	}

	fmt.Printf("\nFinal answer (%s, %d iterations, %d tokens): %s\n",
		out.SelectionMethod, out.Iterations, out.TotalTokens, out.Answer)
	return nil
}

func printMarsEvent(ev mars.Event) {
	switch ev.Kind {
	case mars.EventExplorationStarted:
		fmt.Printf("[exploration] starting %d agents\n", ev.NumAgents)
	case mars.EventSolutionGenerated:
		fmt.Printf("[exploration] solution %s from agent %s\n", ev.SolutionID, ev.AgentID)
	case mars.EventAggregationStarted:
		fmt.Println("[aggregation] starting")
	case mars.EventSolutionsAggregated:
		fmt.Printf("[aggregation] solution %s\n", ev.SolutionID)
	case mars.EventStrategyNetStarted:
		fmt.Println("[strategy-network] starting")
	case mars.EventStrategyExtracted:
		fmt.Printf("[strategy-network] extracted %s\n", ev.StrategyID)
	case mars.EventVerificationStarted:
		fmt.Println("[verification] starting")
	case mars.EventSolutionVerified:
		fmt.Printf("[verification] %s correct=%v score=%.2f\n", ev.SolutionID, ev.IsCorrect, ev.Score)
	case mars.EventImprovementStarted:
		fmt.Printf("[improvement] iteration %d\n", ev.Iteration)
	case mars.EventSolutionImproved:
		fmt.Printf("[improvement] solution %s\n", ev.SolutionID)
	case mars.EventSynthesisStarted:
		fmt.Println("[synthesis] starting")
	case mars.EventAnswerSynthesized:
		fmt.Printf("[synthesis] answer: %s\n", ev.Answer)
	case mars.EventError:
		fmt.Printf("[error] %s\n", ev.Message)
	}
}

// evenlySpacedTemperatures gives MARS's exploration phase n temperatures
// evenly spaced from 0.2 to 0.9; a single agent gets 0.5.
func evenlySpacedTemperatures(n int) []float64 {
	if n <= 0 {
		n = 1
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = 0.5
		return out
	}
	step := 0.7 / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = 0.2 + step*float64(i)
	}
	return out
}
