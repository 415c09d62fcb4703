package mars

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/optillm-go/optillm/backend"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategy"
)

// StrategyEntry records one technique observed to work on some
// Solution, with a running success rate updated by EMA each time the
// technique is registered again, from whether that Solution was
// verified at registration time (Phase 2b, before Phase 3 runs).
type StrategyEntry struct {
	ID           string
	Description  string
	Technique    string
	DiscoveredBy string
	SuccessRate  float64
	DiscoveredAt time.Time
}

// StrategyExtractor pulls technique descriptors out of a Solution's
// reasoning. The coordinator's default is a placeholder (two fixed
// descriptors) per the reference; callers running against a real
// backend can supply one that actually calls the model.
type StrategyExtractor func(ctx context.Context, sol core.Solution, be backend.Backend) ([]string, int, error)

// PlaceholderExtractor returns two fixed technique descriptors
// regardless of the Solution, mirroring the reference implementation
// (which never wired strategy extraction to a real model call). It
// makes no backend call and consumes zero tokens.
func PlaceholderExtractor(_ context.Context, _ core.Solution, _ backend.Backend) ([]string, int, error) {
	return []string{"systematic step-by-step decomposition", "explicit verification of intermediate results"}, 0, nil
}

// BackendExtractor asks the backend to name 3-5 techniques used in a
// Solution's reasoning, parsed as a numbered list.
func BackendExtractor(ctx context.Context, sol core.Solution, be backend.Backend) ([]string, int, error) {
	prompt := fmt.Sprintf(strategyExtractionPrompt, sol.Reasoning)
	text, _, _, tokens, err := strategy.GenerateOnce(ctx, be, explorationSystemPrompt, prompt, 0.3, 512)
	if err != nil {
		return nil, tokens, core.Wrap(core.KindClient, "mars.BackendExtractor", "strategy extraction failed", err)
	}
	return parseNumberedList(text), tokens, nil
}

func parseNumberedList(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if idx := strings.IndexByte(trimmed, '.'); idx > 0 && idx <= 2 {
			if _, err := fmt.Sscanf(trimmed[:idx], "%d", new(int)); err == nil {
				trimmed = strings.TrimSpace(trimmed[idx+1:])
			}
		}
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// strategyNetwork is the coordinator's single-owner registry of
// discovered techniques, keyed by a stable id so repeated discoveries
// of the same technique update one entry's success rate instead of
// accumulating duplicates.
type strategyNetwork struct {
	entries map[string]*StrategyEntry
	order   []string
}

func newStrategyNetwork() *strategyNetwork {
	return &strategyNetwork{entries: make(map[string]*StrategyEntry)}
}

// register adds or updates an entry for description, discovered by
// agentID on a Solution; success is that Solution's verification
// status as passed in by the caller. The success rate is seeded at 1.0/0.0 on first sight and
// EMA-updated (r <- 0.8*r + 0.2*(success?1:0)) on repeats.
func (n *strategyNetwork) register(description, technique, agentID string, success bool, now time.Time) *StrategyEntry {
	id := "strategy-" + description
	if e, ok := n.entries[id]; ok {
		e.SuccessRate = 0.8*e.SuccessRate + 0.2*boolToFloat(success)
		return e
	}
	e := &StrategyEntry{
		ID:           id,
		Description:  description,
		Technique:    technique,
		DiscoveredBy: agentID,
		SuccessRate:  boolToFloat(success),
		DiscoveredAt: now,
	}
	n.entries[id] = e
	n.order = append(n.order, id)
	return e
}

func (n *strategyNetwork) all() []StrategyEntry {
	out := make([]StrategyEntry, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, *n.entries[id])
	}
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
