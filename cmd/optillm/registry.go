package main

import (
	"github.com/optillm-go/optillm/compound/leap"
	"github.com/optillm-go/optillm/compound/moa"
	"github.com/optillm-go/optillm/compound/plansearch"
	"github.com/optillm-go/optillm/compound/pvg"
	"github.com/optillm-go/optillm/compound/rto"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/strategies/autothink"
	"github.com/optillm-go/optillm/strategies/bestofn"
	"github.com/optillm-go/optillm/strategies/cotdecoding"
	"github.com/optillm-go/optillm/strategies/cotreflection"
	"github.com/optillm-go/optillm/strategies/deepthinking"
	"github.com/optillm-go/optillm/strategies/diversesampling"
	"github.com/optillm-go/optillm/strategies/entropydecoding"
	"github.com/optillm-go/optillm/strategies/reread"
	"github.com/optillm-go/optillm/strategies/rstar"
	"github.com/optillm-go/optillm/strategies/selfconsistency"
	"github.com/optillm-go/optillm/strategy"
)

// registry maps each strategy name to its runner; registryDefault gives
// the matching default config for when the CLI does not expose every
// knob as a flag (a subset of strategies get dedicated subcommands with
// their own flags; the rest are listed for discovery and reachable
// programmatically with this map). RSA is omitted: it runs over a population, not a query/system
// pair, and has no standalone CLI entry point.
var registry = map[string]strategy.Func{
	"best-of-n":         bestofn.Run,
	"self-consistency":  selfconsistency.Run,
	"reread":            reread.Run,
	"diverse-sampling":  diversesampling.Run,
	"cot-reflection":    cotreflection.Run,
	"cot-decoding":      cotdecoding.Run,
	"deep-thinking":     deepthinking.Run,
	"entropy-decoding":  entropydecoding.Run,
	"r-star":            rstar.Run,
	"auto-think":        autothink.Run,
	"moa":               moa.Run,
	"rto":               rto.Run,
	"pvg":               pvg.Run,
	"leap":              leap.Run,
	"plansearch":        plansearch.Run,
}

// registryDefault returns the default configuration for name, for any
// caller that wants to invoke a strategy without wiring its own flags.
// Returns nil for a name not in the registry.
func registryDefault(name string) core.StrategyConfig {
	switch name {
	case "best-of-n":
		return bestofn.DefaultConfig()
	case "self-consistency":
		return selfconsistency.DefaultConfig()
	case "reread":
		return reread.DefaultConfig()
	case "diverse-sampling":
		return diversesampling.DefaultConfig()
	case "cot-reflection":
		return cotreflection.DefaultConfig()
	case "cot-decoding":
		return cotdecoding.DefaultConfig()
	case "deep-thinking":
		return deepthinking.DefaultConfig()
	case "entropy-decoding":
		return entropydecoding.DefaultConfig()
	case "r-star":
		return rstar.DefaultConfig()
	case "auto-think":
		return autothink.DefaultConfig()
	case "moa":
		return moa.DefaultConfig()
	case "rto":
		return rto.DefaultConfig()
	case "pvg":
		return pvg.DefaultConfig()
	case "leap":
		return leap.DefaultConfig()
	case "plansearch":
		return plansearch.DefaultConfig()
	default:
		return nil
	}
}

// strategyNames returns the registry's keys in the fixed, documented
// order used by the "strategies" subcommand (not map iteration order).
func strategyNames() []string {
	return []string{
		"best-of-n", "self-consistency", "reread", "diverse-sampling",
		"cot-reflection", "cot-decoding", "deep-thinking", "entropy-decoding",
		"r-star", "auto-think", "moa", "rto", "pvg", "leap", "plansearch",
	}
}
