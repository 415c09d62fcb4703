// Command optillm is the CLI driver: it parses a subcommand (auto-think,
// deep-thinking, entropy-decoding, cot-decoding, r-star and mars, plus
// "strategies" to list every registered strategy), merges a JSON
// config file with CLI flags, builds a backend handle, dispatches to
// the strategy entry point, and prints a human summary plus metadata.
// The driver owns no request state of its own.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/optillm-go/optillm/backend/ollama"
	"github.com/optillm-go/optillm/core"
	"github.com/optillm-go/optillm/telemetry"
)

// CLI is the top-level kong command tree.
type CLI struct {
	Verbose int    `short:"v" type:"counter" help:"Increase logging verbosity (repeatable): 0=warn,1=info,2=debug,3+=trace."`
	NoColor bool   `help:"Disable colored/human summary formatting."`
	Config  string `short:"c" name:"config" env:"OPTILLM_CONFIG" help:"Path to a JSON config file." type:"path"`

	APIKey  string `help:"Override the config file's api_key."`
	Model   string `help:"Override the config file's model."`
	APIBase string `name:"api-base" help:"Override the config file's api_base (http://localhost:11434 when neither is set)."`
	Timeout int    `help:"Per-call timeout in seconds; overrides the config file."`

	AutoThink       AutoThinkCmd       `cmd:"" name:"auto-think" help:"Classify query complexity and generate at the matching temperature."`
	DeepThinking    DeepThinkingCmd    `cmd:"" name:"deep-thinking" help:"Single-call deep-thinking generation; iteration and token settings are recorded in metadata."`
	EntropyDecoding EntropyDecodingCmd `cmd:"" name:"entropy-decoding" help:"Single-call generation; entropy settings are recorded in metadata."`
	CotDecoding     CotDecodingCmd     `cmd:"" name:"cot-decoding" help:"Chain-of-thought decoding scaffold."`
	RStar           RStarCmd           `cmd:"" name:"r-star" help:"Single-call R* generation; search settings are recorded in metadata."`
	Mars            MarsCmd            `cmd:"" name:"mars" help:"Run the multi-agent coordinator."`
	Strategies      StrategiesCmd      `cmd:"" name:"strategies" help:"List available strategies."`
}

// runCtx bundles the resolved backend config and logger every
// subcommand needs to build a backend and issue calls.
type runCtx struct {
	backend core.BackendConfig
	logger  *telemetry.Logger
	noColor bool
}

func (c *CLI) resolve() (runCtx, error) {
	fileCfg, err := loadConfigFile(c.Config)
	if err != nil {
		return runCtx{}, err
	}
	override := core.BackendConfig{
		APIKey:  c.APIKey,
		Model:   c.Model,
		APIBase: c.APIBase,
	}
	if c.Timeout > 0 {
		override.Timeout = time.Duration(c.Timeout) * time.Second
	}
	merged := fileCfg.Merge(override)
	if merged.Timeout == 0 {
		merged.Timeout = core.DefaultTimeout
	}
	if merged.APIBase == "" {
		merged.APIBase = "http://localhost:11434"
	}

	level := telemetry.LevelFromVerbosity(c.Verbose)
	logger := telemetry.NewLogger("optillm", level)

	return runCtx{backend: merged, logger: logger, noColor: c.NoColor}, nil
}

// newBackend builds the reference Ollama backend from the resolved
// config, wired with the driver's logger.
func (rc runCtx) newBackend() *ollama.Client {
	return ollama.New(ollama.Config{
		APIBase: rc.backend.APIBase,
		Model:   rc.backend.Model,
		Timeout: rc.backend.Timeout,
	}, ollama.WithLogger(rc.logger))
}

// resolveSystem falls back to the config file's system_prompt when a
// subcommand's --system flag is empty.
func (rc runCtx) resolveSystem(flag string) string {
	if flag != "" {
		return flag
	}
	return rc.backend.SystemPrompt
}

func main() {
	cli := CLI{}
	kctx := kong.Parse(&cli,
		kong.Name("optillm"),
		kong.Description("Inference-time LLM optimization engine."),
		kong.UsageOnError(),
	)

	err := kctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

// withTimeout derives a per-call context bounded by the resolved
// backend timeout; per spec.md §5 timeouts are per-call, not per-phase.
func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = core.DefaultTimeout
	}
	return context.WithTimeout(parent, d)
}
