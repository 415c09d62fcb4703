package core

import "time"

// DefaultTimeout is the per-call timeout applied when a caller does not
// override it. Timeouts are per-call, not per-phase.
const DefaultTimeout = 300 * time.Second

// StrategyConfig is implemented by every strategy's own immutable
// options struct. Validate returns a typed InvalidConfiguration error
// when a field is out of range; it never mutates the receiver.
type StrategyConfig interface {
	Validate() error
}

// BackendConfig carries the connection-level settings every backend
// implementation accepts, loaded from the driver's config file or CLI
// flags and merged with "later overrides earlier where set" precedence
// (see cmd/optillm/config.go).
type BackendConfig struct {
	APIKey       string
	Model        string
	APIBase      string
	SystemPrompt string
	Timeout      time.Duration
}

// Merge overlays non-zero fields of override onto a copy of b.
func (b BackendConfig) Merge(override BackendConfig) BackendConfig {
	out := b
	if override.APIKey != "" {
		out.APIKey = override.APIKey
	}
	if override.Model != "" {
		out.Model = override.Model
	}
	if override.APIBase != "" {
		out.APIBase = override.APIBase
	}
	if override.SystemPrompt != "" {
		out.SystemPrompt = override.SystemPrompt
	}
	if override.Timeout != 0 {
		out.Timeout = override.Timeout
	}
	return out
}
