package main

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/optillm-go/optillm/core"
)

// fileConfig mirrors the on-disk JSON config record of spec.md §6.
// Unknown keys are rejected outright.
type fileConfig struct {
	APIKey       string `json:"api_key"`
	Model        string `json:"model"`
	APIBase      string `json:"api_base"`
	SystemPrompt string `json:"system_prompt"`
	Timeout      int    `json:"timeout"`
}

// loadConfigFile reads and decodes path, rejecting unrecognized keys. A
// missing path is not an error: callers fall back to CLI flags alone.
func loadConfigFile(path string) (core.BackendConfig, error) {
	if path == "" {
		return core.BackendConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.BackendConfig{}, nil
		}
		return core.BackendConfig{}, core.Wrap(core.KindInvalidConfig, "cmd.loadConfigFile", "failed to read config file", err)
	}

	var fc fileConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return core.BackendConfig{}, core.Wrap(core.KindInvalidConfig, "cmd.loadConfigFile", "failed to parse config file", err)
	}

	out := core.BackendConfig{
		APIKey:       fc.APIKey,
		Model:        fc.Model,
		APIBase:      fc.APIBase,
		SystemPrompt: fc.SystemPrompt,
	}
	if fc.Timeout > 0 {
		out.Timeout = time.Duration(fc.Timeout) * time.Second
	}
	return out, nil
}
