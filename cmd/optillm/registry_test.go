package main

import "testing"

// TestRegistryExhaustive asserts every name in strategyNames() has a
// non-nil entry in both the runner and default-config maps, keeping the
// "closed Go map" dispatch table honest as strategies are added.
func TestRegistryExhaustive(t *testing.T) {
	for _, name := range strategyNames() {
		if registry[name] == nil {
			t.Errorf("registry missing runner for %q", name)
		}
		if registryDefault(name) == nil {
			t.Errorf("registryDefault missing config for %q", name)
		}
	}
}

func TestRegistryDefaultValidates(t *testing.T) {
	for _, name := range strategyNames() {
		cfg := registryDefault(name)
		if cfg == nil {
			continue
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config for %q failed validation: %v", name, err)
		}
	}
}
