package config

import (
	"os"
	"strings"
)

// GaugeTriggerDebounce suppresses gauge-trigger firings while an open
// auto-spawned work order already exists for the same preventive config.
// Without it, every reading past the threshold spawns another work order.
//
// Enabled by default. Set via env:
// - GAUGE_TRIGGER_DEBOUNCE=false
func GaugeTriggerDebounce() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("GAUGE_TRIGGER_DEBOUNCE")))
	if v == "false" || v == "0" || v == "no" || v == "n" {
		return false
	}
	return true
}

// PreventiveSchedulerEnabled controls the background sweep that spawns work
// orders from due preventive templates. Disable it when running multiple
// instances against the same DB and a dedicated worker owns the sweep.
//
// Set via env:
// - PREVENTIVE_SCHEDULER=false
func PreventiveSchedulerEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("PREVENTIVE_SCHEDULER")))
	if v == "false" || v == "0" || v == "no" || v == "n" {
		return false
	}
	return true
}
