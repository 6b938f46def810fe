package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"mnemon/internal/graph"
)

// loadGraphConfigFromFile reads a JSON object of coefficient overrides. Keys
// not present keep the engine defaults.
func loadGraphConfigFromFile(path string) (graph.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.Config{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return graph.Config{}, err
	}

	var cfg graph.Config
	if v, ok := asFloat64(raw["injection_activation"]); ok {
		cfg.InjectionActivation = v
	}
	if v, ok := asFloat64(raw["activation_decay"]); ok {
		cfg.ActivationDecay = v
	}
	if v, ok := asFloat64(raw["initial_threshold"]); ok {
		cfg.InitialThreshold = v
	}
	if v, ok := asFloat64(raw["threshold_adapt_rate"]); ok {
		cfg.ThresholdAdaptRate = v
	}
	if v, ok := asFloat64(raw["min_threshold"]); ok {
		cfg.MinThreshold = v
	}
	if v, ok := asFloat64(raw["learning_rate"]); ok {
		cfg.LearningRate = v
	}
	if v, ok := asFloat64(raw["edge_failure_decay"]); ok {
		cfg.EdgeFailureDecay = v
	}
	if v, ok := asInt(raw["max_edges_per_node"]); ok {
		cfg.MaxEdgesPerNode = v
	}
	if v, ok := asFloat64(raw["transfer_gain"]); ok {
		cfg.TransferGain = v
	}
	if v, ok := asInt(raw["max_patterns"]); ok {
		cfg.MaxPatterns = v
	}
	if v, ok := asInt(raw["max_pattern_length"]); ok {
		cfg.MaxPatternLength = v
	}
	if v, ok := asInt(raw["max_predictions_per_pattern"]); ok {
		cfg.MaxPredictionsPerPattern = v
	}
	if v, ok := asInt(raw["pattern_refire_cooldown"]); ok {
		cfg.PatternRefireCooldown = v
	}
	if v, ok := asFloat64(raw["pattern_gain"]); ok {
		cfg.PatternGain = v
	}
	if v, ok := asInt(raw["steps_per_input_byte"]); ok {
		cfg.StepsPerInputByte = v
	}
	if v, ok := asInt(raw["min_propagation_steps"]); ok {
		cfg.MinPropagationSteps = v
	}
	if v, ok := asInt(raw["max_propagation_steps"]); ok {
		cfg.MaxPropagationSteps = v
	}
	if v, ok := asFloat64(raw["echo_boost"]); ok {
		cfg.EchoBoost = v
	}
	if v, ok := asFloat64(raw["novelty_gain"]); ok {
		cfg.NoveltyGain = v
	}
	if v, ok := asFloat64(raw["error_smoothing"]); ok {
		cfg.ErrorSmoothing = v
	}
	if v, ok := asFloat64(raw["loop_pressure_rise"]); ok {
		cfg.LoopPressureRise = v
	}
	if v, ok := asFloat64(raw["loop_pressure_decay"]); ok {
		cfg.LoopPressureDecay = v
	}
	if v, ok := asInt(raw["variance_window"]); ok {
		cfg.VarianceWindow = v
	}
	if v, ok := asInt(raw["recent_outputs"]); ok {
		cfg.RecentOutputs = v
	}
	return cfg, nil
}

func loadOrDefaultGraphConfig(path string) (graph.Config, error) {
	if path == "" {
		return graph.Config{}, nil
	}
	cfg, err := loadGraphConfigFromFile(path)
	if err != nil {
		return graph.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func splitLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines
}
