// Package config provides the configuration schema, loader, and filesystem
// path resolution for the karukan input method engine.
package config

// Settings is the root configuration structure for karukan.
// It is typically loaded from a TOML file using [Load] or [LoadFromReader],
// merged on top of the embedded default configuration.
type Settings struct {
	Conversion ConversionSettings `toml:"conversion"`
	Learning   LearningSettings   `toml:"learning"`
}

// StrategyMode selects the conversion orchestrator's model-dispatch policy.
type StrategyMode string

const (
	// StrategyAdaptive dynamically switches between the main and light models
	// based on observed latency. This is the default.
	StrategyAdaptive StrategyMode = "adaptive"

	// StrategyLight loads the light model into the main slot and never loads
	// a separate main model; explicit conversion uses beam search directly
	// on the light model.
	StrategyLight StrategyMode = "light"

	// StrategyMain always uses the main model, greedy decoding only; no light
	// model is loaded.
	StrategyMain StrategyMode = "main"
)

// IsValid reports whether m is one of the recognised strategy modes.
func (m StrategyMode) IsValid() bool {
	switch m {
	case StrategyAdaptive, StrategyLight, StrategyMain, "":
		return true
	default:
		return false
	}
}

// ConversionSettings configures the romaji→kana conversion pipeline and the
// model-selection strategy. Field names and defaults correspond to the
// `conversion.*` keys documented in the external interface reference.
type ConversionSettings struct {
	// Strategy selects adaptive / light / main dispatch. Empty means adaptive.
	Strategy StrategyMode `toml:"strategy"`

	// NumCandidates is the default candidate count on explicit conversion
	// (Space key). Default: 9.
	NumCandidates int `toml:"num_candidates"`

	// UseContext enables passing surrounding editor text to the LM backend as
	// left-context for conversion.
	UseContext bool `toml:"use_context"`

	// MaxContextLength caps the number of surrounding-text characters passed
	// to the LM backend as left-context. It does not affect the context
	// shown in aux text.
	MaxContextLength int `toml:"max_context_length"`

	// DictPath optionally overrides the system dictionary path. Empty means
	// `data_dir/dict.bin`.
	DictPath string `toml:"dict_path"`

	// Model is the main model's variant id. Empty means the registry default.
	Model string `toml:"model"`

	// LightModel is the beam/light model's variant id. Empty means the
	// registry default.
	LightModel string `toml:"light_model"`

	// ShortInputThreshold is the token count at or below which the Adaptive
	// strategy uses Parallel-Beam for explicit conversion.
	ShortInputThreshold int `toml:"short_input_threshold"`

	// BeamWidth caps the number of beams/candidates produced by beam search.
	BeamWidth int `toml:"beam_width"`

	// MaxLatencyMs is the adaptive latency threshold in milliseconds; 0
	// disables the adaptive flag entirely (always acts as if it were false).
	MaxLatencyMs uint64 `toml:"max_latency_ms"`

	// NThreads is the inference thread count hint passed to the LM backend;
	// 0 means the backend's own default.
	NThreads uint32 `toml:"n_threads"`
}

// LearningSettings configures the recency/frequency-scored selection cache.
type LearningSettings struct {
	// Enabled controls whether the learning cache is loaded and saved at all.
	Enabled bool `toml:"enabled"`

	// MaxEntries is the hard cap on total (reading, surface) entries kept
	// across the whole cache; eviction runs at save time.
	MaxEntries int `toml:"max_entries"`
}
