// Package orchestrator implements the conversion strategy decision and the
// candidate-merge pipeline that turns a kana reading into a ranked list of
// annotated kanji candidates.
package orchestrator

import (
	"github.com/vrclipboard-ime/karukan/internal/config"
)

// Strategy names the model-dispatch plan chosen for a single conversion
// call.
type Strategy struct {
	Kind Kind
	// BeamWidth is meaningful only for MainModelBeam and ParallelBeam.
	BeamWidth int
}

// Kind enumerates the possible strategy shapes.
type Kind int

const (
	// MainModelOnly runs only the main model, greedy decoding.
	MainModelOnly Kind = iota
	// LightModelOnly runs only the light model, greedy decoding.
	LightModelOnly
	// MainModelBeam runs only the main model with beam search (used by the
	// Light strategy, which loads the light model into the main slot).
	MainModelBeam
	// ParallelBeam runs the main model greedy and the light model beam
	// search concurrently, merging their outputs.
	ParallelBeam
)

// DetermineStrategy is a pure function of the inputs: it chooses the
// conversion strategy from the reading's token count under the main
// model's tokenizer, the requested candidate count, whether a light model
// is configured, the current adaptive latency flag, and the strategy
// configuration. It performs no I/O and does not mutate any state, so it
// is exercised directly by strategy-table tests without a live model.
func DetermineStrategy(readingTokens, numCandidates int, hasLightModel, adaptiveUseLightModel bool, cfg config.ConversionSettings) Strategy {
	switch cfg.Strategy {
	case config.StrategyLight:
		// Light mode: the light model is loaded into the main slot.
		// Auto-suggest (numCandidates == 1) is greedy; explicit conversion
		// is beam search.
		if numCandidates == 1 {
			return Strategy{Kind: MainModelOnly}
		}
		return Strategy{Kind: MainModelBeam, BeamWidth: min(numCandidates, cfg.BeamWidth)}
	case config.StrategyMain:
		return Strategy{Kind: MainModelOnly}
	default:
		return determineAdaptiveStrategy(readingTokens, numCandidates, hasLightModel, adaptiveUseLightModel, cfg)
	}
}

func determineAdaptiveStrategy(readingTokens, numCandidates int, hasLightModel, adaptiveUseLightModel bool, cfg config.ConversionSettings) Strategy {
	if !hasLightModel {
		return Strategy{Kind: MainModelOnly}
	}

	if numCandidates == 1 {
		// Auto-suggest: adapt based on measured latency.
		if adaptiveUseLightModel {
			return Strategy{Kind: LightModelOnly}
		}
		return Strategy{Kind: MainModelOnly}
	}

	// Explicit conversion (Space key).
	if adaptiveUseLightModel {
		// Main model was too slow — use the light model only.
		return Strategy{Kind: LightModelOnly}
	}
	if readingTokens <= cfg.ShortInputThreshold {
		// Short input and the main model is fast enough: parallel beam.
		return Strategy{Kind: ParallelBeam, BeamWidth: min(numCandidates, cfg.BeamWidth)}
	}
	// Long input: proactively use the light model.
	return Strategy{Kind: LightModelOnly}
}

// NextAdaptiveFlag computes the updated adaptive_use_light_model flag after
// a conversion. Only MainModelOnly and ParallelBeam strategies involve the
// main model's latency, so only those update the flag; LightModelOnly and
// MainModelBeam leave it unchanged since their latency is not a proxy for
// the main model's speed. Callers should only invoke this under
// StrategyAdaptive with a configured light model and a nonzero
// MaxLatencyMs — see [ShouldUpdateAdaptiveFlag].
func NextAdaptiveFlag(strategy Strategy, conversionMs, maxLatencyMs uint64) bool {
	switch strategy.Kind {
	case MainModelOnly, ParallelBeam:
		return conversionMs > maxLatencyMs
	default:
		return false // unused by callers when ShouldUpdateAdaptiveFlag is false
	}
}

// ShouldUpdateAdaptiveFlag reports whether the adaptive flag participates
// at all: only under the Adaptive strategy, with latency tracking enabled
// (MaxLatencyMs != 0) and a light model configured.
func ShouldUpdateAdaptiveFlag(cfg config.ConversionSettings, hasLightModel bool) bool {
	return cfg.Strategy == config.StrategyAdaptive && cfg.MaxLatencyMs != 0 && hasLightModel
}
