package orchestrator

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/vrclipboard-ime/karukan/internal/config"
	"github.com/vrclipboard-ime/karukan/internal/dict"
	"github.com/vrclipboard-ime/karukan/internal/learning"
	"github.com/vrclipboard-ime/karukan/internal/lmfacade"
	"github.com/vrclipboard-ime/karukan/internal/observe"
	"github.com/vrclipboard-ime/karukan/internal/romaji"
)

// maxLearningCandidates caps how many learning-cache entries are shown for
// a single reading (exact plus prefix matches combined).
const maxLearningCandidates = 3

// Pipeline dispatches LM backend generation and merges its output with the
// learning cache and dictionaries into a ranked, deduplicated candidate
// list for one reading. A Pipeline is not safe for concurrent use by
// multiple goroutines converting different readings at once — callers own
// one Pipeline per active IME engine, matching the teacher-derived engine's
// single-threaded key-processing model.
type Pipeline struct {
	Main  lmfacade.Provider // required; nil means no model-backed candidates
	Light lmfacade.Provider // optional; nil disables Light/Adaptive/ParallelBeam paths

	SystemDict *dict.Dictionary // optional
	UserDict   *dict.Dictionary // optional
	Learning   *learning.Cache  // optional

	Config  config.ConversionSettings
	Metrics *observe.Metrics // optional; nil disables metric recording

	// AdaptiveUseLightModel is the latency-feedback flag read and updated
	// by Convert under StrategyAdaptive. Reset to false by the caller when
	// a new word begins (spec §4.6, §4.8's Empty-state first-key rule).
	AdaptiveUseLightModel bool

	// LastConversionMs and LastModelName record the most recent
	// conversion's measured latency and the model(s) used, surfaced by the
	// Host Interface's get_last_conversion_ms and aux-text formatting.
	LastConversionMs uint64
	LastModelName    string
}

// Convert runs the full candidate merge pipeline for reading: strategy
// selection, model dispatch, and the five-step merge (Learning →
// UserDictionary → Model → SystemDictionary → Hiragana/Katakana fallback).
// leftContext is the surrounding editor text passed to the LM backend when
// config.UseContext is enabled.
func (p *Pipeline) Convert(ctx context.Context, reading string, numCandidates int, leftContext string) []AnnotatedCandidate {
	modelCandidates := p.runModel(ctx, reading, numCandidates, leftContext)

	hiragana := reading
	katakana := romaji.HiraganaToKatakana(reading)

	b := NewBuilder()

	// 1. Learning candidates (forced in, even if they duplicate a later
	// source's text).
	for _, lc := range p.lookupLearningCandidates(reading) {
		b.PushForced(lc)
		p.recordCandidateSource(ctx, SourceLearning)
	}

	// 2/4. Dictionary candidates, split by source below.
	dictCandidates := p.searchDictionaries(reading)

	// 2. User dictionary, inserted right after Learning.
	for _, ac := range dictCandidates {
		if ac.Source == SourceUserDictionary {
			b.PushAnnotatedIfNew(ac)
			p.recordCandidateSource(ctx, SourceUserDictionary)
		}
	}

	// 3. Model candidates; fall back to the raw reading only if nothing at
	// all has been produced yet.
	if len(modelCandidates) == 0 {
		if b.IsEmpty() {
			b.PushIfNew(hiragana, SourceFallback, "")
			p.recordCandidateSource(ctx, SourceFallback)
		}
	} else {
		for _, text := range modelCandidates {
			b.PushIfNew(text, SourceModel, "")
			p.recordCandidateSource(ctx, SourceModel)
		}
	}

	// 4. System dictionary.
	for _, ac := range dictCandidates {
		if ac.Source == SourceDictionary {
			b.PushAnnotatedIfNew(ac)
			p.recordCandidateSource(ctx, SourceDictionary)
		}
	}

	// 5. Hiragana/katakana fallback if not already present.
	b.PushIfNew(hiragana, SourceFallback, "")
	b.PushIfNew(katakana, SourceFallback, "")

	return b.Candidates()
}

// runModel dispatches to the strategy-selected model backend(s) and
// returns the raw candidate surfaces, updating AdaptiveUseLightModel,
// LastConversionMs, and LastModelName as a side effect. Model errors never
// propagate: per spec §7 a failed backend degrades to an empty candidate
// list rather than an error.
func (p *Pipeline) runModel(ctx context.Context, reading string, numCandidates int, leftContext string) []string {
	if p.Main == nil {
		return nil
	}
	hasLight := p.Light != nil
	katakana := romaji.HiraganaToKatakana(reading)

	readingTokens, err := p.Main.CountInputTokens(ctx, katakana)
	if err != nil {
		// Tokenizer unavailable: fall back to MainModelOnly, matching the
		// teacher-grounded original's debug-log-and-fallback behavior.
		candidates := p.generate(ctx, p.Main, katakana, leftContext, 1)
		p.LastModelName = p.Main.DisplayName()
		return candidates
	}
	strategy := DetermineStrategy(readingTokens, numCandidates, hasLight, p.AdaptiveUseLightModel, p.Config)

	start := nowFunc()
	var candidates []string
	switch strategy.Kind {
	case ParallelBeam:
		candidates = p.runParallelBeam(ctx, katakana, leftContext, strategy.BeamWidth)
		p.LastModelName = p.Main.DisplayName() + "+" + p.Light.DisplayName()
	case LightModelOnly:
		candidates = p.generate(ctx, p.Light, katakana, leftContext, 1)
		p.LastModelName = p.Light.DisplayName()
	case MainModelBeam:
		candidates = p.generate(ctx, p.Main, katakana, leftContext, strategy.BeamWidth)
		p.LastModelName = p.Main.DisplayName()
	default: // MainModelOnly
		candidates = p.generate(ctx, p.Main, katakana, leftContext, 1)
		p.LastModelName = p.Main.DisplayName()
	}
	p.LastConversionMs = elapsedMs(start)

	if p.Metrics != nil {
		p.Metrics.ConversionDuration.Record(ctx, float64(p.LastConversionMs)/1000)
	}

	if ShouldUpdateAdaptiveFlag(p.Config, hasLight) {
		switch strategy.Kind {
		case MainModelOnly, ParallelBeam:
			before := p.AdaptiveUseLightModel
			p.AdaptiveUseLightModel = NextAdaptiveFlag(strategy, p.LastConversionMs, p.Config.MaxLatencyMs)
			if p.Metrics != nil && before != p.AdaptiveUseLightModel {
				p.Metrics.SetAdaptiveUseLightModel(ctx, p.AdaptiveUseLightModel)
			}
		default:
			// LightModelOnly / MainModelBeam: latency is not a proxy for
			// main-model speed, leave the flag untouched.
		}
	}

	return candidates
}

// runParallelBeam runs the main model's greedy generation and the light
// model's beam search concurrently via errgroup, joining exactly two
// tasks the way the original joins two scoped threads. Either side
// failing degrades to an empty contribution rather than failing the
// whole conversion.
func (p *Pipeline) runParallelBeam(ctx context.Context, katakana, leftContext string, beamWidth int) []string {
	var greedy []string
	var beam []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		greedy = p.generate(gctx, p.Main, katakana, leftContext, 1)
		return nil
	})
	g.Go(func() error {
		beam = p.generate(gctx, p.Light, katakana, leftContext, beamWidth)
		return nil
	})
	_ = g.Wait() // both goroutines swallow their own errors; Wait never returns non-nil here

	return MergeGreedyAndBeam(greedy, beam, beamWidth)
}

// generate runs a single greedy or beam-search call against provider and
// returns the decoded surface strings, in score order. Any error (encode,
// generate, decode) degrades to an empty slice.
func (p *Pipeline) generate(ctx context.Context, provider lmfacade.Provider, katakana, leftContext string, n int) []string {
	if provider == nil {
		return nil
	}
	prompt := lmfacade.BuildPrompt(katakana, leftContext)
	tokens, err := provider.Tokenize(ctx, prompt)
	if err != nil {
		return nil
	}

	if n <= 1 {
		out, err := provider.Generate(ctx, tokens, maxNewTokens)
		if err != nil {
			return nil
		}
		text, err := provider.Decode(ctx, out, true)
		if err != nil {
			return nil
		}
		text = lmfacade.CleanOutput(text)
		if text == "" {
			return nil
		}
		return []string{text}
	}

	beams, err := provider.GenerateBeamSearch(ctx, tokens, maxNewTokens, n)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(beams))
	for _, beam := range beams {
		text, err := provider.Decode(ctx, beam.Tokens, true)
		if err != nil {
			continue
		}
		text = lmfacade.CleanOutput(text)
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// maxNewTokens bounds generation length for a single kanji-conversion
// surface; conversions are short phrases, not long-form text.
const maxNewTokens = 32

// lookupLearningCandidates returns up to maxLearningCandidates entries
// from the learning cache for reading: exact matches first, then prefix
// (predictive) matches whose full reading differs from the input.
func (p *Pipeline) lookupLearningCandidates(reading string) []AnnotatedCandidate {
	if p.Learning == nil {
		return nil
	}
	var out []AnnotatedCandidate
	seen := make(map[string]bool)

	for _, s := range p.Learning.Lookup(reading) {
		if len(out) >= maxLearningCandidates {
			return out
		}
		if seen[s.Surface] {
			continue
		}
		seen[s.Surface] = true
		out = append(out, AnnotatedCandidate{Text: s.Surface, Source: SourceLearning})
	}

	for _, ps := range p.Learning.PrefixLookup(reading) {
		if len(out) >= maxLearningCandidates {
			return out
		}
		if ps.Reading == reading {
			continue
		}
		if seen[ps.Surface] {
			continue
		}
		seen[ps.Surface] = true
		out = append(out, AnnotatedCandidate{Text: ps.Surface, Source: SourceLearning, Reading: ps.Reading})
	}

	return out
}

// searchDictionaries returns user dictionary candidates (dictionary order)
// followed by system dictionary candidates (ascending score order),
// deduplicated by surface across both.
func (p *Pipeline) searchDictionaries(reading string) []AnnotatedCandidate {
	var out []AnnotatedCandidate
	seen := make(map[string]bool)

	if p.UserDict != nil {
		if res, ok := p.UserDict.ExactMatchSearch(reading); ok {
			for _, c := range res.Candidates {
				if seen[c.Surface] {
					continue
				}
				seen[c.Surface] = true
				out = append(out, AnnotatedCandidate{Text: c.Surface, Source: SourceUserDictionary})
			}
		}
	}

	if p.SystemDict != nil {
		if res, ok := p.SystemDict.ExactMatchSearch(reading); ok {
			candidates := append([]dict.Candidate(nil), res.Candidates...)
			sort.Slice(candidates, func(i, j int) bool { return candidates[i].Score < candidates[j].Score })
			for _, c := range candidates {
				if seen[c.Surface] {
					continue
				}
				seen[c.Surface] = true
				out = append(out, AnnotatedCandidate{Text: c.Surface, Source: SourceDictionary})
			}
		}
	}

	return out
}

// metricLabel maps a Source to the attribute value recorded on the
// candidates-by-source counter. Distinct from Label, which is the
// user-facing annotation and intentionally blank for Model/Fallback.
func (s Source) metricLabel() string {
	switch s {
	case SourceLearning:
		return "learning"
	case SourceUserDictionary:
		return "user_dictionary"
	case SourceModel:
		return "model"
	case SourceDictionary:
		return "system_dictionary"
	default:
		return "fallback"
	}
}

// recordCandidateSource increments the per-source candidate metric when
// Metrics is configured.
func (p *Pipeline) recordCandidateSource(ctx context.Context, source Source) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.RecordCandidateSource(ctx, source.metricLabel())
}
