package hostabi

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/vrclipboard-ime/karukan/internal/config"
	"github.com/vrclipboard-ime/karukan/internal/dict"
	"github.com/vrclipboard-ime/karukan/internal/ime"
	"github.com/vrclipboard-ime/karukan/internal/learning"
	"github.com/vrclipboard-ime/karukan/internal/lmfacade"
	"github.com/vrclipboard-ime/karukan/internal/observe"
	"github.com/vrclipboard-ime/karukan/internal/orchestrator"
	"github.com/vrclipboard-ime/karukan/internal/resilience"
)

// PreeditCache is the last UpdatePreedit action's content, exposed to the
// host as byte offsets (hosts expect caret positions in bytes, the engine
// tracks them in runes internally).
type PreeditCache struct {
	Text       string
	CaretBytes uint32
	Dirty      bool
}

// CandidateCache is the last ShowCandidates/HideCandidates action's
// content, paginated exactly as the host should render it.
type CandidateCache struct {
	Texts       []string
	Annotations []string
	Count       int
	Cursor      int
	Dirty       bool
	Hide        bool
}

// CommitCache is the last Commit action's text.
type CommitCache struct {
	Text  string
	Dirty bool
}

// AuxCache is the last UpdateAuxText/HideAuxText action's text.
type AuxCache struct {
	Text  string
	Dirty bool
}

// ProviderFactory constructs a model backend for the given registry
// variant id, used by Init to load the model(s) a conversion strategy
// requires. The core module carries no concrete inference backend (see
// internal/lmfacade's own package doc), so a host binary supplies one at
// Handle-construction time.
type ProviderFactory func(variantID string, nThreads uint32) (lmfacade.Provider, error)

// Handle is one IME engine instance plus the caches a host polls after
// each call. Not safe for concurrent use: spec §5 requires the host
// serialize every call on a single handle.
type Handle struct {
	Engine   *ime.Engine
	Settings *config.Settings
	Pipeline *orchestrator.Pipeline

	providerFactory ProviderFactory

	Preedit    PreeditCache
	Candidates CandidateCache
	Commit     CommitCache
	Aux        AuxCache
}

// NewHandle loads settings (falling back to defaults on any load error,
// matching Settings::load().unwrap_or_default()) and constructs an Engine
// around an empty Pipeline. Init performs the actual dictionary/learning/
// model loading.
func NewHandle(factory ProviderFactory) *Handle {
	settings := config.Default()
	if path, err := config.ConfigFile(); err == nil {
		if loaded, err := config.Load(path); err == nil {
			settings = loaded
		}
	}

	pipeline := &orchestrator.Pipeline{
		Config:  settings.Conversion,
		Metrics: observe.DefaultMetrics(),
	}

	cfg := ime.EngineConfig{
		NumCandidates:     settings.Conversion.NumCandidates,
		DisplayContextLen: 10,
		MaxAPIContextLen: func() int {
			if settings.Conversion.UseContext {
				return settings.Conversion.MaxContextLength
			}
			return 0
		}(),
		ShortInputThreshold: settings.Conversion.ShortInputThreshold,
		BeamWidth:           settings.Conversion.BeamWidth,
		MaxLatencyMs:        settings.Conversion.MaxLatencyMs,
		Strategy:            settings.Conversion.Strategy,
	}

	return &Handle{
		Engine:          ime.NewEngine(pipeline, cfg),
		Settings:        settings,
		Pipeline:        pipeline,
		providerFactory: factory,
	}
}

// Init loads the system dictionary, user dictionaries, and learning cache
// (all non-fatal on failure), then resolves and loads the model(s) the
// configured strategy requires. Returns an error iff the mandatory model
// fails to load.
func (h *Handle) Init() error {
	cs := h.Settings.Conversion

	if dictPath, err := config.DictPath(h.Settings); err == nil {
		if d, err := dict.LoadAuto(dictPath); err == nil {
			h.Pipeline.SystemDict = d
		} else {
			slog.Warn("karukan: system dictionary load failed, continuing without it", "path", dictPath, "error", err)
		}
	}

	if userDicts, err := loadUserDictionaries(); err == nil && userDicts != nil {
		h.Pipeline.UserDict = userDicts
	} else if err != nil {
		slog.Warn("karukan: user dictionary load failed, continuing without it", "error", err)
	}

	if h.Settings.Learning.Enabled {
		if learningPath, err := config.LearningFile(); err == nil {
			if cache, err := learning.Load(learningPath, h.Settings.Learning.MaxEntries); err == nil {
				h.Pipeline.Learning = cache
			} else {
				slog.Warn("karukan: learning cache load failed, continuing without it", "path", learningPath, "error", err)
				h.Pipeline.Learning = learning.New(h.Settings.Learning.MaxEntries)
			}
		}
	}

	registry, err := lmfacade.Registry()
	if err != nil {
		return err
	}

	switch cs.Strategy {
	case config.StrategyLight:
		variant, err := resolveVariantID(registry, cs.LightModel)
		if err != nil {
			slog.Error("karukan: invalid light_model setting", "error", err)
			return err
		}
		main, err := h.loadProvider(variant, cs.NThreads)
		if err != nil {
			slog.Error("karukan: failed to initialize light model", "error", err)
			return err
		}
		h.Pipeline.Main = main
		slog.Info("karukan: light model loaded into main slot", "model", h.Engine.ModelName())

	case config.StrategyMain:
		variant, err := resolveVariantID(registry, cs.Model)
		if err != nil {
			slog.Error("karukan: invalid model setting", "error", err)
			return err
		}
		main, err := h.loadProvider(variant, cs.NThreads)
		if err != nil {
			slog.Error("karukan: failed to initialize main model", "error", err)
			return err
		}
		h.Pipeline.Main = main
		slog.Info("karukan: main model loaded", "model", h.Engine.ModelName())

	default: // StrategyAdaptive, and "" treated as adaptive per config.IsValid
		variant, err := resolveVariantID(registry, cs.Model)
		if err != nil {
			slog.Error("karukan: invalid model setting", "error", err)
			return err
		}
		main, err := h.loadProvider(variant, cs.NThreads)
		if err != nil {
			slog.Error("karukan: failed to initialize default model", "error", err)
			return err
		}
		h.Pipeline.Main = main
		slog.Info("karukan: default model loaded", "model", h.Engine.ModelName())

		lightVariant, err := resolveVariantID(registry, cs.LightModel)
		if err != nil {
			slog.Warn("karukan: invalid light_model setting, using default", "error", err)
			lightVariant = registry.DefaultModel
		}
		light, err := h.loadProvider(lightVariant, cs.NThreads)
		if err != nil {
			slog.Warn("karukan: failed to initialize beam model, continuing without it", "light_model", cs.LightModel, "error", err)
		} else {
			h.Pipeline.Light = light
			slog.Info("karukan: beam model loaded")
		}
	}

	slog.Info("karukan: init complete", "model", h.Engine.ModelName())
	return nil
}

// loadProvider constructs the backend for variantID and wraps it in a
// [resilience.LMFallback] circuit breaker (with no registered fallback
// entries) so a model that starts failing or hanging mid-session degrades
// to returning an error quickly rather than blocking every keystroke,
// instead of being called raw.
func (h *Handle) loadProvider(variantID string, nThreads uint32) (lmfacade.Provider, error) {
	if h.providerFactory == nil {
		return nil, errNoProviderFactory
	}
	p, err := h.providerFactory(variantID, nThreads)
	if err != nil {
		return nil, err
	}
	return resilience.NewLMFallback(p, variantID, resilience.FallbackConfig{}), nil
}

func resolveVariantID(registry *lmfacade.ModelRegistry, requested string) (string, error) {
	if requested == "" {
		_, variant, ok := registry.DefaultVariant()
		if !ok {
			return "", errUnknownVariant
		}
		return variant.ID, nil
	}
	_, variant, ok := registry.FindVariant(requested)
	if !ok {
		return "", errUnknownVariant
	}
	return variant.ID, nil
}

// loadUserDictionaries scans UserDictDir for dictionary files, loading each
// in sorted path order for determinism and merging them into one dictionary
// (see config.UserDictDir's doc comment).
func loadUserDictionaries() (*dict.Dictionary, error) {
	dir, err := config.UserDictDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var dicts []*dict.Dictionary
	for _, name := range names {
		d, err := dict.LoadAuto(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("karukan: skipping unreadable user dictionary", "file", name, "error", err)
			continue
		}
		dicts = append(dicts, d)
	}
	if len(dicts) == 0 {
		return nil, nil
	}
	return dict.Merge(dicts), nil
}

// clearFlags drops every cache's dirty bit before a new ProcessKey call, so
// the host only sees the actions produced by the call it is about to make.
func (h *Handle) clearFlags() {
	h.Preedit.Dirty = false
	h.Candidates.Dirty = false
	h.Candidates.Hide = false
	h.Commit.Dirty = false
	h.Aux.Dirty = false
}

// applyActions updates the caches from one ProcessKey/Commit call's
// action list.
func (h *Handle) applyActions(actions []ime.EngineAction) {
	for _, action := range actions {
		switch action.Kind {
		case ime.ActionUpdatePreedit:
			h.Preedit.Text = action.Preedit.Text
			h.Preedit.CaretBytes = caretRuneToByteOffset(action.Preedit.Text, action.Preedit.Caret)
			h.Preedit.Dirty = true

		case ime.ActionShowCandidates:
			page := action.Candidates.PageCandidates()
			texts := make([]string, len(page))
			annotations := make([]string, len(page))
			for i, c := range page {
				texts[i] = c.Text
				annotations[i] = c.Annotation
			}
			h.Candidates.Texts = texts
			h.Candidates.Annotations = annotations
			h.Candidates.Count = len(texts)
			h.Candidates.Cursor = action.Candidates.PageCursor()
			h.Candidates.Dirty = true
			h.Candidates.Hide = false

		case ime.ActionHideCandidates:
			h.Candidates.Hide = true
			h.Candidates.Dirty = true

		case ime.ActionCommit:
			h.Commit.Text = action.Text
			h.Commit.Dirty = true

		case ime.ActionUpdateAuxText:
			h.Aux.Text = action.Text
			h.Aux.Dirty = true

		case ime.ActionHideAuxText:
			h.Aux.Text = ""
			h.Aux.Dirty = true
		}
	}
}

// caretRuneToByteOffset converts a rune-index caret position (as tracked
// internally by ime.Preedit) into the byte offset hosts expect.
func caretRuneToByteOffset(text string, caretRunes int) uint32 {
	i := 0
	for byteIdx, r := range text {
		if i == caretRunes {
			return uint32(byteIdx)
		}
		i++
		_ = r
	}
	return uint32(len(text))
}

// ProcessKey runs one key event through the engine and refreshes every
// cache. Returns whether the key was consumed.
func (h *Handle) ProcessKey(key ime.KeyEvent) bool {
	h.clearFlags()
	result := h.Engine.ProcessKey(key)
	h.applyActions(result.Actions)
	return result.Consumed
}

// SetSurroundingText mirrors engine_set_surrounding_text: cursorChars is a
// code-point offset into text, splitting it into left/right context.
func (h *Handle) SetSurroundingText(text string, cursorChars uint32) {
	runes := []rune(text)
	offset := int(cursorChars)
	if offset > len(runes) {
		offset = len(runes)
	}
	h.Engine.SetSurroundingContext(string(runes[:offset]), string(runes[offset:]))
}

// Reset clears the engine state and every cache.
func (h *Handle) Reset() {
	h.Engine.Reset()
	h.Preedit = PreeditCache{}
	h.Candidates = CandidateCache{}
	h.Commit = CommitCache{}
	h.Aux = AuxCache{}
}

// Commit commits any pending composing/conversion text (used when the IME
// loses focus) and caches it. Returns whether text was committed.
func (h *Handle) Commit() bool {
	text := h.Engine.Commit()
	if text == "" {
		return false
	}
	h.Commit.Text = text
	h.Commit.Dirty = true
	return true
}

// SaveLearning persists the learning cache if it has unsaved changes.
func (h *Handle) SaveLearning() {
	path, err := config.LearningFile()
	if err != nil {
		return
	}
	if err := h.Engine.SaveLearning(path); err != nil {
		slog.Warn("karukan: failed to save learning cache", "path", path, "error", err)
	}
}

// IsEmpty reports whether the engine is in the Empty phase.
func (h *Handle) IsEmpty() bool {
	return h.Engine.IsEmpty()
}
