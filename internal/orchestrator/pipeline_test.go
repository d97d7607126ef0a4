package orchestrator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/vrclipboard-ime/karukan/internal/config"
	"github.com/vrclipboard-ime/karukan/internal/dict"
	"github.com/vrclipboard-ime/karukan/internal/learning"
	"github.com/vrclipboard-ime/karukan/internal/lmfacade"
	"github.com/vrclipboard-ime/karukan/internal/lmfacade/mock"
)

// beamOf builds a lmfacade.Beam whose Tokens decode (under the mock
// Provider's rune-per-token scheme) back to text.
func beamOf(text string, logp float64) lmfacade.Beam {
	runes := []rune(text)
	tokens := make([]lmfacade.TokenID, len(runes))
	for i, r := range runes {
		tokens[i] = lmfacade.TokenID(r)
	}
	return lmfacade.Beam{Tokens: tokens, CumulativeLogP: logp}
}

func buildTestDict(t *testing.T, entries map[string][]dict.Candidate) *dict.Dictionary {
	t.Helper()
	type jsonCandidate struct {
		Surface string  `json:"surface"`
		Score   float32 `json:"score"`
	}
	type jsonEntry struct {
		Reading    string          `json:"reading"`
		Candidates []jsonCandidate `json:"candidates"`
	}
	var jsonEntries []jsonEntry
	for reading, cands := range entries {
		je := jsonEntry{Reading: reading}
		for _, c := range cands {
			je.Candidates = append(je.Candidates, jsonCandidate{Surface: c.Surface, Score: c.Score})
		}
		jsonEntries = append(jsonEntries, je)
	}

	data, err := json.Marshal(jsonEntries)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "dict.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	d, err := dict.BuildFromJSON(path)
	if err != nil {
		t.Fatalf("BuildFromJSON: %v", err)
	}
	return d
}

func mainOnlyConfig() config.ConversionSettings {
	return config.ConversionSettings{Strategy: config.StrategyMain, NumCandidates: 1}
}

func TestConvertModelCandidateWins(t *testing.T) {
	main := &mock.Provider{GenerateText: "食べる"}
	p := &Pipeline{Main: main, Config: mainOnlyConfig()}

	got := p.Convert(context.Background(), "たべる", 1, "")

	if len(got) == 0 || got[0].Text != "食べる" || got[0].Source != SourceModel {
		t.Fatalf("got %+v, want first candidate 食べる/SourceModel", got)
	}
}

func TestConvertFallsBackToHiraganaWhenNoModel(t *testing.T) {
	p := &Pipeline{Config: mainOnlyConfig()}

	got := p.Convert(context.Background(), "たべる", 1, "")

	if len(got) != 2 || got[0].Text != "たべる" || got[0].Source != SourceFallback ||
		got[1].Text != "タベル" || got[1].Source != SourceFallback {
		t.Fatalf("got %+v, want たべる then タベル, both SourceFallback", got)
	}
}

func TestConvertMergesLearningUserDictModelSystemDictAndFallback(t *testing.T) {
	main := &mock.Provider{GenerateText: "食べる"}

	learn := learning.New(learning.DefaultMaxEntries)
	learn.Record("たべる", "食ベル")

	userDict := buildTestDict(t, map[string][]dict.Candidate{
		"たべる": {{Surface: "タベル", Score: 0}},
	})
	sysDict := buildTestDict(t, map[string][]dict.Candidate{
		"たべる": {{Surface: "他弁留", Score: 5}, {Surface: "田辺留", Score: 1}},
	})

	p := &Pipeline{
		Main:       main,
		SystemDict: sysDict,
		UserDict:   userDict,
		Learning:   learn,
		Config:     mainOnlyConfig(),
	}

	got := p.Convert(context.Background(), "たべる", 1, "")

	var texts []string
	for _, c := range got {
		texts = append(texts, c.Text)
	}

	// System-dict order is score-ascending (田辺留 before 他弁留); the
	// katakana fallback (タベル) duplicates the user-dictionary candidate
	// and is dropped by dedup.
	expected := []string{"食ベル", "タベル", "食べる", "田辺留", "他弁留", "たべる"}

	if len(texts) != len(expected) {
		t.Fatalf("got %v, want %v", texts, expected)
	}
	for i := range expected {
		if texts[i] != expected[i] {
			t.Errorf("texts[%d] = %q, want %q (full: %v)", i, texts[i], expected[i], texts)
		}
	}
	if got[0].Source != SourceLearning {
		t.Errorf("first candidate source = %v, want SourceLearning", got[0].Source)
	}
}

func TestConvertLearningForcedEvenIfDuplicatedLater(t *testing.T) {
	main := &mock.Provider{GenerateText: "重複"}
	learn := learning.New(learning.DefaultMaxEntries)
	learn.Record("じゅうふく", "重複")

	p := &Pipeline{Main: main, Learning: learn, Config: mainOnlyConfig()}

	got := p.Convert(context.Background(), "じゅうふく", 1, "")

	count := 0
	for _, c := range got {
		if c.Text == "重複" {
			count++
			if count == 1 && c.Source != SourceLearning {
				t.Errorf("first 重複 candidate should be SourceLearning, got %v", c.Source)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one 重複 candidate (forced + deduped model), got %d", count)
	}
}

func TestConvertAdaptiveWithoutLightModelAlwaysUsesMainGreedy(t *testing.T) {
	main := &mock.Provider{GenerateText: "たべる"}
	p := &Pipeline{Main: main, Config: config.ConversionSettings{Strategy: config.StrategyAdaptive, NumCandidates: 3, BeamWidth: 3, ShortInputThreshold: 10}}

	// No Light provider configured: determineAdaptiveStrategy must fall
	// back to MainModelOnly regardless of reading length or candidate count.
	got := p.Convert(context.Background(), "たべる", 3, "")
	if len(got) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if p.LastModelName != main.DisplayName() {
		t.Errorf("LastModelName = %q, want %q", p.LastModelName, main.DisplayName())
	}
}

func TestRunParallelBeamMergesGreedyAndBeamOutputs(t *testing.T) {
	main := &mock.Provider{GenerateText: "greedy", Name: "main"}
	light := &mock.Provider{
		Name:        "light",
		BeamResults: []lmfacade.Beam{beamOf("beam1", -0.1), beamOf("beam2", -0.5)},
	}

	p := &Pipeline{
		Main:  main,
		Light: light,
		Config: config.ConversionSettings{
			Strategy:            config.StrategyAdaptive,
			NumCandidates:       3,
			BeamWidth:           3,
			ShortInputThreshold: 100,
		},
	}

	got := p.Convert(context.Background(), "greedy", 3, "")

	var modelTexts []string
	for _, c := range got {
		if c.Source == SourceModel {
			modelTexts = append(modelTexts, c.Text)
		}
	}
	if len(modelTexts) == 0 {
		t.Fatalf("got %+v, want at least one SourceModel candidate from the parallel beam merge", got)
	}
	if p.LastModelName != "main+light" {
		t.Errorf("LastModelName = %q, want main+light", p.LastModelName)
	}
}

func TestAdaptiveFlagStaysFalseWithinLatencyBudget(t *testing.T) {
	main := &mock.Provider{GenerateText: "x"}
	light := &mock.Provider{GenerateText: "y"}

	p := &Pipeline{
		Main:  main,
		Light: light,
		Config: config.ConversionSettings{
			Strategy:            config.StrategyAdaptive,
			NumCandidates:       1,
			BeamWidth:           3,
			ShortInputThreshold: 10,
			MaxLatencyMs:        100,
		},
	}

	p.Convert(context.Background(), "x", 1, "")
	if p.AdaptiveUseLightModel {
		t.Error("AdaptiveUseLightModel should remain false when conversion is instantaneous (within latency budget)")
	}
}

func TestNextAdaptiveFlagWiredThroughNonAdaptiveStrategyLeavesFlagAlone(t *testing.T) {
	main := &mock.Provider{GenerateText: "x"}
	p := &Pipeline{
		Main:   main,
		Config: config.ConversionSettings{Strategy: config.StrategyMain, NumCandidates: 1},
	}
	p.AdaptiveUseLightModel = true
	p.Convert(context.Background(), "x", 1, "")
	if !p.AdaptiveUseLightModel {
		t.Error("non-adaptive strategies must never touch AdaptiveUseLightModel")
	}
}
