package config_test

import (
	"strings"
	"testing"

	"github.com/vrclipboard-ime/karukan/internal/config"
)

const sampleTOML = `
[conversion]
strategy = "main"
num_candidates = 5
use_context = false
dict_path = "/tmp/dict.bin"
model = "jinen-base-q4"
light_model = "jinen-light-q4"
beam_width = 2
max_latency_ms = 50
n_threads = 4

[learning]
enabled = false
max_entries = 500
`

func TestLoadFromReader_Valid(t *testing.T) {
	s, err := config.LoadFromReader(strings.NewReader(sampleTOML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Conversion.Strategy != config.StrategyMain {
		t.Errorf("conversion.strategy: got %q, want %q", s.Conversion.Strategy, config.StrategyMain)
	}
	if s.Conversion.NumCandidates != 5 {
		t.Errorf("conversion.num_candidates: got %d, want 5", s.Conversion.NumCandidates)
	}
	if s.Conversion.UseContext {
		t.Error("conversion.use_context: got true, want false")
	}
	if s.Conversion.DictPath != "/tmp/dict.bin" {
		t.Errorf("conversion.dict_path: got %q", s.Conversion.DictPath)
	}
	if s.Conversion.Model != "jinen-base-q4" {
		t.Errorf("conversion.model: got %q", s.Conversion.Model)
	}
	if s.Learning.Enabled {
		t.Error("learning.enabled: got true, want false")
	}
	if s.Learning.MaxEntries != 500 {
		t.Errorf("learning.max_entries: got %d, want 500", s.Learning.MaxEntries)
	}
	// Fields not present in the overlay should retain their embedded default.
	if s.Conversion.MaxContextLength != 20 {
		t.Errorf("conversion.max_context_length: got %d, want default 20", s.Conversion.MaxContextLength)
	}
}

func TestLoadFromReader_EmptyUsesDefaults(t *testing.T) {
	s, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error for empty config: %v", err)
	}
	if s.Conversion.Strategy != config.StrategyAdaptive {
		t.Errorf("strategy: got %q, want adaptive default", s.Conversion.Strategy)
	}
	if s.Conversion.NumCandidates != 9 {
		t.Errorf("num_candidates: got %d, want default 9", s.Conversion.NumCandidates)
	}
}

func TestDefault(t *testing.T) {
	s := config.Default()
	if s.Conversion.Strategy != config.StrategyAdaptive {
		t.Errorf("default strategy: got %q, want adaptive", s.Conversion.Strategy)
	}
	if s.Conversion.NumCandidates != 9 {
		t.Errorf("default num_candidates: got %d, want 9", s.Conversion.NumCandidates)
	}
	if !s.Learning.Enabled {
		t.Error("default learning.enabled: got false, want true")
	}
	if s.Learning.MaxEntries != 10000 {
		t.Errorf("default learning.max_entries: got %d, want 10000", s.Learning.MaxEntries)
	}
}

func TestValidate_InvalidStrategy(t *testing.T) {
	doc := `
[conversion]
strategy = "turbo"
`
	_, err := config.LoadFromReader(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected error for invalid strategy, got nil")
	}
	if !strings.Contains(err.Error(), "strategy") {
		t.Errorf("error should mention strategy, got: %v", err)
	}
}

func TestValidate_NegativeNumCandidates(t *testing.T) {
	doc := `
[conversion]
num_candidates = -1
`
	_, err := config.LoadFromReader(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected error for negative num_candidates, got nil")
	}
}

func TestValidate_NegativeMaxEntries(t *testing.T) {
	doc := `
[learning]
max_entries = -5
`
	_, err := config.LoadFromReader(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected error for negative max_entries, got nil")
	}
}
