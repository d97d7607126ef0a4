package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed default.toml
var defaultSettingsTOML []byte

// Default returns a fresh [Settings] parsed from the embedded default
// configuration. Panics if the embedded TOML fails to parse, which would
// indicate a build-time defect rather than a runtime condition.
func Default() *Settings {
	var s Settings
	if err := toml.Unmarshal(defaultSettingsTOML, &s); err != nil {
		panic("config: embedded default.toml must be valid: " + err.Error())
	}
	return &s
}

// Load reads the TOML configuration file at path, merges it on top of the
// embedded defaults, and validates the result. If path does not exist, the
// embedded defaults are returned unchanged (a non-fatal condition per the
// error taxonomy — a missing config file is not an error).
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return parseWithDefaults(data)
}

// LoadFromReader decodes a TOML config from r, merged on top of the embedded
// defaults. Useful in tests where configs are constructed from string
// literals.
func LoadFromReader(r io.Reader) (*Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return parseWithDefaults(data)
}

// parseWithDefaults merges user-supplied TOML on top of the embedded default
// document, then decodes the merged tree into a [Settings].
func parseWithDefaults(userTOML []byte) (*Settings, error) {
	var base map[string]any
	if err := toml.Unmarshal(defaultSettingsTOML, &base); err != nil {
		return nil, fmt.Errorf("config: parse embedded defaults: %w", err)
	}
	var overlay map[string]any
	if err := toml.Unmarshal(userTOML, &overlay); err != nil {
		return nil, fmt.Errorf("config: parse user config: %w", err)
	}
	mergeTables(base, overlay)

	merged, err := toml.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("config: remarshal merged config: %w", err)
	}

	var s Settings
	if err := toml.Unmarshal(merged, &s); err != nil {
		return nil, fmt.Errorf("config: decode merged config: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// mergeTables recursively merges overlay's keys into base. A key present in
// both that holds nested tables in both is merged recursively; any other
// collision is resolved in favour of overlay.
func mergeTables(base, overlay map[string]any) {
	for key, overlayVal := range overlay {
		baseVal, exists := base[key]
		if !exists {
			base[key] = overlayVal
			continue
		}
		baseTable, baseIsTable := baseVal.(map[string]any)
		overlayTable, overlayIsTable := overlayVal.(map[string]any)
		if baseIsTable && overlayIsTable {
			mergeTables(baseTable, overlayTable)
			continue
		}
		base[key] = overlayVal
	}
}

// Save writes s to path as TOML, creating parent directories as needed.
func Save(s *Settings, path string) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create dir %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %q: %w", path, err)
	}
	return nil
}

// Validate checks that s contains coherent values, returning a joined error
// listing every validation failure found. Unlike provider-name warnings in
// the teacher config, karukan's schema has no registered-name lookup, so
// Validate only checks numeric ranges and the strategy enum.
func Validate(s *Settings) error {
	var errs []error

	if !s.Conversion.Strategy.IsValid() {
		errs = append(errs, fmt.Errorf("conversion.strategy %q is invalid; valid values: adaptive, light, main", s.Conversion.Strategy))
	}
	if s.Conversion.NumCandidates < 0 {
		errs = append(errs, fmt.Errorf("conversion.num_candidates must be >= 0, got %d", s.Conversion.NumCandidates))
	}
	if s.Conversion.BeamWidth < 0 {
		errs = append(errs, fmt.Errorf("conversion.beam_width must be >= 0, got %d", s.Conversion.BeamWidth))
	}
	if s.Learning.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("learning.max_entries must be >= 0, got %d", s.Learning.MaxEntries))
	}

	return errors.Join(errs...)
}
