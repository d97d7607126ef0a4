package lmfacade

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed models.toml
var modelsTOML []byte

// VariantConfig is a single loadable GGUF quantization variant.
type VariantConfig struct {
	ID          string `toml:"id"`
	Filename    string `toml:"filename"`
	DisplayName string `toml:"display_name"`
}

// ModelFamily groups the quantization variants downloaded from one
// HuggingFace repository.
type ModelFamily struct {
	RepoID                string                   `toml:"repo_id"`
	DisplayName           string                   `toml:"display_name"`
	PreTokenizerOverride  string                   `toml:"pre_tokenizer_override"`
	Variants              map[string]VariantConfig `toml:"variants"`
}

// ModelRegistry is the parsed contents of the embedded model catalogue.
type ModelRegistry struct {
	DefaultModel string                 `toml:"default_model"`
	Models       map[string]ModelFamily `toml:"models"`
}

var (
	registryOnce  sync.Once
	parsedReg     *ModelRegistry
	registryErr   error
)

// Registry returns the global model registry, parsed once from the
// embedded models.toml.
func Registry() (*ModelRegistry, error) {
	registryOnce.Do(func() {
		var r ModelRegistry
		if err := toml.Unmarshal(modelsTOML, &r); err != nil {
			registryErr = fmt.Errorf("lmfacade: parse embedded models.toml: %w", err)
			return
		}
		parsedReg = &r
	})
	return parsedReg, registryErr
}

// FindVariant looks up a variant by its unique id (e.g.
// "jinen-v1-xsmall-q5"), returning its family and variant config.
func (r *ModelRegistry) FindVariant(variantID string) (ModelFamily, VariantConfig, bool) {
	for _, family := range r.Models {
		for _, variant := range family.Variants {
			if variant.ID == variantID {
				return family, variant, true
			}
		}
	}
	return ModelFamily{}, VariantConfig{}, false
}

// DefaultVariant returns the (family, variant) pair named by DefaultModel.
func (r *ModelRegistry) DefaultVariant() (ModelFamily, VariantConfig, bool) {
	return r.FindVariant(r.DefaultModel)
}

// AllVariantIDs lists every variant id across every model family.
func (r *ModelRegistry) AllVariantIDs() []string {
	var ids []string
	for _, family := range r.Models {
		for _, variant := range family.Variants {
			ids = append(ids, variant.ID)
		}
	}
	return ids
}
