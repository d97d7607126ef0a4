package resilience

import (
	"context"

	"github.com/vrclipboard-ime/karukan/internal/lmfacade"
)

// LMFallback implements [lmfacade.Provider] with automatic failover across
// multiple model backends. Each backend has its own circuit breaker; when
// the primary (typically the main model) fails or its breaker is open, the
// next healthy fallback (typically the light model) is tried.
//
// internal/hostabi wraps each model backend it loads in its own LMFallback
// with no fallback entries, so each backend gets a circuit breaker and no
// failover to another model; AddFallback has no caller there.
type LMFallback struct {
	group *FallbackGroup[lmfacade.Provider]
}

var _ lmfacade.Provider = (*LMFallback)(nil)

// NewLMFallback creates an [LMFallback] with primary as the preferred
// backend.
func NewLMFallback(primary lmfacade.Provider, primaryName string, cfg FallbackConfig) *LMFallback {
	return &LMFallback{group: NewFallbackGroup(primary, primaryName, cfg)}
}

// AddFallback registers an additional model backend as a fallback.
func (f *LMFallback) AddFallback(name string, provider lmfacade.Provider) {
	f.group.AddFallback(name, provider)
}

func (f *LMFallback) Tokenize(ctx context.Context, text string) ([]lmfacade.TokenID, error) {
	return ExecuteWithResult(f.group, func(p lmfacade.Provider) ([]lmfacade.TokenID, error) {
		return p.Tokenize(ctx, text)
	})
}

func (f *LMFallback) Decode(ctx context.Context, tokens []lmfacade.TokenID, skipSpecial bool) (string, error) {
	return ExecuteWithResult(f.group, func(p lmfacade.Provider) (string, error) {
		return p.Decode(ctx, tokens, skipSpecial)
	})
}

func (f *LMFallback) CountInputTokens(ctx context.Context, text string) (int, error) {
	return ExecuteWithResult(f.group, func(p lmfacade.Provider) (int, error) {
		return p.CountInputTokens(ctx, text)
	})
}

// EOSToken returns the primary's EOS token. Unlike the other methods this
// does not participate in failover: it is static metadata, not a call that
// can fail.
func (f *LMFallback) EOSToken() lmfacade.TokenID {
	if len(f.group.entries) == 0 {
		return 0
	}
	return f.group.entries[0].value.EOSToken()
}

func (f *LMFallback) Generate(ctx context.Context, inputIDs []lmfacade.TokenID, maxNewTokens int) ([]lmfacade.TokenID, error) {
	return ExecuteWithResult(f.group, func(p lmfacade.Provider) ([]lmfacade.TokenID, error) {
		return p.Generate(ctx, inputIDs, maxNewTokens)
	})
}

func (f *LMFallback) GenerateBeamSearch(ctx context.Context, inputIDs []lmfacade.TokenID, maxNewTokens, k int) ([]lmfacade.Beam, error) {
	return ExecuteWithResult(f.group, func(p lmfacade.Provider) ([]lmfacade.Beam, error) {
		return p.GenerateBeamSearch(ctx, inputIDs, maxNewTokens, k)
	})
}

// DisplayName returns the primary's display name. Like EOSToken, this does
// not participate in failover.
func (f *LMFallback) DisplayName() string {
	if len(f.group.entries) == 0 {
		return ""
	}
	return f.group.entries[0].value.DisplayName()
}
