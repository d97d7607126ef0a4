// Package mock provides a test double for the lmfacade.Provider interface.
//
// Use Provider in unit tests to verify that the orchestrator builds correct
// prompts and to feed controlled generations without a live GGUF backend.
package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/vrclipboard-ime/karukan/internal/lmfacade"
)

// GenerateCall records a single invocation of Generate.
type GenerateCall struct {
	InputIDs     []lmfacade.TokenID
	MaxNewTokens int
}

// BeamSearchCall records a single invocation of GenerateBeamSearch.
type BeamSearchCall struct {
	InputIDs     []lmfacade.TokenID
	MaxNewTokens int
	K            int
}

// Provider is a mock implementation of lmfacade.Provider. It tokenizes by
// treating each rune as one token id (its code point), which keeps
// Tokenize/Decode round trips predictable in tests without a real
// vocabulary.
type Provider struct {
	mu sync.Mutex

	// GenerateText is what Generate returns (as fresh tokens), once
	// tokenized by the same rune-per-token scheme.
	GenerateText string
	GenerateErr  error

	// BeamResults is what GenerateBeamSearch returns.
	BeamResults []lmfacade.Beam
	BeamErr     error

	Name string

	GenerateCalls []GenerateCall
	BeamCalls     []BeamSearchCall
}

func (p *Provider) Tokenize(_ context.Context, text string) ([]lmfacade.TokenID, error) {
	runes := []rune(text)
	tokens := make([]lmfacade.TokenID, len(runes))
	for i, r := range runes {
		tokens[i] = lmfacade.TokenID(r)
	}
	return tokens, nil
}

func (p *Provider) Decode(_ context.Context, tokens []lmfacade.TokenID, skipSpecial bool) (string, error) {
	var b strings.Builder
	for _, t := range tokens {
		if skipSpecial && lmfacade.TokenID(t) == p.EOSToken() {
			continue
		}
		b.WriteRune(rune(t))
	}
	return b.String(), nil
}

func (p *Provider) CountInputTokens(ctx context.Context, text string) (int, error) {
	tokens, err := p.Tokenize(ctx, text)
	return len(tokens), err
}

func (p *Provider) EOSToken() lmfacade.TokenID {
	return lmfacade.TokenID(0)
}

func (p *Provider) Generate(_ context.Context, inputIDs []lmfacade.TokenID, maxNewTokens int) ([]lmfacade.TokenID, error) {
	p.mu.Lock()
	p.GenerateCalls = append(p.GenerateCalls, GenerateCall{InputIDs: inputIDs, MaxNewTokens: maxNewTokens})
	text, err := p.GenerateText, p.GenerateErr
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	runes := []rune(text)
	tokens := make([]lmfacade.TokenID, len(runes))
	for i, r := range runes {
		tokens[i] = lmfacade.TokenID(r)
	}
	return tokens, nil
}

func (p *Provider) GenerateBeamSearch(_ context.Context, inputIDs []lmfacade.TokenID, maxNewTokens, k int) ([]lmfacade.Beam, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.BeamCalls = append(p.BeamCalls, BeamSearchCall{InputIDs: inputIDs, MaxNewTokens: maxNewTokens, K: k})
	return p.BeamResults, p.BeamErr
}

func (p *Provider) DisplayName() string {
	if p.Name == "" {
		return "mock"
	}
	return p.Name
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GenerateCalls = nil
	p.BeamCalls = nil
}
