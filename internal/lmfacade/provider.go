// Package lmfacade defines the contract the conversion orchestrator uses to
// talk to a kana-to-kanji language model backend, independent of whatever
// inference runtime (GGUF/llama.cpp or otherwise) actually implements it.
//
// Implementations must be safe for concurrent use: the orchestrator may
// call Generate and GenerateBeamSearch from multiple goroutines (the
// Parallel-Beam strategy runs a main-model call and a light-model call
// concurrently).
package lmfacade

import "context"

// TokenID identifies a single vocabulary entry.
type TokenID int32

// Beam is one finished or active hypothesis from beam search: a token
// sequence paired with its cumulative log-probability (higher is better).
type Beam struct {
	Tokens         []TokenID
	CumulativeLogP float64
}

// Provider is the abstraction over any LM backend that can tokenize,
// decode, and generate continuations for the kana-to-kanji conversion
// prompt described in prompt.go.
type Provider interface {
	// Tokenize converts text into the model's native token ids.
	Tokenize(ctx context.Context, text string) ([]TokenID, error)

	// Decode converts token ids back into text. When skipSpecial is true,
	// special/control tokens (BOS, EOS, padding) are omitted from the
	// output.
	Decode(ctx context.Context, tokens []TokenID, skipSpecial bool) (string, error)

	// CountInputTokens reports how many tokens text would occupy, without
	// running generation. Used to decide between short-input
	// (Parallel-Beam-eligible) and long-input conversion paths.
	CountInputTokens(ctx context.Context, text string) (int, error)

	// EOSToken returns the model's end-of-sequence token id.
	EOSToken() TokenID

	// Generate greedily decodes up to maxNewTokens tokens starting from
	// inputIDs, stopping early if the EOS token is produced. The returned
	// slice contains only the newly generated tokens (not the prompt).
	Generate(ctx context.Context, inputIDs []TokenID, maxNewTokens int) ([]TokenID, error)

	// GenerateBeamSearch runs beam search with width k, returning up to k
	// finished/active beams sorted by CumulativeLogP descending. The
	// returned token slices contain only the newly generated tokens.
	GenerateBeamSearch(ctx context.Context, inputIDs []TokenID, maxNewTokens, k int) ([]Beam, error)

	// DisplayName is a human-readable identifier for the loaded model
	// variant, surfaced in the host's aux text.
	DisplayName() string
}
