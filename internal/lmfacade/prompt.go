package lmfacade

import "strings"

// Prompt sentinel code points. All three are fixed single code points in
// the Unicode Private Use Area, chosen so they can never collide with a
// real character the tokenizer's NFKC normalization might produce.
var (
	contextToken    = string(rune(0xee02))
	inputStartToken = string(rune(0xee00))
	outputStartToken = string(rune(0xee01))
)

// ContextToken, InputStartToken, and OutputStartToken expose the sentinel
// runes for callers (tests, the tokenizer's vocabulary loader) that need
// the bare code point rather than the prompt-assembly string form.
const (
	ContextToken     rune = 0xee02
	InputStartToken  rune = 0xee00
	OutputStartToken rune = 0xee01
)

// BuildPrompt assembles the jinen-format conversion prompt:
// CONTEXT_TOKEN · leftContext · INPUT_START_TOKEN · katakanaReading · OUTPUT_START_TOKEN.
func BuildPrompt(katakanaReading, leftContext string) string {
	var b strings.Builder
	b.WriteString(contextToken)
	b.WriteString(leftContext)
	b.WriteString(inputStartToken)
	b.WriteString(katakanaReading)
	b.WriteString(outputStartToken)
	return b.String()
}

// CleanOutput trims whitespace from a decoded model output and truncates it
// at the first sentinel token or newline, since the model may continue
// generating past the intended single-candidate output once max_new_tokens
// allows it.
func CleanOutput(text string) string {
	text = strings.TrimSpace(text)
	cut := len(text)
	for _, r := range []rune{ContextToken, InputStartToken, OutputStartToken, '\n'} {
		if idx := strings.IndexRune(text, r); idx >= 0 && idx < cut {
			cut = idx
		}
	}
	return strings.TrimSpace(text[:cut])
}
