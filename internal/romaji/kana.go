package romaji

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	hiraganaStart = 0x3041
	hiraganaEnd   = 0x3096
	katakanaStart = 0x30A1
	hiraganaToKatakanaOffset = katakanaStart - hiraganaStart
)

// HiraganaToKatakana converts every hiragana rune (U+3041-U+3096) in text to
// its katakana equivalent (U+30A1-U+30F6); everything else passes through.
func HiraganaToKatakana(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= hiraganaStart && r <= hiraganaEnd {
			r += hiraganaToKatakanaOffset
		}
		b.WriteRune(r)
	}
	return b.String()
}

// KatakanaToHiragana converts every katakana rune (U+30A1-U+30F6) in text to
// its hiragana equivalent; everything else passes through.
func KatakanaToHiragana(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= katakanaStart && r <= katakanaStart+(hiraganaEnd-hiraganaStart) {
			r -= hiraganaToKatakanaOffset
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeNFKC applies Unicode NFKC normalization, folding full-width
// ASCII and digits to their half-width forms (e.g. "（" -> "(", "０" -> "0")
// without disturbing hiragana, katakana, kanji, or the LM backend facade's
// private-use-area sentinel tokens. Needed because some model tokenizers
// treat unnormalized full-width punctuation as an unexpected/EOS token,
// truncating generation early.
func NormalizeNFKC(text string) string {
	return norm.NFKC.String(text)
}
