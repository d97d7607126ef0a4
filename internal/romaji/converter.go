package romaji

import (
	"strings"
	"unicode"
)

// ConversionEventKind classifies the outcome of a single [Converter.Push].
type ConversionEventKind int

const (
	// EventConverted indicates one or more buffered characters were
	// converted to hiragana (or a symbol) and appended to Output.
	EventConverted ConversionEventKind = iota
	// EventBuffered indicates the character was accepted into Buffer but
	// no conversion fired yet; more input may still complete a rule.
	EventBuffered
	// EventPassThrough indicates the character (or the character that
	// started an unconvertible buffer) was appended to Output verbatim,
	// because no rule's prefix matched it.
	EventPassThrough
)

// ConversionEvent reports what [Converter.Push] did with the pushed rune.
type ConversionEvent struct {
	Kind ConversionEventKind
	// Text holds the converted hiragana for EventConverted.
	Text string
	// Char holds the pass-through rune for EventPassThrough.
	Char rune
}

// BackspaceResultKind classifies the outcome of a [Converter.Backspace].
type BackspaceResultKind int

const (
	BackspaceEmpty BackspaceResultKind = iota
	BackspaceRemovedBuffer
	BackspaceRemovedOutput
)

// BackspaceResult reports what [Converter.Backspace] removed.
type BackspaceResult struct {
	Kind BackspaceResultKind
	Char rune
}

// Converter is a stateful romaji -> hiragana converter: pushed runes
// accumulate in an unconverted buffer until a trie rule resolves them,
// applying moraic-N and sokuon (consonant doubling) rewriting ahead of the
// trie lookup. Matches the semantics of a classic Japanese IME's romaji
// input pipeline.
type Converter struct {
	trie   *Trie
	buffer []rune
	output strings.Builder
}

// NewConverter returns a converter loaded with the full romaji rule table.
func NewConverter() *Converter {
	return &Converter{trie: buildRules()}
}

// Push feeds one rune (case-folded to lowercase) into the converter and
// attempts conversion.
func (c *Converter) Push(ch rune) ConversionEvent {
	ch = unicode.ToLower(ch)
	c.buffer = append(c.buffer, ch)
	return c.tryConvert()
}

// convertWithRemainder appends hiragana to the output and, if the buffer
// still holds characters that now convert, recursively folds their result
// into the returned event's Text.
func (c *Converter) convertWithRemainder(hiragana string) ConversionEvent {
	if len(c.buffer) > 0 {
		next := c.tryConvert()
		if next.Kind == EventConverted {
			return ConversionEvent{Kind: EventConverted, Text: hiragana + next.Text}
		}
	}
	return ConversionEvent{Kind: EventConverted, Text: hiragana}
}

// tryConvert applies the moraic-N / sokuon rewriting rules and then a
// longest-match trie lookup against the current buffer.
func (c *Converter) tryConvert() ConversionEvent {
	n := len(c.buffer)

	// "nn" is always a single ん, regardless of what follows.
	if n >= 3 && c.buffer[0] == 'n' && c.buffer[1] == 'n' {
		c.buffer = c.buffer[2:]
		c.output.WriteString("ん")
		return c.convertWithRemainder("ん")
	}

	if n >= 2 {
		last := c.buffer[n-1]
		secondLast := c.buffer[n-2]

		// 'n' before a consonant (not a vowel/y/') -> ん + that character,
		// except exactly "nn" (length 2), which waits for more input.
		if secondLast == 'n' && !isVowelYOrApostrophe(last) && !(n == 2 && last == 'n') {
			prefix := append([]rune{}, c.buffer[:n-2]...)
			c.buffer = append(prefix, last)
			c.output.WriteString("ん")
			return c.convertWithRemainder("ん")
		}

		// Same consonant twice (except n) -> っ + that consonant.
		if last == secondLast && !isVowelOrN(last) {
			c.buffer = []rune{last}
			c.output.WriteString("っ")
			return ConversionEvent{Kind: EventConverted, Text: "っ"}
		}
	}

	search := c.trie.SearchLongest(string(c.buffer))

	if search.Found {
		bufStr := string(c.buffer)
		if search.HasContinuation && search.MatchedLen == len(c.buffer) {
			// Complete match, but a longer sequence could still extend it.
			// "n'" and "nn" always convert immediately.
			if bufStr == "n'" || bufStr == "nn" {
				c.output.WriteString(search.Output)
				c.buffer = nil
				return ConversionEvent{Kind: EventConverted, Text: search.Output}
			}
			return ConversionEvent{Kind: EventBuffered}
		}
		c.output.WriteString(search.Output)
		c.buffer = c.buffer[search.MatchedLen:]
		return c.convertWithRemainder(search.Output)
	}

	if search.MatchedLen == 0 && len(c.buffer) > 0 {
		first := c.buffer[0]

		if c.trie.HasChild(first) && c.trie.OnValidPath(string(c.buffer)) {
			return ConversionEvent{Kind: EventBuffered}
		}

		firstSearch := c.trie.SearchLongest(string(first))
		if firstSearch.Found {
			c.output.WriteString(firstSearch.Output)
			c.buffer = c.buffer[firstSearch.MatchedLen:]
			return c.convertWithRemainder(firstSearch.Output)
		}

		// No possible match: pass the first rune through verbatim.
		c.buffer = c.buffer[1:]
		c.output.WriteRune(first)

		if len(c.buffer) > 0 {
			next := c.tryConvert()
			if next.Kind == EventConverted || next.Kind == EventPassThrough {
				return next
			}
		}
		return ConversionEvent{Kind: EventPassThrough, Char: first}
	}

	return ConversionEvent{Kind: EventBuffered}
}

func isVowelYOrApostrophe(ch rune) bool {
	switch ch {
	case 'a', 'i', 'u', 'e', 'o', 'y', '\'':
		return true
	default:
		return false
	}
}

func isVowelOrN(ch rune) bool {
	switch ch {
	case 'a', 'i', 'u', 'e', 'o', 'n':
		return true
	default:
		return false
	}
}

// Flush converts as much of the remaining buffer as the trie allows,
// passing through anything left unconvertible, and returns what was added
// to Output.
func (c *Converter) Flush() string {
	var result strings.Builder

	for len(c.buffer) > 0 {
		search := c.trie.SearchLongest(string(c.buffer))
		if search.Found {
			result.WriteString(search.Output)
			c.output.WriteString(search.Output)
			c.buffer = c.buffer[search.MatchedLen:]
			continue
		}
		ch := c.buffer[0]
		result.WriteRune(ch)
		c.output.WriteRune(ch)
		c.buffer = c.buffer[1:]
	}

	return result.String()
}

// Backspace removes one character, preferring the unconverted buffer over
// already-converted output.
func (c *Converter) Backspace() BackspaceResult {
	if n := len(c.buffer); n > 0 {
		ch := c.buffer[n-1]
		c.buffer = c.buffer[:n-1]
		return BackspaceResult{Kind: BackspaceRemovedBuffer, Char: ch}
	}
	s := c.output.String()
	if s == "" {
		return BackspaceResult{Kind: BackspaceEmpty}
	}
	runes := []rune(s)
	last := runes[len(runes)-1]
	c.output.Reset()
	c.output.WriteString(string(runes[:len(runes)-1]))
	return BackspaceResult{Kind: BackspaceRemovedOutput, Char: last}
}

// Output returns the converted hiragana accumulated so far.
func (c *Converter) Output() string { return c.output.String() }

// OutputKatakana returns Output with every hiragana rune converted to its
// katakana equivalent.
func (c *Converter) OutputKatakana() string { return HiraganaToKatakana(c.output.String()) }

// Buffer returns the unconverted romaji currently awaiting more input.
func (c *Converter) Buffer() string { return string(c.buffer) }

// Reset clears both the output and the buffer.
func (c *Converter) Reset() {
	c.buffer = nil
	c.output.Reset()
}

// FullText returns Output concatenated with Buffer.
func (c *Converter) FullText() string { return c.output.String() + string(c.buffer) }

// FullTextKatakana returns Output (as katakana) concatenated with Buffer.
func (c *Converter) FullTextKatakana() string {
	return HiraganaToKatakana(c.output.String()) + string(c.buffer)
}
