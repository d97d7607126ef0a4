package romaji

import "testing"

func pushAll(c *Converter, s string) {
	for _, ch := range s {
		c.Push(ch)
	}
}

func TestConverterBasicConversion(t *testing.T) {
	c := NewConverter()
	c.Push('k')
	c.Push('a')
	if c.Output() != "か" || c.Buffer() != "" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
}

func TestConverterBuffering(t *testing.T) {
	c := NewConverter()
	ev := c.Push('k')
	if ev.Kind != EventBuffered {
		t.Fatalf("expected EventBuffered, got %+v", ev)
	}
	if c.Buffer() != "k" {
		t.Fatalf("buffer=%q", c.Buffer())
	}
}

func TestConverterSokuon(t *testing.T) {
	c := NewConverter()
	c.Push('k')
	c.Push('k')
	if c.Output() != "っ" || c.Buffer() != "k" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
	c.Push('a')
	if c.Output() != "っか" || c.Buffer() != "" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
}

func TestConverterNContext(t *testing.T) {
	c := NewConverter()
	c.Push('n')
	if c.Buffer() != "n" {
		t.Fatalf("buffer=%q", c.Buffer())
	}
	c.Push('a')
	if c.Output() != "な" || c.Buffer() != "" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
}

func TestConverterNN(t *testing.T) {
	c := NewConverter()
	c.Push('n')
	if c.Buffer() != "n" {
		t.Fatalf("buffer=%q", c.Buffer())
	}
	c.Push('n')
	if c.Buffer() != "" || c.Output() != "ん" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}

	c.Reset()
	pushAll(c, "nni")
	if c.Output() != "んい" {
		t.Fatalf("nni: output=%q", c.Output())
	}

	c.Reset()
	pushAll(c, "nna")
	if c.Output() != "んあ" {
		t.Fatalf("nna: output=%q", c.Output())
	}

	c.Reset()
	pushAll(c, "nnk")
	if c.Output() != "ん" || c.Buffer() != "k" {
		t.Fatalf("nnk: output=%q buffer=%q", c.Output(), c.Buffer())
	}
}

func TestConverterYouon(t *testing.T) {
	c := NewConverter()
	pushAll(c, "kya")
	if c.Output() != "きゃ" {
		t.Fatalf("output=%q", c.Output())
	}
}

func TestConverterFlush(t *testing.T) {
	c := NewConverter()
	c.Push('k')
	if c.Buffer() != "k" {
		t.Fatalf("buffer=%q", c.Buffer())
	}
	flushed := c.Flush()
	if flushed != "k" || c.Output() != "k" || c.Buffer() != "" {
		t.Fatalf("flushed=%q output=%q buffer=%q", flushed, c.Output(), c.Buffer())
	}
}

func TestConverterBackspace(t *testing.T) {
	c := NewConverter()
	c.Push('k')
	c.Push('a')
	if c.Output() != "か" {
		t.Fatalf("output=%q", c.Output())
	}
	c.Push('k')
	if c.Buffer() != "k" {
		t.Fatalf("buffer=%q", c.Buffer())
	}

	r := c.Backspace()
	if r.Kind != BackspaceRemovedBuffer || r.Char != 'k' || c.Buffer() != "" {
		t.Fatalf("got %+v buffer=%q", r, c.Buffer())
	}

	r = c.Backspace()
	if r.Kind != BackspaceRemovedOutput || r.Char != 'か' {
		t.Fatalf("got %+v", r)
	}
}

func TestConverterFullSentence(t *testing.T) {
	c := NewConverter()
	// "nn" is always ん, so こんにちは requires three n's: "konnnichiha".
	pushAll(c, "konnnichiha")
	if c.Output() != "こんにちは" {
		t.Fatalf("output=%q", c.Output())
	}
}

func TestConverterPunctuationPassthrough(t *testing.T) {
	c := NewConverter()
	pushAll(c, "kokohadoko?watashihadare?")
	if c.Output() != "ここはどこ？わたしはだれ？" || c.Buffer() != "" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
}

func TestConverterMixedPunctuation(t *testing.T) {
	c := NewConverter()
	pushAll(c, "a!b?c")
	if c.Output() != "あ！b？" || c.Buffer() != "c" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
	c.Flush()
	if c.Output() != "あ！b？c" || c.Buffer() != "" {
		t.Fatalf("after flush: output=%q buffer=%q", c.Output(), c.Buffer())
	}
}

func TestConverterWatashiha(t *testing.T) {
	c := NewConverter()
	pushAll(c, "kokohadoko?watashiha?")
	if c.Output() != "ここはどこ？わたしは？" || c.Buffer() != "" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
}

func TestConverterPunctuationThenYouon(t *testing.T) {
	c := NewConverter()
	pushAll(c, "a?b?cya")
	if c.Output() != "あ？b？ちゃ" || c.Buffer() != "" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
}

func TestConverterOutputKatakana(t *testing.T) {
	c := NewConverter()
	pushAll(c, "watashi")
	if c.Output() != "わたし" {
		t.Fatalf("output=%q", c.Output())
	}
	if c.OutputKatakana() != "ワタシ" {
		t.Fatalf("katakana=%q", c.OutputKatakana())
	}
	if c.Buffer() != "" {
		t.Fatalf("buffer=%q", c.Buffer())
	}
}

func TestConverterFullTextKatakana(t *testing.T) {
	c := NewConverter()
	pushAll(c, "kak")
	if c.Output() != "か" || c.Buffer() != "k" {
		t.Fatalf("output=%q buffer=%q", c.Output(), c.Buffer())
	}
	if c.FullTextKatakana() != "カk" {
		t.Fatalf("full text katakana=%q", c.FullTextKatakana())
	}
}
