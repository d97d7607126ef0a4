package romaji

import "testing"

func wantOutput(t *testing.T, trie *Trie, input, want string) {
	t.Helper()
	r := trie.SearchLongest(input)
	if !r.Found {
		t.Fatalf("SearchLongest(%q): no match found", input)
	}
	if r.Output != want {
		t.Errorf("SearchLongest(%q): got %q, want %q", input, r.Output, want)
	}
}

func TestRulesBasicVowels(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "a", "あ")
	wantOutput(t, trie, "i", "い")
	wantOutput(t, trie, "u", "う")
	wantOutput(t, trie, "e", "え")
	wantOutput(t, trie, "o", "お")
}

func TestRulesKRow(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "ka", "か")
	wantOutput(t, trie, "ki", "き")
	wantOutput(t, trie, "ku", "く")
	wantOutput(t, trie, "ke", "け")
	wantOutput(t, trie, "ko", "こ")
}

func TestRulesYoon(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "kya", "きゃ")
	wantOutput(t, trie, "sha", "しゃ")
	wantOutput(t, trie, "cha", "ちゃ")
	wantOutput(t, trie, "nya", "にゃ")
	wantOutput(t, trie, "hya", "ひゃ")
	wantOutput(t, trie, "mya", "みゃ")
	wantOutput(t, trie, "rya", "りゃ")
	wantOutput(t, trie, "gya", "ぎゃ")
	wantOutput(t, trie, "ja", "じゃ")
	wantOutput(t, trie, "bya", "びゃ")
	wantOutput(t, trie, "pya", "ぴゃ")
}

func TestRulesSmallCharacters(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "la", "ぁ")
	wantOutput(t, trie, "li", "ぃ")
	wantOutput(t, trie, "lu", "ぅ")
	wantOutput(t, trie, "le", "ぇ")
	wantOutput(t, trie, "lo", "ぉ")
	wantOutput(t, trie, "lya", "ゃ")
	wantOutput(t, trie, "lyu", "ゅ")
	wantOutput(t, trie, "lyo", "ょ")
	wantOutput(t, trie, "ltu", "っ")
}

func TestRulesNVariants(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "nn", "ん")
	wantOutput(t, trie, "n'", "ん")
	wantOutput(t, trie, "xn", "ん")
}

func TestRulesCRow(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "ca", "か")
	wantOutput(t, trie, "ci", "し")
	wantOutput(t, trie, "cu", "く")
	wantOutput(t, trie, "ce", "せ")
	wantOutput(t, trie, "co", "こ")
	wantOutput(t, trie, "cya", "ちゃ")
	wantOutput(t, trie, "cyu", "ちゅ")
	wantOutput(t, trie, "cyo", "ちょ")
}

func TestRulesQRow(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "qa", "くぁ")
	wantOutput(t, trie, "qi", "くぃ")
	wantOutput(t, trie, "qu", "く")
	wantOutput(t, trie, "qe", "くぇ")
	wantOutput(t, trie, "qo", "くぉ")
}

func TestRulesKwGwSeries(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "kwa", "くぁ")
	wantOutput(t, trie, "kwi", "くぃ")
	wantOutput(t, trie, "kwu", "くぅ")
	wantOutput(t, trie, "kwe", "くぇ")
	wantOutput(t, trie, "kwo", "くぉ")
	wantOutput(t, trie, "gwa", "ぐぁ")
	wantOutput(t, trie, "gwi", "ぐぃ")
	wantOutput(t, trie, "gwu", "ぐぅ")
	wantOutput(t, trie, "gwe", "ぐぇ")
	wantOutput(t, trie, "gwo", "ぐぉ")
}

func TestRulesThDhTwDwSeries(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "tha", "てゃ")
	wantOutput(t, trie, "thi", "てぃ")
	wantOutput(t, trie, "t'i", "てぃ")
	wantOutput(t, trie, "thu", "てゅ")
	wantOutput(t, trie, "the", "てぇ")
	wantOutput(t, trie, "tho", "てょ")
	wantOutput(t, trie, "dha", "でゃ")
	wantOutput(t, trie, "dhi", "でぃ")
	wantOutput(t, trie, "d'i", "でぃ")
	wantOutput(t, trie, "dhu", "でゅ")
	wantOutput(t, trie, "twa", "とぁ")
	wantOutput(t, trie, "twi", "とぃ")
	wantOutput(t, trie, "twu", "とぅ")
	wantOutput(t, trie, "t'u", "とぅ")
	wantOutput(t, trie, "dwa", "どぁ")
	wantOutput(t, trie, "dwi", "どぃ")
	wantOutput(t, trie, "dwu", "どぅ")
	wantOutput(t, trie, "d'u", "どぅ")
}

func TestRulesHwSeries(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "hwa", "ふぁ")
	wantOutput(t, trie, "hwi", "ふぃ")
	wantOutput(t, trie, "hwe", "ふぇ")
	wantOutput(t, trie, "hwo", "ふぉ")
	wantOutput(t, trie, "hwyu", "ふゅ")
}

func TestRulesWRowModern(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "wi", "うぃ")
	wantOutput(t, trie, "we", "うぇ")
	wantOutput(t, trie, "wyi", "ゐ")
	wantOutput(t, trie, "wye", "ゑ")
}

func TestRulesSmallKaKe(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "xka", "ヵ")
	wantOutput(t, trie, "xke", "ヶ")
	wantOutput(t, trie, "lka", "ヵ")
	wantOutput(t, trie, "lke", "ヶ")
}

func TestRulesZSpecialSymbols(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "z/", "・")
	wantOutput(t, trie, "z.", "…")
	wantOutput(t, trie, "z,", "‥")
	wantOutput(t, trie, "zh", "←")
	wantOutput(t, trie, "zj", "↓")
	wantOutput(t, trie, "zk", "↑")
	wantOutput(t, trie, "zl", "→")
	wantOutput(t, trie, "z-", "〜")
	wantOutput(t, trie, "z[", "『")
	wantOutput(t, trie, "z]", "』")
}

func TestRulesBracketsAndPunctuation(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "[", "「")
	wantOutput(t, trie, "]", "」")
	wantOutput(t, trie, ",", "、")
	wantOutput(t, trie, ".", "。")
	wantOutput(t, trie, "-", "ー")
	wantOutput(t, trie, "~", "〜")
}

func TestRulesTsuVariants(t *testing.T) {
	trie := buildRules()
	wantOutput(t, trie, "tsa", "つぁ")
	wantOutput(t, trie, "tsi", "つぃ")
	wantOutput(t, trie, "tse", "つぇ")
	wantOutput(t, trie, "tso", "つぉ")
}
