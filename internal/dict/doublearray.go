// Package dict implements the kana-to-surface dictionary: a trie keyed by
// UTF-8 reading bytes, mapping each reading to a list of scored candidate
// surfaces, with loaders for the binary on-disk format and the three
// ingest formats (scored JSON, Mozc/Google-IME TSV, Sudachi CSV).
package dict

// byteTrie is a read-only trie over byte-string keys, built in one bulk
// pass from a pre-sorted, deduplicated key set and queried via exact-match
// and common-prefix lookups. There is no double-array or succinct-trie
// library anywhere in the example corpus, so this is a from-scratch
// implementation grounded on the semantics the original dictionary exposes
// over its double-array trie (exact_match_search / common_prefix_search
// keyed on reading bytes) rather than on that trie's internal BASE/CHECK
// array layout, which a general-purpose Go trie has no reason to imitate.
type byteTrie struct {
	nodes []trieState
}

type trieState struct {
	children map[byte]int32
	value    int32
	hasValue bool
}

const byteTrieRoot int32 = 0

func newByteTrie() *byteTrie {
	return &byteTrie{nodes: []trieState{{}}}
}

// buildByteTrie builds a trie over the given key set. keys[i] maps to
// values[i]; keys need not be pre-sorted for correctness, but callers sort
// them first so the resulting entries slice (indexed by value) lines up
// with a stable on-disk ordering.
func buildByteTrie(keys [][]byte, values []int32) *byteTrie {
	t := newByteTrie()
	for i, key := range keys {
		t.insert(key, values[i])
	}
	return t
}

func (t *byteTrie) insert(key []byte, value int32) {
	state := byteTrieRoot
	for _, b := range key {
		if t.nodes[state].children == nil {
			t.nodes[state].children = make(map[byte]int32)
		}
		next, ok := t.nodes[state].children[b]
		if !ok {
			next = int32(len(t.nodes))
			t.nodes = append(t.nodes, trieState{})
			t.nodes[state].children[b] = next
		}
		state = next
	}
	t.nodes[state].value = value
	t.nodes[state].hasValue = true
}

// exactMatchSearch returns the value stored at the state reached by
// consuming all of key, if that state is terminal.
func (t *byteTrie) exactMatchSearch(key []byte) (int32, bool) {
	state := byteTrieRoot
	for _, b := range key {
		next, ok := t.nodes[state].children[b]
		if !ok {
			return 0, false
		}
		state = next
	}
	if !t.nodes[state].hasValue {
		return 0, false
	}
	return t.nodes[state].value, true
}

// commonPrefixSearch returns the values of every terminal state along the
// descent path for key, in the order their prefixes are consumed (shortest
// match first).
func (t *byteTrie) commonPrefixSearch(key []byte) []int32 {
	var results []int32
	state := byteTrieRoot
	for _, b := range key {
		next, ok := t.nodes[state].children[b]
		if !ok {
			break
		}
		state = next
		if t.nodes[state].hasValue {
			results = append(results, t.nodes[state].value)
		}
	}
	return results
}
