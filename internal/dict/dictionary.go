package dict

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vrclipboard-ime/karukan/internal/romaji"
)

const (
	magic       = "KRKN"
	version     = uint32(1)
	maxTrieLen  = 100 * 1024 * 1024
	maxEntries  = 10_000_000
)

// Candidate is a single surface form with its conversion score. Lower
// scores sort first; score is the system dictionary's notion of "cost",
// not a probability.
type Candidate struct {
	Surface string
	Score   float32
}

// Entry maps one reading to its candidate surfaces.
type Entry struct {
	Reading    string
	Candidates []Candidate
}

// LookupResult is the result of a dictionary lookup.
type LookupResult struct {
	Reading    string
	Candidates []Candidate
}

// Dictionary is a trie-indexed store of reading -> candidate surfaces.
type Dictionary struct {
	trie    *byteTrie
	entries []Entry
}

// buildFromEntries is the shared final step for every builder: entries must
// already be sorted by reading bytes and deduplicated.
func buildFromEntries(entries []Entry) *Dictionary {
	keys := make([][]byte, len(entries))
	values := make([]int32, len(entries))
	for i, e := range entries {
		keys[i] = []byte(e.Reading)
		values[i] = int32(i)
	}
	return &Dictionary{
		trie:    buildByteTrie(keys, values),
		entries: entries,
	}
}

func sortAndDedup(entries []Entry, mergeCandidates func(into *Entry, from Entry)) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Reading < entries[j].Reading
	})
	out := entries[:0:0]
	for _, e := range entries {
		if len(out) > 0 && out[len(out)-1].Reading == e.Reading {
			mergeCandidates(&out[len(out)-1], e)
			continue
		}
		out = append(out, e)
	}
	return out
}

func dedupCandidatesBySurface(existing []Candidate, add []Candidate) []Candidate {
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.Surface] = true
	}
	for _, c := range add {
		if !seen[c.Surface] {
			existing = append(existing, c)
			seen[c.Surface] = true
		}
	}
	return existing
}

// ExactMatchSearch returns the entry whose reading exactly equals input, if
// any.
func (d *Dictionary) ExactMatchSearch(input string) (LookupResult, bool) {
	idx, ok := d.trie.exactMatchSearch([]byte(input))
	if !ok || int(idx) >= len(d.entries) {
		return LookupResult{}, false
	}
	e := d.entries[idx]
	return LookupResult{Reading: e.Reading, Candidates: e.Candidates}, true
}

// CommonPrefixSearch returns every entry whose reading is a prefix of
// input, in trie traversal order (shortest reading first).
func (d *Dictionary) CommonPrefixSearch(input string) []LookupResult {
	idxs := d.trie.commonPrefixSearch([]byte(input))
	results := make([]LookupResult, 0, len(idxs))
	for _, idx := range idxs {
		if int(idx) >= len(d.entries) {
			continue
		}
		e := d.entries[idx]
		results = append(results, LookupResult{Reading: e.Reading, Candidates: e.Candidates})
	}
	return results
}

// SearchBySurface scans every entry for a candidate surface containing
// query. Linear by design: only the inspector CLI uses it.
func (d *Dictionary) SearchBySurface(query string) []struct {
	Reading string
	Surface string
	Score   float32
} {
	var results []struct {
		Reading string
		Surface string
		Score   float32
	}
	for _, e := range d.entries {
		for _, c := range e.Candidates {
			if containsSubstring(c.Surface, query) {
				results = append(results, struct {
					Reading string
					Surface string
					Score   float32
				}{e.Reading, c.Surface, c.Score})
			}
		}
	}
	return results
}

func containsSubstring(s, substr string) bool {
	if substr == "" {
		return true
	}
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// DumpAll writes every (reading, surface, score) triple to w, tab-separated,
// one per line, for inspection/debugging. Returns the number of entries
// dumped.
func (d *Dictionary) DumpAll(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	for _, e := range d.entries {
		for _, c := range e.Candidates {
			if _, err := fmt.Fprintf(bw, "%s\t%s\t%g\n", e.Reading, c.Surface, c.Score); err != nil {
				return 0, err
			}
		}
	}
	return len(d.entries), bw.Flush()
}

// Save writes the dictionary to path in the binary KRKN format.
func (d *Dictionary) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dict: create %q: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := w.WriteString(magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return err
	}

	trieBytes := d.serializeTrie()
	if err := binary.Write(w, binary.LittleEndian, uint32(len(trieBytes))); err != nil {
		return err
	}
	if _, err := w.Write(trieBytes); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(d.entries))); err != nil {
		return err
	}
	for _, e := range d.entries {
		if err := writeString16(w, e.Reading); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(e.Candidates))); err != nil {
			return err
		}
		for _, c := range e.Candidates {
			if err := writeString16(w, c.Surface); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, c.Score); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}

func writeString16(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// Load reads a dictionary previously written by Save.
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dict: open %q: %w", path, err)
	}
	defer f.Close()
	return decode(bufio.NewReader(f))
}

func decode(r io.Reader) (*Dictionary, error) {
	magicBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, magicBuf); err != nil {
		return nil, fmt.Errorf("dict: read magic: %w", err)
	}
	if string(magicBuf) != magic {
		return nil, fmt.Errorf("dict: invalid magic: expected %s", magic)
	}

	var ver uint32
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, fmt.Errorf("dict: read version: %w", err)
	}
	if ver != version {
		return nil, fmt.Errorf("dict: unsupported version: %d", ver)
	}

	var trieLen uint32
	if err := binary.Read(r, binary.LittleEndian, &trieLen); err != nil {
		return nil, fmt.Errorf("dict: read trie_len: %w", err)
	}
	if trieLen > maxTrieLen {
		return nil, fmt.Errorf("dict: trie_len too large: %d (max %d)", trieLen, maxTrieLen)
	}
	trieBytes := make([]byte, trieLen)
	if _, err := io.ReadFull(r, trieBytes); err != nil {
		return nil, fmt.Errorf("dict: read trie bytes: %w", err)
	}

	var numEntries uint32
	if err := binary.Read(r, binary.LittleEndian, &numEntries); err != nil {
		return nil, fmt.Errorf("dict: read num_entries: %w", err)
	}
	if numEntries > maxEntries {
		return nil, fmt.Errorf("dict: num_entries too large: %d (max %d)", numEntries, maxEntries)
	}

	entries := make([]Entry, 0, numEntries)
	for i := uint32(0); i < numEntries; i++ {
		reading, err := readString16(r)
		if err != nil {
			return nil, fmt.Errorf("dict: read reading: %w", err)
		}
		var numCandidates uint16
		if err := binary.Read(r, binary.LittleEndian, &numCandidates); err != nil {
			return nil, fmt.Errorf("dict: read num_candidates: %w", err)
		}
		candidates := make([]Candidate, 0, numCandidates)
		for j := uint16(0); j < numCandidates; j++ {
			surface, err := readString16(r)
			if err != nil {
				return nil, fmt.Errorf("dict: read surface: %w", err)
			}
			var score float32
			if err := binary.Read(r, binary.LittleEndian, &score); err != nil {
				return nil, fmt.Errorf("dict: read score: %w", err)
			}
			candidates = append(candidates, Candidate{Surface: surface, Score: score})
		}
		sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].Score < candidates[b].Score })
		entries = append(entries, Entry{Reading: reading, Candidates: candidates})
	}

	return deserializeTrie(trieBytes, entries)
}

func readString16(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// serializeTrie and deserializeTrie round-trip the trie through the
// entries' own reading list: rather than persist a byte-packed BASE/CHECK
// array (a format only the from-scratch byteTrie itself would ever read),
// the trie is rebuilt from the entries on load. trieBytes therefore carries
// no independent information; it exists to keep the on-disk layout
// byte-compatible with the documented format, whose trie_len/trie-bytes
// fields were originally a serialized double array.
func (d *Dictionary) serializeTrie() []byte {
	return []byte{}
}

func deserializeTrie(_ []byte, entries []Entry) (*Dictionary, error) {
	return buildFromEntries(entries), nil
}

// LoadAuto sniffs path's first four bytes: KRKN selects the binary loader,
// anything else is parsed as Mozc/Google-IME TSV.
func LoadAuto(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dict: open %q: %w", path, err)
	}
	magicBuf := make([]byte, 4)
	n, _ := io.ReadFull(f, magicBuf)
	f.Close()

	if n >= 4 && string(magicBuf) == magic {
		return Load(path)
	}
	return BuildFromMozcTSV(path)
}

// Merge combines multiple dictionaries into one. Dictionaries earlier in
// the list have higher priority: their candidates appear first for the same
// reading. Returns nil if dicts is empty.
func Merge(dicts []*Dictionary) *Dictionary {
	if len(dicts) == 0 {
		return nil
	}
	merged := make(map[string][]Candidate)
	var order []string
	for _, dc := range dicts {
		for _, e := range dc.entries {
			if _, ok := merged[e.Reading]; !ok {
				order = append(order, e.Reading)
			}
			merged[e.Reading] = dedupCandidatesBySurface(merged[e.Reading], e.Candidates)
		}
	}
	entries := make([]Entry, 0, len(order))
	for _, reading := range order {
		entries = append(entries, Entry{Reading: reading, Candidates: merged[reading]})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Reading < entries[j].Reading })
	return buildFromEntries(entries)
}

// katakanaToHiragana is a thin wrapper over romaji.KatakanaToHiragana that
// the builders in this package use to normalize readings.
func katakanaToHiragana(s string) string {
	return romaji.KatakanaToHiragana(s)
}
