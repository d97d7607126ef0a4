package dict

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type jsonCandidate struct {
	Surface string  `json:"surface"`
	Score   float32 `json:"score"`
}

type jsonEntry struct {
	Reading    string          `json:"reading"`
	Candidates []jsonCandidate `json:"candidates"`
}

// BuildFromJSON builds a Dictionary from a scored-JSON file: an array of
// {reading, candidates: [{surface, score}]}. Readings are katakana in the
// file and are converted to hiragana at ingest.
func BuildFromJSON(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dict: read %q: %w", path, err)
	}
	var jsonEntries []jsonEntry
	if err := json.Unmarshal(data, &jsonEntries); err != nil {
		return nil, fmt.Errorf("dict: parse %q: %w", path, err)
	}

	entries := make([]Entry, 0, len(jsonEntries))
	for _, je := range jsonEntries {
		cands := make([]Candidate, 0, len(je.Candidates))
		for _, jc := range je.Candidates {
			cands = append(cands, Candidate{Surface: jc.Surface, Score: jc.Score})
		}
		sort.SliceStable(cands, func(a, b int) bool {
			if cands[a].Score != cands[b].Score {
				return cands[a].Score < cands[b].Score
			}
			return cands[a].Surface < cands[b].Surface
		})
		entries = append(entries, Entry{
			Reading:    katakanaToHiragana(je.Reading),
			Candidates: cands,
		})
	}

	entries = sortAndDedup(entries, func(into *Entry, from Entry) {
		// first occurrence wins: leave into untouched
		_ = from
	})
	return buildFromEntries(entries), nil
}

// BuildFromMozcTSV builds a Dictionary from a Mozc/Google-IME TSV file:
// reading\tsurface\tPOS\tcomment. Comment (#) and blank lines are skipped;
// rows with fewer than 2 columns are skipped. Surfaces within a reading are
// deduplicated, preserving insertion order; scores default to 0.
func BuildFromMozcTSV(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dict: open %q: %w", path, err)
	}
	defer f.Close()

	order := []string{}
	groups := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 2 {
			continue
		}
		reading, surface := cols[0], cols[1]
		if reading == "" || surface == "" {
			continue
		}
		if _, ok := groups[reading]; !ok {
			order = append(order, reading)
			groups[reading] = nil
			seen[reading] = make(map[string]bool)
		}
		if !seen[reading][surface] {
			groups[reading] = append(groups[reading], surface)
			seen[reading][surface] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dict: scan %q: %w", path, err)
	}

	entries := make([]Entry, 0, len(order))
	for _, reading := range order {
		surfaces := groups[reading]
		cands := make([]Candidate, len(surfaces))
		for i, s := range surfaces {
			cands[i] = Candidate{Surface: s, Score: 0}
		}
		entries = append(entries, Entry{Reading: reading, Candidates: cands})
	}

	entries = sortAndDedup(entries, func(into *Entry, from Entry) {
		into.Candidates = dedupCandidatesBySurface(into.Candidates, from.Candidates)
	})
	return buildFromEntries(entries), nil
}

// unescapeUnicode decodes literal \uXXXX escape sequences that Sudachi CSV
// files embed in surface forms (emoji and kaomoji entries).
func unescapeUnicode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == 'u' && i+6 <= len(runes) {
			hex := string(runes[i+2 : i+6])
			if code, err := strconv.ParseUint(hex, 16, 32); err == nil {
				b.WriteRune(rune(code))
				i += 5
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

const sudachiFallbackCost = 99999

// ParseSudachiCSV parses one Sudachi dictionary CSV file into a map of
// reading -> {surface -> min_cost}. Column 4 is the surface form (with
// \uXXXX escapes decoded), column 3 is integer cost, column 11 is the
// katakana reading (NFKC-normalized, then converted to hiragana). Entries
// whose columns 1 and 2 are
// both "-1" have no reliable cost and receive a large fallback. Kaomoji
// rows (columns 5,6 = 補助記号, ＡＡ) are skipped.
func ParseSudachiCSV(path string) (map[string]map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dict: open %q: %w", path, err)
	}
	defer f.Close()

	result := make(map[string]map[string]int)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cols := strings.Split(line, ",")
		if len(cols) < 12 {
			continue
		}
		if len(cols) > 6 && cols[5] == "補助記号" && cols[6] == "ＡＡ" {
			continue
		}

		surface := unescapeUnicode(cols[4])
		var cost int
		if cols[1] == "-1" && cols[2] == "-1" {
			cost = sudachiFallbackCost
		} else {
			c, err := strconv.Atoi(cols[3])
			if err != nil {
				continue
			}
			cost = c
		}
		reading := katakanaToHiragana(norm.NFKC.String(cols[11]))
		if reading == "" || surface == "" {
			continue
		}

		surfaces, ok := result[reading]
		if !ok {
			surfaces = make(map[string]int)
			result[reading] = surfaces
		}
		if existing, ok := surfaces[surface]; !ok || cost < existing {
			surfaces[surface] = cost
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dict: scan %q: %w", path, err)
	}
	return result, nil
}

// ParseSudachiCSVs parses multiple Sudachi CSV files and merges them,
// keeping the minimum cost for duplicate (reading, surface) pairs.
func ParseSudachiCSVs(paths []string) (map[string]map[string]int, error) {
	merged := make(map[string]map[string]int)
	for _, path := range paths {
		m, err := ParseSudachiCSV(path)
		if err != nil {
			return nil, err
		}
		MergeReadingMaps(merged, m)
	}
	return merged, nil
}

// MergeReadingMaps merges source into target, keeping the minimum cost for
// duplicate (reading, surface) pairs.
func MergeReadingMaps(target, source map[string]map[string]int) {
	for reading, surfaces := range source {
		t, ok := target[reading]
		if !ok {
			t = make(map[string]int)
			target[reading] = t
		}
		for surface, cost := range surfaces {
			if existing, ok := t[surface]; !ok || cost < existing {
				t[surface] = cost
			}
		}
	}
}

// BuildFromSudachiCostMap converts a reading -> {surface -> cost} map (as
// produced by ParseSudachiCSV(s)) into a Dictionary, using the raw Sudachi
// cost directly as the candidate score.
func BuildFromSudachiCostMap(costs map[string]map[string]int) *Dictionary {
	entries := make([]Entry, 0, len(costs))
	for reading, surfaces := range costs {
		cands := make([]Candidate, 0, len(surfaces))
		for surface, cost := range surfaces {
			cands = append(cands, Candidate{Surface: surface, Score: float32(cost)})
		}
		sort.SliceStable(cands, func(a, b int) bool {
			if cands[a].Score != cands[b].Score {
				return cands[a].Score < cands[b].Score
			}
			return cands[a].Surface < cands[b].Surface
		})
		entries = append(entries, Entry{Reading: reading, Candidates: cands})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Reading < entries[j].Reading })
	return buildFromEntries(entries)
}
