// Package learning implements the per-user learning cache: it remembers
// which surface form the user picked for a reading and boosts that
// candidate on later conversions, persisted as a TSV file.
package learning

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultMaxEntries is the default cap on total (reading, surface) pairs
// kept across all readings.
const DefaultMaxEntries = 10_000

const tsvHeader = "# karukan learning cache v1"

// Entry is a single learned conversion: how many times a surface was
// chosen for its reading, and when it was last chosen.
type Entry struct {
	Surface    string
	Frequency  uint32
	LastAccess int64
}

// Scored is a (surface, score) pair returned by Lookup.
type Scored struct {
	Surface string
	Score   float64
}

// PrefixScored is a (reading, surface, score) triple returned by
// PrefixLookup.
type PrefixScored struct {
	Reading string
	Surface string
	Score   float64
}

// Cache is an in-memory learning cache keyed by reading.
type Cache struct {
	entries    map[string][]Entry
	maxEntries int
	dirty      bool
}

// New creates an empty cache with the given entry cap.
func New(maxEntries int) *Cache {
	return &Cache{entries: make(map[string][]Entry), maxEntries: maxEntries}
}

// Record registers a user selection: bumps frequency and last-access time
// if (reading, surface) is already known, otherwise inserts it fresh.
func (c *Cache) Record(reading, surface string) {
	now := time.Now().Unix()
	entries := c.entries[reading]
	for i := range entries {
		if entries[i].Surface == surface {
			entries[i].Frequency++
			entries[i].LastAccess = now
			c.dirty = true
			return
		}
	}
	c.entries[reading] = append(entries, Entry{Surface: surface, Frequency: 1, LastAccess: now})
	c.dirty = true
}

// Lookup returns (surface, score) pairs for an exact reading match, sorted
// by score descending.
func (c *Cache) Lookup(reading string) []Scored {
	entries, ok := c.entries[reading]
	if !ok {
		return nil
	}
	now := time.Now().Unix()
	scored := make([]Scored, len(entries))
	for i, e := range entries {
		scored[i] = Scored{Surface: e.Surface, Score: score(e, now)}
	}
	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Score > scored[b].Score })
	return scored
}

// PrefixLookup returns (reading, surface, score) triples for every reading
// that starts with prefix, sorted by score descending.
func (c *Cache) PrefixLookup(prefix string) []PrefixScored {
	now := time.Now().Unix()
	var results []PrefixScored
	for reading, entries := range c.entries {
		if !strings.HasPrefix(reading, prefix) {
			continue
		}
		for _, e := range entries {
			results = append(results, PrefixScored{Reading: reading, Surface: e.Surface, Score: score(e, now)})
		}
	}
	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	return results
}

// IsDirty reports whether there are unsaved changes.
func (c *Cache) IsDirty() bool { return c.dirty }

// EntryCount returns the total number of (reading, surface) pairs across
// all readings.
func (c *Cache) EntryCount() int {
	total := 0
	for _, v := range c.entries {
		total += len(v)
	}
	return total
}

// score weighs recency against a logarithmic frequency bonus, in the style
// of mozc's UserHistoryPredictor.
func score(e Entry, now int64) float64 {
	var ageDays int64
	if now > e.LastAccess {
		ageDays = (now - e.LastAccess) / 86400
	}
	recency := 1.0 / (1.0 + float64(ageDays))
	freq := math.Log1p(float64(e.Frequency))
	return recency*10.0 + freq
}

// evict removes the lowest-scoring entries until the cache is within
// maxEntries, dropping readings that become empty.
func (c *Cache) evict() {
	total := c.EntryCount()
	if total <= c.maxEntries {
		return
	}
	now := time.Now().Unix()

	type candidate struct {
		reading string
		index   int
		score   float64
	}
	all := make([]candidate, 0, total)
	for reading, entries := range c.entries {
		for i, e := range entries {
			all = append(all, candidate{reading: reading, index: i, score: score(e, now)})
		}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].score < all[b].score })

	toRemove := total - c.maxEntries
	removeByReading := make(map[string][]int)
	for _, cand := range all[:toRemove] {
		removeByReading[cand.reading] = append(removeByReading[cand.reading], cand.index)
	}

	for reading, indices := range removeByReading {
		sort.Sort(sort.Reverse(sort.IntSlice(indices)))
		entries := c.entries[reading]
		for _, idx := range indices {
			if idx < len(entries) {
				entries = append(entries[:idx], entries[idx+1:]...)
			}
		}
		if len(entries) == 0 {
			delete(c.entries, reading)
		} else {
			c.entries[reading] = entries
		}
	}
}

// Load reads a learning cache from a TSV file at path.
func Load(path string, maxEntries int) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("learning: open %q: %w", path, err)
	}
	defer f.Close()

	c := New(maxEntries)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) < 4 {
			continue
		}
		reading, surface := parts[0], parts[1]
		frequency, err := strconv.ParseUint(parts[2], 10, 32)
		if err != nil {
			continue
		}
		lastAccess, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			continue
		}
		c.entries[reading] = append(c.entries[reading], Entry{
			Surface:    surface,
			Frequency:  uint32(frequency),
			LastAccess: lastAccess,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("learning: scan %q: %w", path, err)
	}
	c.dirty = false
	return c, nil
}

// Save evicts over-capacity entries, then writes the cache to path as TSV,
// creating parent directories as needed.
func (c *Cache) Save(path string) error {
	c.evict()

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("learning: create dir %q: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("learning: create %q: %w", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if _, err := fmt.Fprintln(w, tsvHeader); err != nil {
		return err
	}

	readings := make([]string, 0, len(c.entries))
	for reading := range c.entries {
		readings = append(readings, reading)
	}
	sort.Strings(readings)

	for _, reading := range readings {
		for _, e := range c.entries[reading] {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", reading, e.Surface, e.Frequency, e.LastAccess); err != nil {
				return err
			}
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	c.dirty = false
	return nil
}
