package orchestrator

// Source names the origin of a candidate within the merge pipeline. It
// controls both the annotation shown to the user and the merge-priority
// ordering.
type Source int

const (
	// SourceLearning marks a candidate recalled from the learning cache.
	SourceLearning Source = iota
	// SourceUserDictionary marks a candidate from the user dictionary.
	SourceUserDictionary
	// SourceModel marks a candidate produced by LM backend inference.
	SourceModel
	// SourceDictionary marks a candidate from the system dictionary.
	SourceDictionary
	// SourceFallback marks the raw hiragana/katakana reading, used only
	// when no other source produced anything.
	SourceFallback
)

// Label returns the user-facing annotation string for the source, or the
// empty string for sources that are not annotated (Model, Fallback).
func (s Source) Label() string {
	switch s {
	case SourceLearning:
		return "Learning"
	case SourceUserDictionary:
		return "UserDictionary"
	case SourceDictionary:
		return "Dictionary"
	default:
		return ""
	}
}

// AnnotatedCandidate is a single conversion candidate tagged with its
// source and, optionally, a reading distinct from the input reading (used
// by learning-cache prefix matches, whose surface was recorded under a
// longer reading than what the user has typed so far).
type AnnotatedCandidate struct {
	Text    string
	Source  Source
	Reading string // empty when the candidate's reading equals the input reading
}

// Builder accumulates a deduplicated, insertion-ordered candidate list.
// Learning candidates are force-inserted via PushForced even when their
// text duplicates one already seen, matching the pipeline's "Learning
// entries are always present" rule; every other source uses PushIfNew.
type Builder struct {
	candidates []AnnotatedCandidate
	seen       map[string]bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]bool)}
}

// PushIfNew appends a candidate only if its text has not already been seen.
func (b *Builder) PushIfNew(text string, source Source, reading string) {
	if b.seen[text] {
		return
	}
	b.seen[text] = true
	b.candidates = append(b.candidates, AnnotatedCandidate{Text: text, Source: source, Reading: reading})
}

// PushAnnotatedIfNew appends a pre-built AnnotatedCandidate if its text has
// not already been seen.
func (b *Builder) PushAnnotatedIfNew(ac AnnotatedCandidate) {
	if b.seen[ac.Text] {
		return
	}
	b.seen[ac.Text] = true
	b.candidates = append(b.candidates, ac)
}

// PushForced appends a candidate unconditionally and marks its text as
// seen, so any later source's PushIfNew for the same text is suppressed.
// Used for learning candidates, which must appear even if a later source
// would otherwise have produced the same text first.
func (b *Builder) PushForced(ac AnnotatedCandidate) {
	b.seen[ac.Text] = true
	b.candidates = append(b.candidates, ac)
}

// IsEmpty reports whether no candidate has been pushed yet.
func (b *Builder) IsEmpty() bool {
	return len(b.candidates) == 0
}

// Candidates returns the accumulated candidates in insertion order.
func (b *Builder) Candidates() []AnnotatedCandidate {
	return b.candidates
}

// MergeGreedyAndBeam merges a single-result greedy generation with a
// beam-search result list, deduplicating and capping at maxCandidates. The
// primary (greedy) entries always come first, in order; secondary (beam)
// entries that duplicate an earlier entry are dropped.
func MergeGreedyAndBeam(primary, secondary []string, maxCandidates int) []string {
	seen := make(map[string]bool, len(primary)+len(secondary))
	out := make([]string, 0, maxCandidates)
	for _, c := range primary {
		if len(out) >= maxCandidates {
			return out
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	for _, c := range secondary {
		if len(out) >= maxCandidates {
			return out
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
