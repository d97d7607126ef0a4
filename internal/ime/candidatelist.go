package ime

// DefaultPageSize is the number of candidates shown per page, matching the
// digit-selection shortcut's 1-9 range.
const DefaultPageSize = 9

// Candidate is a single conversion candidate shown in the candidate
// window: its surface text, the reading it was produced from (empty if
// identical to the list's reading), and a source annotation for display
// (empty for unannotated sources such as model output).
type Candidate struct {
	Text       string
	Reading    string
	Annotation string
	Index      int
}

// NewCandidate returns a bare candidate with no reading or annotation.
func NewCandidate(text string) Candidate {
	return Candidate{Text: text}
}

// NewCandidateWithReading returns a candidate tagged with its reading.
func NewCandidateWithReading(text, reading string) Candidate {
	return Candidate{Text: text, Reading: reading}
}

// CandidateList is a paginated, navigable list of conversion candidates.
type CandidateList struct {
	candidates []Candidate
	cursor     int
	pageSize   int
}

// NewCandidateList returns a CandidateList over candidates with the
// default page size.
func NewCandidateList(candidates []Candidate) CandidateList {
	return CandidateList{candidates: candidates, pageSize: DefaultPageSize}
}

// CandidateListFromStrings builds a CandidateList from bare surface
// strings, indexing them in order.
func CandidateListFromStrings(strs []string) CandidateList {
	cands := make([]Candidate, len(strs))
	for i, s := range strs {
		cands[i] = Candidate{Text: s, Index: i}
	}
	return NewCandidateList(cands)
}

// Candidates returns the full, unpaginated candidate slice.
func (l *CandidateList) Candidates() []Candidate {
	return l.candidates
}

// Len returns the total candidate count.
func (l *CandidateList) Len() int {
	return len(l.candidates)
}

// IsEmpty reports whether the list has no candidates.
func (l *CandidateList) IsEmpty() bool {
	return len(l.candidates) == 0
}

// Cursor returns the absolute index of the currently selected candidate.
func (l *CandidateList) Cursor() int {
	return l.cursor
}

// PageSize returns the list's page size.
func (l *CandidateList) PageSize() int {
	if l.pageSize == 0 {
		return DefaultPageSize
	}
	return l.pageSize
}

// CurrentPage returns the 0-indexed page the cursor is on.
func (l *CandidateList) CurrentPage() int {
	ps := l.PageSize()
	if ps == 0 {
		return 0
	}
	return l.cursor / ps
}

// TotalPages returns the number of pages, 0 for an empty list.
func (l *CandidateList) TotalPages() int {
	if l.IsEmpty() {
		return 0
	}
	ps := l.PageSize()
	return (len(l.candidates) + ps - 1) / ps
}

// PageStart returns the absolute index of the current page's first
// candidate.
func (l *CandidateList) PageStart() int {
	return l.CurrentPage() * l.PageSize()
}

// PageCandidates returns the slice of candidates on the current page.
func (l *CandidateList) PageCandidates() []Candidate {
	start := l.PageStart()
	if start >= len(l.candidates) {
		return nil
	}
	end := start + l.PageSize()
	if end > len(l.candidates) {
		end = len(l.candidates)
	}
	return l.candidates[start:end]
}

// PageCursor returns the cursor position relative to the current page.
func (l *CandidateList) PageCursor() int {
	return l.cursor - l.PageStart()
}

// Selected returns the currently selected candidate, or nil if the list is
// empty.
func (l *CandidateList) Selected() *Candidate {
	if l.cursor < 0 || l.cursor >= len(l.candidates) {
		return nil
	}
	return &l.candidates[l.cursor]
}

// SelectedText returns the selected candidate's text and true, or ("",
// false) if the list is empty.
func (l *CandidateList) SelectedText() (string, bool) {
	c := l.Selected()
	if c == nil {
		return "", false
	}
	return c.Text, true
}

// MoveNext advances the cursor by one, wrapping to the start. Returns
// false only when the list is empty.
func (l *CandidateList) MoveNext() bool {
	if l.IsEmpty() {
		return false
	}
	l.cursor = (l.cursor + 1) % len(l.candidates)
	return true
}

// MovePrev retreats the cursor by one, wrapping to the end. Returns false
// only when the list is empty.
func (l *CandidateList) MovePrev() bool {
	if l.IsEmpty() {
		return false
	}
	l.cursor = (l.cursor - 1 + len(l.candidates)) % len(l.candidates)
	return true
}

// NextPage advances the cursor to the start of the next page, wrapping to
// page 0. Returns false only when the list is empty.
func (l *CandidateList) NextPage() bool {
	if l.IsEmpty() {
		return false
	}
	total := l.TotalPages()
	next := (l.CurrentPage() + 1) % total
	l.cursor = next * l.PageSize()
	return true
}

// PrevPage retreats the cursor to the start of the previous page, wrapping
// to the last page. Returns false only when the list is empty.
func (l *CandidateList) PrevPage() bool {
	if l.IsEmpty() {
		return false
	}
	total := l.TotalPages()
	prev := (l.CurrentPage() - 1 + total) % total
	l.cursor = prev * l.PageSize()
	return true
}

// SelectOnPage selects the pageIndex-th candidate (1-indexed) on the
// current page and returns it, or nil if pageIndex is out of range for the
// current page.
func (l *CandidateList) SelectOnPage(pageIndex int) *Candidate {
	if pageIndex < 1 || pageIndex > l.PageSize() {
		return nil
	}
	abs := l.PageStart() + pageIndex - 1
	return l.Select(abs)
}

// Select selects the candidate at absolute index idx and returns it, or
// nil if idx is out of range.
func (l *CandidateList) Select(idx int) *Candidate {
	if idx < 0 || idx >= len(l.candidates) {
		return nil
	}
	l.cursor = idx
	return &l.candidates[idx]
}

// Reset moves the cursor back to the first candidate.
func (l *CandidateList) Reset() {
	l.cursor = 0
}

// Update replaces the candidate list wholesale and resets the cursor.
func (l *CandidateList) Update(candidates []Candidate) {
	l.candidates = candidates
	l.cursor = 0
}
