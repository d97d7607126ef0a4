package ime

import "testing"

func TestCandidateListBasicConstruction(t *testing.T) {
	l := CandidateListFromStrings([]string{"a", "b", "c"})
	if l.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", l.Len())
	}
	if l.IsEmpty() {
		t.Error("should not be empty")
	}
	text, ok := l.SelectedText()
	if !ok || text != "a" {
		t.Errorf("SelectedText() = %q, %v, want a, true", text, ok)
	}
}

func TestCandidateListEmpty(t *testing.T) {
	l := NewCandidateList(nil)
	if !l.IsEmpty() {
		t.Error("should be empty")
	}
	if l.TotalPages() != 0 {
		t.Errorf("TotalPages() = %d, want 0", l.TotalPages())
	}
	if l.MoveNext() {
		t.Error("MoveNext() on empty list should return false")
	}
	if l.MovePrev() {
		t.Error("MovePrev() on empty list should return false")
	}
	if l.NextPage() {
		t.Error("NextPage() on empty list should return false")
	}
}

func TestCandidateListNavigationWithWraparound(t *testing.T) {
	l := CandidateListFromStrings([]string{"a", "b", "c"})

	l.MoveNext()
	if l.Cursor() != 1 {
		t.Fatalf("Cursor() = %d, want 1", l.Cursor())
	}
	l.MoveNext()
	l.MoveNext()
	if l.Cursor() != 0 {
		t.Errorf("Cursor() = %d, want 0 (wrapped)", l.Cursor())
	}

	l.MovePrev()
	if l.Cursor() != 2 {
		t.Errorf("Cursor() = %d, want 2 (wrapped backward)", l.Cursor())
	}
}

func TestCandidateListPagination(t *testing.T) {
	strs := make([]string, 20)
	for i := range strs {
		strs[i] = string(rune('a' + i))
	}
	l := CandidateListFromStrings(strs)

	if l.TotalPages() != 3 {
		t.Fatalf("TotalPages() = %d, want 3 (20 items / page size 9)", l.TotalPages())
	}
	if len(l.PageCandidates()) != 9 {
		t.Errorf("len(PageCandidates()) = %d, want 9", len(l.PageCandidates()))
	}

	l.NextPage()
	if l.CurrentPage() != 1 {
		t.Fatalf("CurrentPage() = %d, want 1", l.CurrentPage())
	}
	l.NextPage()
	if l.CurrentPage() != 2 {
		t.Fatalf("CurrentPage() = %d, want 2", l.CurrentPage())
	}
	if len(l.PageCandidates()) != 2 {
		t.Errorf("len(PageCandidates()) = %d, want 2 (last page is a partial page)", len(l.PageCandidates()))
	}

	l.NextPage()
	if l.CurrentPage() != 0 {
		t.Errorf("CurrentPage() = %d, want 0 (wrapped)", l.CurrentPage())
	}
}

func TestCandidateListSelectOnPage(t *testing.T) {
	strs := make([]string, 20)
	for i := range strs {
		strs[i] = string(rune('a' + i))
	}
	l := CandidateListFromStrings(strs)

	l.NextPage() // page 1, absolute indices 9..17

	c := l.SelectOnPage(3)
	if c == nil || c.Index != 11 {
		t.Fatalf("SelectOnPage(3) on page 1 = %+v, want absolute index 11", c)
	}

	if l.SelectOnPage(0) != nil {
		t.Error("SelectOnPage(0) should be out of range (1-indexed)")
	}
	if l.SelectOnPage(10) != nil {
		t.Error("SelectOnPage(10) should be out of range (page size 9)")
	}
}

func TestCandidateListUpdateResetsCursor(t *testing.T) {
	l := CandidateListFromStrings([]string{"a", "b", "c"})
	l.MoveNext()
	l.Update([]Candidate{NewCandidate("x")})
	if l.Cursor() != 0 {
		t.Errorf("Cursor() after Update = %d, want 0", l.Cursor())
	}
	if l.Len() != 1 {
		t.Errorf("Len() after Update = %d, want 1", l.Len())
	}
}
