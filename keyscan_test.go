package llmanalysis

import "testing"

func TestKeyScannerCountsKeys(t *testing.T) {
	s := NewIncrementalKeyScanner("title", "question")

	text := `{"insights":[{"title":"a"},{"title":"b"}],"quiz_questions":[{"question":"q"}]}`
	found := s.Update(text)

	if found["title"] != 2 {
		t.Errorf("title matches = %d, want 2", found["title"])
	}
	if found["question"] != 1 {
		t.Errorf("question matches = %d, want 1", found["question"])
	}
	if s.Count("title") != 2 || s.Count("question") != 1 {
		t.Errorf("running totals = (%d, %d), want (2, 1)", s.Count("title"), s.Count("question"))
	}
}

func TestKeyScannerChunkBoundaries(t *testing.T) {
	// The same text fed one byte at a time must count identically,
	// including a key literal split mid-word.
	text := `{"title": "x", "nested": {"title" : "y"}}`

	s := NewIncrementalKeyScanner("title")
	total := 0
	for i := 0; i < len(text); i++ {
		for _, n := range s.Update(string(text[i])) {
			total += n
		}
	}
	if total != 2 {
		t.Errorf("byte-at-a-time matches = %d, want 2", total)
	}
}

func TestKeyScannerIgnoresKeyInsideStringValue(t *testing.T) {
	s := NewIncrementalKeyScanner("title")

	// The quoted "title" here is inside a string value, not a key.
	s.Update(`{"summary": "the \"title\": field is discussed here"}`)
	if s.Count("title") != 0 {
		t.Errorf("count = %d, want 0 for key text inside a string value", s.Count("title"))
	}

	// String state must carry across chunks too.
	s2 := NewIncrementalKeyScanner("title")
	s2.Update(`{"summary": "contains `)
	s2.Update(`"title": inside"`)
	s2.Update(`, "title": "real"}`)
	if s2.Count("title") != 1 {
		t.Errorf("count = %d, want 1 (only the real key)", s2.Count("title"))
	}
}

func TestKeyScannerRequiresColon(t *testing.T) {
	s := NewIncrementalKeyScanner("title")

	// An array element "title" with no following colon is not a key.
	s.Update(`{"tags": ["title", "other"]}`)
	if s.Count("title") != 0 {
		t.Errorf("count = %d, want 0 without a colon", s.Count("title"))
	}

	// Whitespace and newlines between the quote and the colon are fine.
	s.Update("{\"title\" \t\n: \"x\"}")
	if s.Count("title") != 1 {
		t.Errorf("count = %d, want 1 with whitespace before colon", s.Count("title"))
	}
}

func TestKeyScannerEscapedQuotes(t *testing.T) {
	s := NewIncrementalKeyScanner("title")

	// The escaped quote does not close the string, so the following
	// "title": is still inside a value.
	s.Update(`{"a": "ends with \\\" still open "title": no", "title": "yes"}`)
	if s.Count("title") != 1 {
		t.Errorf("count = %d, want 1", s.Count("title"))
	}
}

func TestKeyScannerUntrackedKey(t *testing.T) {
	s := NewIncrementalKeyScanner("title")
	if got := s.Update(`{"question": "q"}`); got != nil {
		t.Errorf("Update returned %v for untracked keys, want nil", got)
	}
	if s.Count("question") != 0 {
		t.Errorf("Count for untracked key = %d, want 0", s.Count("question"))
	}
}
