package llmanalysis

// IncrementalKeyScanner counts occurrences of specific JSON object keys
// across streamed text. It is a byte-level state machine: no buffering,
// no JSON parsing, safe to feed arbitrary partial chunks. A tracked key
// counts only when its quoted literal is matched starting outside any
// string value and is followed, skipping only whitespace and other
// non-printable bytes, by a colon.
//
// The counts are an approximation used for live progress reporting while
// the payload is still streaming; final counts always come from parsing
// the completed payload.
type IncrementalKeyScanner struct {
	keys     []*trackedKey
	inString bool
	escaped  bool
}

type trackedKey struct {
	name    string
	literal []byte // quoted form, e.g. `"title"`
	matched int    // partial-match index into literal
	colon   bool   // literal fully matched, awaiting colon
	count   int
}

// NewIncrementalKeyScanner creates a scanner tracking the given bare key
// names (without quotes).
func NewIncrementalKeyScanner(keys ...string) *IncrementalKeyScanner {
	s := &IncrementalKeyScanner{}
	for _, k := range keys {
		s.keys = append(s.keys, &trackedKey{
			name:    k,
			literal: []byte(`"` + k + `"`),
		})
	}
	return s
}

// Update scans one chunk of streamed text and returns how many new
// matches each tracked key gained in this chunk. Keys with no new
// matches are absent from the result.
func (s *IncrementalKeyScanner) Update(chunk string) map[string]int {
	var found map[string]int
	for i := 0; i < len(chunk); i++ {
		b := chunk[i]
		for _, k := range s.keys {
			if s.step(k, b) {
				if found == nil {
					found = make(map[string]int)
				}
				found[k.name]++
			}
		}
		s.advanceStringState(b)
	}
	return found
}

// Count returns the running total for a tracked key.
func (s *IncrementalKeyScanner) Count(key string) int {
	for _, k := range s.keys {
		if k.name == key {
			return k.count
		}
	}
	return 0
}

// step advances one key's matcher by one byte and reports whether the
// byte completed a match. Called before advanceStringState so the
// opening quote of a candidate key is judged against the state outside
// of it.
func (s *IncrementalKeyScanner) step(k *trackedKey, b byte) bool {
	if k.colon {
		switch {
		case b == ':':
			k.colon = false
			k.count++
			return true
		case b <= ' ':
			// Whitespace and non-printable bytes may sit between the
			// closing quote and the colon.
			return false
		default:
			k.colon = false
		}
	}
	if k.matched > 0 {
		if b == k.literal[k.matched] {
			k.matched++
			if k.matched == len(k.literal) {
				k.matched = 0
				k.colon = true
			}
			return false
		}
		k.matched = 0
	}
	// A match may only begin outside a string value.
	if !s.inString && b == k.literal[0] {
		k.matched = 1
	}
	return false
}

// advanceStringState tracks whether the scan position is inside a quoted
// JSON string, with backslash-escape handling so escaped quotes do not
// toggle the state.
func (s *IncrementalKeyScanner) advanceStringState(b byte) {
	if s.inString {
		switch {
		case s.escaped:
			s.escaped = false
		case b == '\\':
			s.escaped = true
		case b == '"':
			s.inString = false
		}
		return
	}
	if b == '"' {
		s.inString = true
	}
}
