// Package payload loads the optional request-body data sets that give each
// simulated user its own rotating payload. A set holds named entries, one
// per collection item to parameterize, each with an ordered list of
// candidate bodies. Sets are read once at startup and never mutated.
package payload

// Set is a parsed request-body data set.
type Set struct {
	Entries []Entry `json:"entries" yaml:"entries"`

	index map[string]*Entry
}

// Entry holds the candidate bodies for one collection item, matched by name.
type Entry struct {
	Name   string   `json:"name" yaml:"name"`
	Bodies []string `json:"bodies" yaml:"bodies"`
}

// Lookup returns the entry for a collection item name.
func (s *Set) Lookup(name string) (*Entry, bool) {
	e, ok := s.index[name]
	return e, ok
}

// Len returns the number of entries in the set.
func (s *Set) Len() int {
	return len(s.Entries)
}

// SelectBody picks the body for a 1-based user index. Users rotate through
// the candidates: user 1 gets the first body, user N gets body
// (N-1) mod len(bodies). The selection is deterministic, so a given user
// sends the same body on every tick.
func (e *Entry) SelectBody(userIndex int) string {
	if len(e.Bodies) == 0 {
		return ""
	}
	i := (userIndex - 1) % len(e.Bodies)
	if i < 0 {
		i += len(e.Bodies)
	}
	return e.Bodies[i]
}

func (s *Set) buildIndex() {
	s.index = make(map[string]*Entry, len(s.Entries))
	for i := range s.Entries {
		s.index[s.Entries[i].Name] = &s.Entries[i]
	}
}
