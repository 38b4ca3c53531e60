package engine

import "strings"

// scope holds the variable bindings visible to a single run: the caller's
// env overrides first, then captures accumulated as items execute. Each run
// gets a fresh scope, so bindings never leak between ticks.
type scope struct {
	values map[string]string
}

func newScope(env []EnvVar) *scope {
	s := &scope{values: make(map[string]string, len(env))}
	for _, v := range env {
		s.values[v.Key] = v.Value
	}
	return s
}

func (s *scope) set(key, value string) {
	s.values[key] = value
}

// expand replaces every {{key}} occurrence with its bound value. Unknown
// placeholders pass through untouched.
func (s *scope) expand(input string) string {
	if !strings.Contains(input, "{{") {
		return input
	}

	result := input
	for key, value := range s.values {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}
