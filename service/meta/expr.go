package meta

import (
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expand replaces every ${env.NAME} with lookup(NAME). A malformed
// expression is kept literally, while expressions nested after it are still
// expanded.
func expand(value string, lookup func(string) string) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var b strings.Builder
	rest := value
	for {
		before, after, found := strings.Cut(rest, envPrefix)
		b.WriteString(before)
		if !found {
			return b.String()
		}
		name, tail, closed := strings.Cut(after, "}")
		if !closed {
			b.WriteString(envPrefix)
			b.WriteString(after)
			return b.String()
		}
		if !isName(name) {
			b.WriteString(envPrefix)
			rest = after
			continue
		}
		b.WriteString(lookup(name))
		rest = tail
	}
}

func isName(name string) bool {
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
