package textproc

import "strings"

// Excerpt returns the first n runes of s with newlines flattened, followed by
// "..." when anything was cut.
func Excerpt(s string, n int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
