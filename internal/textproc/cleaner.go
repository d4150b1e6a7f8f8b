// Package textproc turns raw transcripts into clean, windowed text for summarization.
package textproc

import (
	"regexp"
	"strings"
)

var (
	reSpace    = regexp.MustCompile(`\s+`)
	rePunctGap = regexp.MustCompile(`\s+([?.!,])`)
)

// Cleaner removes filler words and normalizes spacing and punctuation.
type Cleaner struct {
	filler *regexp.Regexp
}

// NewCleaner builds a Cleaner for the given filler words or phrases.
// Matching is whole-word and case-insensitive; an empty list disables filler removal.
func NewCleaner(fillers []string) *Cleaner {
	var alts []string
	for _, f := range fillers {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		words := strings.Fields(f)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s+`))
	}
	if len(alts) == 0 {
		return &Cleaner{}
	}
	// \b only knows ASCII, so the boundaries are spelled out and kept as
	// groups 1 and 2. A comma glued to the filler ("okay, a test") goes with it.
	return &Cleaner{filler: regexp.MustCompile(
		`(?i)(^|[^\p{L}\p{N}_])(?:` + strings.Join(alts, "|") + `),?([^\p{L}\p{N}_]|$)`)}
}

// removeFillers repeats the replacement because a boundary character consumed
// by one match cannot start the next ("um um").
func (c *Cleaner) removeFillers(text string) string {
	for {
		next := c.filler.ReplaceAllString(text, "${1}${2}")
		if next == text {
			return text
		}
		text = next
	}
}

// Clean applies, in order: whitespace collapse, filler removal,
// space-before-punctuation removal and trimming.
func (c *Cleaner) Clean(text string) string {
	text = reSpace.ReplaceAllString(text, " ")

	if c.filler != nil {
		text = c.removeFillers(text)
		text = reSpace.ReplaceAllString(text, " ")
	}

	text = rePunctGap.ReplaceAllString(text, "$1")

	return strings.TrimSpace(text)
}
