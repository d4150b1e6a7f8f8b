// Package studyguide parses generated study material into typed sections.
package studyguide

import (
	"regexp"
	"strings"
)

// Kind identifies a study guide section.
type Kind string

const (
	KindNotes       Kind = "notes"
	KindKeyConcepts Kind = "key_concepts"
	KindFlashcards  Kind = "flashcards"
	KindMCQs        Kind = "mcqs"
	KindExplanation Kind = "explanation"
	KindOther       Kind = "other"
)

// Expected lists the sections a complete guide carries, in display order.
var Expected = []Kind{KindNotes, KindKeyConcepts, KindFlashcards, KindMCQs, KindExplanation}

// Title is the display name of a kind.
func (k Kind) Title() string {
	switch k {
	case KindNotes:
		return "Structured Study Notes"
	case KindKeyConcepts:
		return "Key Concepts"
	case KindFlashcards:
		return "Flashcards"
	case KindMCQs:
		return "MCQs"
	case KindExplanation:
		return "Beginner-Friendly Explanation"
	default:
		return "Other"
	}
}

// itemized kinds are split into one item per blank-line separated block.
func (k Kind) itemized() bool {
	return k == KindFlashcards || k == KindMCQs
}

// titles maps normalized heading text to a section kind. Only whole titles
// match, so a sub-heading such as "Explanation of Osmosis" stays in its section.
var titles = map[string]Kind{
	"structured study notes":        KindNotes,
	"structured notes":              KindNotes,
	"study notes":                   KindNotes,
	"notes":                         KindNotes,
	"key concepts":                  KindKeyConcepts,
	"key terms":                     KindKeyConcepts,
	"key concepts and terms":        KindKeyConcepts,
	"flashcards":                    KindFlashcards,
	"flash cards":                   KindFlashcards,
	"mcqs":                          KindMCQs,
	"mcq":                           KindMCQs,
	"multiple choice questions":     KindMCQs,
	"quiz":                          KindMCQs,
	"beginner friendly explanation": KindExplanation,
	"beginner explanation":          KindExplanation,
	"simple explanation":            KindExplanation,
	"explanation":                   KindExplanation,
}

var (
	reCount       = regexp.MustCompile(`^\d+\s+`)
	reParenthetic = regexp.MustCompile(`\s*\([^)]*\)`)
	reNonWord     = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// Classify maps a heading to a section kind, or KindOther. Counts ("5
// Flashcards"), parentheticals and text after a colon are ignored.
func Classify(heading string) Kind {
	h := strings.ToLower(heading)
	if i := strings.Index(h, ":"); i >= 0 {
		h = h[:i]
	}
	h = reParenthetic.ReplaceAllString(h, "")
	h = reCount.ReplaceAllString(strings.TrimSpace(h), "")
	h = strings.TrimSpace(reNonWord.ReplaceAllString(h, " "))
	if k, ok := titles[h]; ok {
		return k
	}
	return KindOther
}

// Section is one titled block of a guide.
type Section struct {
	Kind  Kind     `json:"kind"`
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Items []string `json:"items,omitempty"`
}

// Guide is parsed study material. Raw is kept verbatim for export.
type Guide struct {
	Raw      string    `json:"-"`
	Sections []Section `json:"sections"`
}

var (
	reATX      = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`)
	reBoldLine = regexp.MustCompile(`^\*\*(.+?)\*\*:?$`)
	reNumbered = regexp.MustCompile(`^\d+[.)]\s*`)
)

// heading returns the normalized heading text of line and its ATX level
// (0 for a whole-line bold heading), if line is a heading.
func heading(line string) (string, int, bool) {
	var text string
	level := 0
	if m := reATX.FindStringSubmatch(line); m != nil {
		text, level = m[2], len(m[1])
	} else if m := reBoldLine.FindStringSubmatch(line); m != nil {
		text = m[1]
	} else {
		return "", 0, false
	}
	text = strings.Trim(text, "*_ ")
	text = reNumbered.ReplaceAllString(text, "")
	text = strings.TrimSuffix(strings.TrimSpace(text), ":")
	return text, level, text != ""
}

// Parse splits text at headings that name a known section. The first such
// ATX heading fixes the section level; deeper headings, and headings that
// classify as nothing, stay inside the current section's body. Text before the
// first known heading becomes an untitled Other section.
func Parse(text string) Guide {
	g := Guide{Raw: text}
	sectionLevel := 0

	var cur *Section
	var body []string
	flush := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if cur.Body != "" || cur.Kind != KindOther {
			if cur.Kind.itemized() {
				cur.Items = splitItems(cur.Body)
			}
			g.Sections = append(g.Sections, *cur)
		}
		cur, body = nil, nil
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if h, level, ok := heading(strings.TrimSpace(line)); ok {
			kind := Classify(h)
			if kind != KindOther && level > 0 {
				if sectionLevel == 0 {
					sectionLevel = level
				} else if level > sectionLevel {
					kind = KindOther
				}
			}
			if kind != KindOther {
				flush()
				cur = &Section{Kind: kind, Title: h}
				continue
			}
		}
		if cur == nil {
			cur = &Section{Kind: KindOther}
		}
		body = append(body, line)
	}
	flush()

	return g
}

// splitItems breaks a body into blank-line separated blocks.
func splitItems(body string) []string {
	var items []string
	var block []string
	emit := func() {
		if s := strings.TrimSpace(strings.Join(block, "\n")); s != "" {
			items = append(items, s)
		}
		block = nil
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			emit()
			continue
		}
		block = append(block, line)
	}
	emit()
	return items
}

// Section returns the first section of kind k.
func (g Guide) Section(k Kind) (Section, bool) {
	for _, s := range g.Sections {
		if s.Kind == k {
			return s, true
		}
	}
	return Section{}, false
}

// Missing lists the expected kinds the guide lacks.
func (g Guide) Missing() []Kind {
	var missing []Kind
	for _, k := range Expected {
		if _, ok := g.Section(k); !ok {
			missing = append(missing, k)
		}
	}
	return missing
}
