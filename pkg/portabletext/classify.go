package portabletext

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// Tunable thresholds for IsMarkupLike. They are heuristics, not correctness
// properties.
const (
	// MarkupRatioThreshold is the minimum share of non-blank lines that must
	// look like markup.
	MarkupRatioThreshold = 0.6
	// MultiLineMinMatches is the number of markup lines that is enough on its
	// own once the text spans more than one non-blank line.
	MultiLineMinMatches = 1
)

// Classifier decides whether a block of plain text should be shown as code.
type Classifier func(text string) bool

var (
	lineBreak = regexp.MustCompile(`\r?\n`)
	tagOpen   = regexp.MustCompile(`^</?[\w:-]`)
	tagClose  = regexp.MustCompile(`/?>$`)

	// A whole tag with optional attributes, not followed by a stray '>' before
	// the next '<'. RE2 has no lookahead, hence regexp2.
	inlineTag = regexp2.MustCompile(
		`</?[\w:-]+(?:\s+[\w:-]+=(?:"[^"]*"|'[^']*'|[^\s>]+))*\s*/?>(?![^<]*>)`,
		regexp2.ECMAScript,
	)
)

// IsMarkupLine reports whether a single line looks like an XML/HTML tag or
// comment.
func IsMarkupLine(line string) bool {
	l := strings.TrimSpace(line)
	if l == "" {
		return false
	}
	if strings.HasPrefix(l, "<!--") || strings.HasSuffix(l, "-->") {
		return true
	}
	if tagOpen.MatchString(l) && tagClose.MatchString(l) {
		return true
	}
	return HasInlineTag(l)
}

// HasInlineTag reports whether text contains a tag-shaped fragment anywhere.
func HasInlineTag(text string) bool {
	ok, err := inlineTag.MatchString(text)
	return err == nil && ok
}

// IsMarkupLike is the default Classifier. Blank text is never markup-like.
func IsMarkupLike(text string) bool {
	var lines []string
	for _, l := range lineBreak.Split(text, -1) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return false
	}

	matches := 0
	for _, l := range lines {
		if IsMarkupLine(l) {
			matches++
		}
	}

	ratio := float64(matches) / float64(len(lines))
	return ratio >= MarkupRatioThreshold || (len(lines) > 1 && matches >= MultiLineMinMatches)
}
