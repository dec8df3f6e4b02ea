package portabletext

import "strings"

// DefaultCodeLanguage is the language tag given to synthesized code blocks.
const DefaultCodeLanguage = "xml"

// Formatter merges runs of markup-looking paragraphs into code blocks.
//
// Content editors tend to paste XML or HTML snippets line by line, which the
// store saves as one paragraph per line. Formatter folds such a run back into
// a single CodeBlock, keeping blank paragraphs inside the run as empty lines.
type Formatter struct {
	Classify Classifier
	Language string
}

// NewFormatter returns a Formatter using IsMarkupLike and DefaultCodeLanguage.
func NewFormatter() *Formatter {
	return &Formatter{
		Classify: IsMarkupLike,
		Language: DefaultCodeLanguage,
	}
}

// Reconcile runs the default Formatter over nodes.
func Reconcile(nodes []Node) []Node {
	return NewFormatter().Reconcile(nodes)
}

// Reconcile returns a new node list. The input is not modified, node order
// is preserved, and only normal-style text blocks can be absorbed.
func (f *Formatter) Reconcile(nodes []Node) []Node {
	classify := f.Classify
	if classify == nil {
		classify = IsMarkupLike
	}
	lang := f.Language
	if lang == "" {
		lang = DefaultCodeLanguage
	}

	out := make([]Node, 0, len(nodes))
	var buf []string
	inRun := false

	flush := func() {
		if len(buf) > 0 {
			out = append(out, &CodeBlock{Language: lang, Code: strings.Join(buf, "\n")})
		}
		buf = nil
		inRun = false
	}

	for _, node := range nodes {
		block, ok := node.(*TextBlock)
		if !ok || block == nil || !block.IsNormal() {
			if inRun {
				flush()
			}
			out = append(out, node)
			continue
		}

		text := PlainText(block)
		blank := strings.TrimSpace(text) == ""
		markup := classify(text)

		if inRun {
			if markup || blank {
				buf = append(buf, text)
				continue
			}
			flush()
			out = append(out, node)
			continue
		}

		if markup {
			inRun = true
			buf = append(buf, text)
			continue
		}
		out = append(out, node)
	}

	if inRun {
		flush()
	}
	return out
}
