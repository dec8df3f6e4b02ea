package portabletext

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle matches the dark theme used on the site.
const DefaultHighlightStyle = "github-dark"

// ImageURLFunc turns an image reference into a public URL. An empty result
// drops the image.
type ImageURLFunc func(img *ImageRef) string

// Renderer converts a Body into HTML.
type Renderer struct {
	ImageURL  ImageURLFunc
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewRenderer builds a Renderer. imageURL may be nil, in which case images
// are skipped.
func NewRenderer(imageURL ImageURLFunc) *Renderer {
	style := styles.Get(DefaultHighlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	return &Renderer{
		ImageURL:  imageURL,
		style:     style,
		formatter: chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(2)),
	}
}

var headingStyles = map[string]string{
	"h1": "h1", "h2": "h2", "h3": "h3", "h4": "h4", "h5": "h5", "h6": "h6",
}

// Render writes the HTML for every node in order. List items that follow each
// other are grouped into a single list element.
func (r *Renderer) Render(nodes []Node) (string, error) {
	var sb strings.Builder
	openList := ""

	closeList := func() {
		if openList != "" {
			sb.WriteString("</" + openList + ">")
			openList = ""
		}
	}

	for _, node := range nodes {
		switch n := node.(type) {
		case *TextBlock:
			if n.ListItem != "" {
				tag := "ul"
				if n.ListItem == "number" {
					tag = "ol"
				}
				if openList != tag {
					closeList()
					sb.WriteString("<" + tag + ">")
					openList = tag
				}
				sb.WriteString("<li>")
				sb.WriteString(renderSpans(n))
				sb.WriteString("</li>")
				continue
			}
			closeList()
			sb.WriteString(renderTextBlock(n))
		case *CodeBlock:
			closeList()
			out, err := r.Highlight(n.Code, n.Language)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
		case *ImageRef:
			closeList()
			if r.ImageURL == nil {
				continue
			}
			src := r.ImageURL(n)
			if src == "" {
				continue
			}
			alt := n.Alt
			if alt == "" {
				alt = "Image"
			}
			fmt.Fprintf(&sb, `<img src="%s" alt="%s" class="my-6 rounded-lg" loading="lazy">`,
				html.EscapeString(src), html.EscapeString(alt))
		default:
			closeList()
		}
	}
	closeList()
	return sb.String(), nil
}

// Highlight renders code as a highlighted <pre> block.
func (r *Renderer) Highlight(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenise %s code: %w", language, err)
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return "", fmt.Errorf("format %s code: %w", language, err)
	}
	return buf.String(), nil
}

func renderTextBlock(b *TextBlock) string {
	inner := renderSpans(b)
	if tag, ok := headingStyles[b.Style]; ok {
		return "<" + tag + ">" + inner + "</" + tag + ">"
	}
	if b.Style == "blockquote" {
		return "<blockquote>" + inner + "</blockquote>"
	}
	return `<p class="whitespace-pre-wrap">` + inner + "</p>"
}

var decoratorTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

func renderSpans(b *TextBlock) string {
	defs := make(map[string]MarkDef, len(b.MarkDefs))
	for _, d := range b.MarkDefs {
		defs[d.Key] = d
	}

	var sb strings.Builder
	for _, span := range b.Children {
		text := html.EscapeString(span.Text)
		for _, mark := range span.Marks {
			if tag, ok := decoratorTags[mark]; ok {
				text = "<" + tag + ">" + text + "</" + tag + ">"
				continue
			}
			if def, ok := defs[mark]; ok && def.Type == "link" && safeHref(def.Href) {
				text = fmt.Sprintf(`<a href="%s" rel="noopener noreferrer">%s</a>`, html.EscapeString(def.Href), text)
			}
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func safeHref(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(h, "https://") || strings.HasPrefix(h, "http://") ||
		strings.HasPrefix(h, "mailto:") || strings.HasPrefix(h, "/")
}
