// Package portabletext models rich-text documents as delivered by the content
// store (Portable Text), and turns them into display-ready form.
package portabletext

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node types as they appear in the `_type` discriminator.
const (
	TypeBlock = "block"
	TypeCode  = "code"
	TypeImage = "image"
	TypeSpan  = "span"
)

// StyleNormal is the default paragraph style. An empty style means the same.
const StyleNormal = "normal"

// Node is one top-level element of a Body.
type Node interface {
	NodeType() string
}

// Span is an inline run of text inside a TextBlock.
type Span struct {
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef is an annotation referenced from Span.Marks (links, mostly).
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// TextBlock is a paragraph, heading, quote or list item.
type TextBlock struct {
	Key      string    `json:"_key,omitempty"`
	Style    string    `json:"style,omitempty"`
	Children []Span    `json:"children"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
}

func (*TextBlock) NodeType() string { return TypeBlock }

// IsNormal reports whether the block uses default paragraph styling.
func (b *TextBlock) IsNormal() bool {
	return b.Style == "" || b.Style == StyleNormal
}

// CodeBlock holds literal code with a language tag.
type CodeBlock struct {
	Key      string `json:"_key,omitempty"`
	Language string `json:"language,omitempty"`
	Code     string `json:"code"`
}

func (*CodeBlock) NodeType() string { return TypeCode }

// AssetRef points at an uploaded asset by its opaque identifier.
type AssetRef struct {
	Ref string `json:"_ref"`
}

// ImageRef references an image asset.
type ImageRef struct {
	Key   string   `json:"_key,omitempty"`
	Asset AssetRef `json:"asset"`
	Alt   string   `json:"alt,omitempty"`
}

func (*ImageRef) NodeType() string { return TypeImage }

// RawNode carries any node kind this package does not model. It is passed
// through untouched.
type RawNode struct {
	Type string
	Data json.RawMessage
}

func (n *RawNode) NodeType() string { return n.Type }

// PlainText concatenates the text of every span in the block.
func PlainText(b *TextBlock) string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, s := range b.Children {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// NewTextBlock builds a normal paragraph with a single span. Handy for
// fixtures and synthesized content.
func NewTextBlock(text string) *TextBlock {
	return &TextBlock{
		Style:    StyleNormal,
		Children: []Span{{Text: text}},
	}
}

func (s Span) MarshalJSON() ([]byte, error) {
	type alias Span
	return json.Marshal(struct {
		Type string `json:"_type"`
		alias
	}{TypeSpan, alias(s)})
}

func (b *TextBlock) MarshalJSON() ([]byte, error) {
	type alias TextBlock
	return json.Marshal(struct {
		Type string `json:"_type"`
		*alias
	}{TypeBlock, (*alias)(b)})
}

func (b *CodeBlock) MarshalJSON() ([]byte, error) {
	type alias CodeBlock
	return json.Marshal(struct {
		Type string `json:"_type"`
		*alias
	}{TypeCode, (*alias)(b)})
}

func (b *ImageRef) MarshalJSON() ([]byte, error) {
	type alias ImageRef
	return json.Marshal(struct {
		Type string `json:"_type"`
		*alias
	}{TypeImage, (*alias)(b)})
}

func (n *RawNode) MarshalJSON() ([]byte, error) {
	if len(n.Data) == 0 {
		return json.Marshal(map[string]string{"_type": n.Type})
	}
	return n.Data, nil
}

// Body is an ordered list of nodes.
type Body []Node

// UnmarshalJSON decodes each element according to its `_type`.
func (b *Body) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(Body, 0, len(raws))
	for i, raw := range raws {
		node, err := decodeNode(raw)
		if err != nil {
			return fmt.Errorf("portabletext: node %d: %w", i, err)
		}
		out = append(out, node)
	}
	*b = out
	return nil
}

func decodeNode(raw json.RawMessage) (Node, error) {
	var head struct {
		Type string `json:"_type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case TypeBlock:
		var b TextBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return &b, nil
	case TypeCode:
		var c CodeBlock
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		return &c, nil
	case TypeImage:
		var img ImageRef
		if err := json.Unmarshal(raw, &img); err != nil {
			return nil, err
		}
		return &img, nil
	default:
		data := make(json.RawMessage, len(raw))
		copy(data, raw)
		return &RawNode{Type: head.Type, Data: data}, nil
	}
}
