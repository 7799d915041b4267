// Package pagemodel defines the serializable tree representation of an
// editable page and the copy-on-write mutation operations over it.
//
// These types are the public wire contract: the store persists the JSON
// form of PageModel, and any consumer (renderer, import/export pipelines)
// works against this package.
package pagemodel

// Version tags the serialized model format. The renderer and the mutators
// only understand the current version; anything else is rejected at the
// load boundary and must go through re-import.
type Version string

// CurrentVersion is the only version this build reads and writes.
const CurrentVersion Version = "v1"

// TagText is the sentinel tag marking a text node. A text node carries its
// payload in TextContent and never has children.
const TagText = "text"

// Meta is the title/description pair attached to a page for serialization
// metadata (document head, listings).
type Meta struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// PageModel is the full tree-plus-metadata representation of one page.
type PageModel struct {
	Version      Version     `json:"version"`
	Nodes        []*PageNode `json:"nodes"`
	GlobalStyles string      `json:"global_styles,omitempty"`
	Meta         Meta        `json:"meta"`
}

// PageNode is a single element or text unit within the page tree.
//
// Ownership is strictly parent → child: a node appears exactly once in the
// structure and holds no back-references, so the graph is acyclic by
// construction. ID is assigned once at creation and is the sole means of
// addressing a node for mutation.
type PageNode struct {
	ID           string            `json:"id"`
	Tag          string            `json:"tag"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	ClassNames   []string          `json:"class_names,omitempty"`
	InlineStyles map[string]string `json:"inline_styles,omitempty"`
	TextContent  string            `json:"text_content,omitempty"`
	Children     []*PageNode       `json:"children,omitempty"`

	// ComponentRef identifies the saved component this node was instantiated
	// from. It names the template, not the node: instances always carry
	// fresh ids of their own.
	ComponentRef string `json:"component_ref,omitempty"`
}

// NodeKind classifies a node for rendering.
type NodeKind int

const (
	// KindText emits escaped TextContent and nothing else.
	KindText NodeKind = iota
	// KindElement emits an open tag, children (or TextContent fallback),
	// and a closing tag.
	KindElement
	// KindVoid emits an open tag only. Children and TextContent on a void
	// node are intentionally not rendered.
	KindVoid
)

// voidTags is the fixed set of element kinds rendered without a body or
// closing tag.
var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Kind returns the render classification of the node. An empty tag is
// treated as text, matching the sentinel convention.
func (n *PageNode) Kind() NodeKind {
	switch {
	case n.Tag == TagText || n.Tag == "":
		return KindText
	case voidTags[n.Tag]:
		return KindVoid
	default:
		return KindElement
	}
}

// IsVoidTag reports whether tag is in the fixed self-closing set.
func IsVoidTag(tag string) bool { return voidTags[tag] }

// NewModel returns an empty page model at the current version.
func NewModel(title string) *PageModel {
	return &PageModel{
		Version: CurrentVersion,
		Meta:    Meta{Title: title},
	}
}
