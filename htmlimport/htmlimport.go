// Package htmlimport converts raw legacy HTML into a PageModel at the
// current version. It is the migration path behind ErrUnsupportedVersion:
// content in a format this build no longer reads is re-imported from its
// rendered markup rather than upgraded in place.
//
// Input is sanitized before parsing. Import is the one place markup of
// unknown provenance enters the system, so script/iframe/event-handler
// content is stripped up front; the renderer's text escaping then covers
// everything that survives as text.
package htmlimport

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/pagecraft/idgen"
	"github.com/hazyhaar/pagecraft/pagemodel"
)

// Importer converts HTML documents or fragments to page models.
type Importer struct {
	policy *bluemonday.Policy
	newID  idgen.Generator
}

// New creates an Importer. A nil generator falls back to the node id
// strategy.
func New(newID idgen.Generator) *Importer {
	if newID == nil {
		newID = idgen.NodeID()
	}
	p := bluemonday.UGCPolicy()
	// Presentation and data-* survive the import; ids do not (fresh ones
	// are minted).
	p.AllowAttrs("class", "style").Globally()
	p.AllowDataAttributes()
	p.AllowElements("section", "article", "header", "footer", "nav", "main",
		"figure", "figcaption", "span", "div")
	return &Importer{policy: p, newID: newID}
}

// Import parses src and returns a PageModel at the current version with
// fresh ids throughout. The document title, when present, becomes the
// model's Meta.Title.
func (im *Importer) Import(src string) (*pagemodel.PageModel, error) {
	title := extractTitle(src)

	doc, err := html.Parse(strings.NewReader(im.policy.Sanitize(src)))
	if err != nil {
		return nil, err
	}

	m := pagemodel.NewModel(title)
	body := findBody(doc)
	if body != nil {
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if n := im.convert(c); n != nil {
				m.Nodes = append(m.Nodes, n)
			}
		}
	}
	return m, nil
}

func (im *Importer) convert(n *html.Node) *pagemodel.PageNode {
	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text == "" {
			return nil
		}
		return &pagemodel.PageNode{
			ID:          im.newID(),
			Tag:         pagemodel.TagText,
			TextContent: text,
		}

	case html.ElementNode:
		node := &pagemodel.PageNode{
			ID:  im.newID(),
			Tag: n.Data,
		}
		for _, a := range n.Attr {
			switch a.Key {
			case "class":
				node.ClassNames = strings.Fields(a.Val)
			case "style":
				node.InlineStyles = parseInlineStyle(a.Val)
			case "id":
				// Legacy DOM ids are not stable identifiers here; dropped.
			default:
				if node.Attributes == nil {
					node.Attributes = make(map[string]string)
				}
				node.Attributes[a.Key] = a.Val
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := im.convert(c); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node
	}
	return nil
}

// parseInlineStyle splits "prop: value; prop: value" declarations.
func parseInlineStyle(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// extractTitle parses src separately for the <title> text: sanitization
// strips the head, so the title has to be read before cleaning.
func extractTitle(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}
	return findTitle(doc)
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
