// Package render serialises a PageModel to markup. Rendering is a pure
// function of the model: no I/O, no shared state, and byte-identical output
// for equal inputs — previews and deploys of the same model never diverge.
package render

import (
	"html"
	"sort"
	"strings"

	"github.com/hazyhaar/pagecraft/pagemodel"
)

// breakpointCSS is the fixed responsive rule set emitted in every document
// head, ahead of the page's own global styles.
const breakpointCSS = `*{box-sizing:border-box;margin:0}
img{max-width:100%;height:auto}
@media (max-width: 1024px){.pc-desktop{display:none}}
@media (max-width: 640px){.pc-tablet{display:none}}
@media (min-width: 641px){.pc-mobile{display:none}}`

// Body serialises the model's node tree to markup, depth-first, with no
// separators between siblings.
func Body(m *pagemodel.PageModel) string {
	var sb strings.Builder
	for _, n := range m.Nodes {
		writeNode(&sb, n)
	}
	return sb.String()
}

// Document wraps Body in a full HTML document: doctype, head with charset,
// viewport, page metadata, the fixed breakpoint rules, and the model's
// GlobalStyles. GlobalStyles is author-controlled CSS and is injected
// verbatim, not escaped.
func Document(m *pagemodel.PageModel) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString(`<meta charset="utf-8">` + "\n")
	sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	if m.Meta.Title != "" {
		sb.WriteString("<title>" + html.EscapeString(m.Meta.Title) + "</title>\n")
	}
	if m.Meta.Description != "" {
		sb.WriteString(`<meta name="description" content="` + html.EscapeString(m.Meta.Description) + "\">\n")
	}
	sb.WriteString("<style>\n" + breakpointCSS + "\n")
	if m.GlobalStyles != "" {
		sb.WriteString(m.GlobalStyles + "\n")
	}
	sb.WriteString("</style>\n</head>\n<body>")
	sb.WriteString(Body(m))
	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

func writeNode(sb *strings.Builder, n *pagemodel.PageNode) {
	switch n.Kind() {
	case pagemodel.KindText:
		// The only place user-authored text reaches output. Escaping here
		// is what makes markup injection impossible.
		sb.WriteString(html.EscapeString(n.TextContent))

	case pagemodel.KindVoid:
		writeOpenTag(sb, n)
		// Children and TextContent on a void node are intentionally
		// dropped from output.

	case pagemodel.KindElement:
		writeOpenTag(sb, n)
		if len(n.Children) > 0 {
			for _, c := range n.Children {
				writeNode(sb, c)
			}
		} else {
			sb.WriteString(html.EscapeString(n.TextContent))
		}
		sb.WriteString("</" + n.Tag + ">")
	}
}

// writeOpenTag emits <tag class=... attrs... style=...>. Attribute and
// style keys are sorted so output is stable across runs.
func writeOpenTag(sb *strings.Builder, n *pagemodel.PageNode) {
	sb.WriteString("<" + n.Tag)

	if len(n.ClassNames) > 0 {
		sb.WriteString(` class="` + html.EscapeString(strings.Join(n.ClassNames, " ")) + `"`)
	}

	if len(n.Attributes) > 0 {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			if k == "class" || k == "style" {
				// class and style are owned by ClassNames/InlineStyles;
				// a raw attribute under either name is not emitted twice.
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(" " + k + `="` + html.EscapeString(n.Attributes[k]) + `"`)
		}
	}

	if len(n.InlineStyles) > 0 {
		keys := make([]string, 0, len(n.InlineStyles))
		for k := range n.InlineStyles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, k+": "+n.InlineStyles[k])
		}
		sb.WriteString(` style="` + html.EscapeString(strings.Join(pairs, "; ")) + `"`)
	}

	sb.WriteString(">")
}
