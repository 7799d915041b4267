package htmlimport

import (
	"testing"

	"github.com/hazyhaar/pagecraft/pagemodel"
)

func TestImport_Basic(t *testing.T) {
	im := New(nil)
	m, err := im.Import(`<html><head><title>  Old Page </title></head>
<body><div class="hero wide" style="color: red; margin: 0"><p>hello</p></div></body></html>`)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	if m.Version != pagemodel.CurrentVersion {
		t.Errorf("version: got %q, want %q", m.Version, pagemodel.CurrentVersion)
	}
	if m.Meta.Title != "Old Page" {
		t.Errorf("title: got %q, want %q", m.Meta.Title, "Old Page")
	}
	if err := pagemodel.Validate(m); err != nil {
		t.Fatalf("imported model invalid: %v", err)
	}

	if len(m.Nodes) != 1 {
		t.Fatalf("root nodes: got %d, want 1", len(m.Nodes))
	}
	div := m.Nodes[0]
	if div.Tag != "div" {
		t.Fatalf("tag: got %q, want div", div.Tag)
	}
	if len(div.ClassNames) != 2 || div.ClassNames[0] != "hero" || div.ClassNames[1] != "wide" {
		t.Errorf("ClassNames: got %v", div.ClassNames)
	}
	if div.InlineStyles["color"] != "red" || div.InlineStyles["margin"] != "0" {
		t.Errorf("InlineStyles: got %v", div.InlineStyles)
	}
	if len(div.Children) != 1 || div.Children[0].Tag != "p" {
		t.Fatalf("children: %+v", div.Children)
	}
	p := div.Children[0]
	if len(p.Children) != 1 || p.Children[0].Tag != pagemodel.TagText || p.Children[0].TextContent != "hello" {
		t.Errorf("text node: %+v", p.Children)
	}
}

func TestImport_StripsScripts(t *testing.T) {
	im := New(nil)
	m, err := im.Import(`<body><p onclick="evil()">ok</p><script>alert(1)</script><iframe src="x"></iframe></body>`)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	var walk func([]*pagemodel.PageNode)
	walk = func(nodes []*pagemodel.PageNode) {
		for _, n := range nodes {
			if n.Tag == "script" || n.Tag == "iframe" {
				t.Errorf("dangerous tag survived import: %s", n.Tag)
			}
			for k := range n.Attributes {
				if k == "onclick" {
					t.Error("event handler attribute survived import")
				}
			}
			walk(n.Children)
		}
	}
	walk(m.Nodes)

	if m.FindNode("") != nil {
		t.Error("node with empty id")
	}
	if len(m.Nodes) == 0 {
		t.Fatal("content lost entirely")
	}
}

func TestImport_DropsLegacyIDs(t *testing.T) {
	im := New(nil)
	m, err := im.Import(`<body><div id="legacy-dom-id" data-x="1">x</div></body>`)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(m.Nodes) != 1 {
		t.Fatalf("root nodes: got %d, want 1", len(m.Nodes))
	}
	div := m.Nodes[0]
	if div.ID == "legacy-dom-id" {
		t.Error("legacy DOM id kept as node id")
	}
	if _, ok := div.Attributes["id"]; ok {
		t.Error("legacy id kept as attribute")
	}
	if div.Attributes["data-x"] != "1" {
		t.Errorf("data attribute lost: %v", div.Attributes)
	}
}

func TestImport_SkipsWhitespaceText(t *testing.T) {
	im := New(nil)
	m, err := im.Import("<body><div>\n\t  \n</div></body>")
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(m.Nodes) != 1 {
		t.Fatalf("root nodes: got %d, want 1", len(m.Nodes))
	}
	if len(m.Nodes[0].Children) != 0 {
		t.Errorf("whitespace-only text kept: %+v", m.Nodes[0].Children)
	}
}

func TestImport_FreshUniqueIDs(t *testing.T) {
	im := New(nil)
	m, err := im.Import(`<body><div><span>a</span><span>b</span></div></body>`)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if err := pagemodel.Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestParseInlineStyle(t *testing.T) {
	got := parseInlineStyle("color: red; ; margin:0 ;broken")
	if len(got) != 2 || got["color"] != "red" || got["margin"] != "0" {
		t.Errorf("parseInlineStyle: got %v", got)
	}
	if parseInlineStyle("") != nil {
		t.Error("empty style should yield nil")
	}
}
