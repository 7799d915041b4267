package pagemodel

import "github.com/hazyhaar/pagecraft/idgen"

// Clone returns a deep copy of the model. Node ids are preserved, so the
// copy is interchangeable with the original; nothing is shared between the
// two trees.
func (m *PageModel) Clone() *PageModel {
	if m == nil {
		return nil
	}
	out := &PageModel{
		Version:      m.Version,
		GlobalStyles: m.GlobalStyles,
		Meta:         m.Meta,
	}
	if m.Nodes != nil {
		out.Nodes = make([]*PageNode, len(m.Nodes))
		for i, n := range m.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the subtree rooted at n, ids preserved.
func (n *PageNode) Clone() *PageNode {
	if n == nil {
		return nil
	}
	out := &PageNode{
		ID:           n.ID,
		Tag:          n.Tag,
		TextContent:  n.TextContent,
		ComponentRef: n.ComponentRef,
	}
	if n.Attributes != nil {
		out.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			out.Attributes[k] = v
		}
	}
	if n.ClassNames != nil {
		out.ClassNames = append([]string(nil), n.ClassNames...)
	}
	if n.InlineStyles != nil {
		out.InlineStyles = make(map[string]string, len(n.InlineStyles))
		for k, v := range n.InlineStyles {
			out.InlineStyles[k] = v
		}
	}
	if n.Children != nil {
		out.Children = make([]*PageNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Instantiate deep-copies the subtree rooted at n and mints a fresh id for
// every copied node. ComponentRef values are preserved: they identify the
// template a node came from, never the node itself. This is the copy/paste
// and component-instantiation path, as opposed to move, which keeps ids.
func (n *PageNode) Instantiate(newID idgen.Generator) *PageNode {
	if newID == nil {
		newID = idgen.NodeID()
	}
	out := n.Clone()
	remint(out, newID)
	return out
}

func remint(n *PageNode, newID idgen.Generator) {
	n.ID = newID()
	for _, c := range n.Children {
		remint(c, newID)
	}
}
