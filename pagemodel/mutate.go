package pagemodel

import (
	"fmt"

	"github.com/hazyhaar/pagecraft/idgen"
)

// Unset is the sentinel patch value that removes a key instead of setting
// it. It contains a NUL byte so it can never collide with a real attribute
// or style value.
const Unset = "\x00unset"

// AttrPatch describes a shallow merge into a node's attributes, inline
// styles and class list. Attributes and InlineStyles merge key by key, with
// Unset deleting; a non-nil ClassNames replaces the class list wholesale
// (it is an ordered set, so partial merges have no sensible meaning).
type AttrPatch struct {
	Attributes   map[string]string `json:"attributes,omitempty"`
	InlineStyles map[string]string `json:"inline_styles,omitempty"`
	ClassNames   []string          `json:"class_names,omitempty"`
}

// Mutator produces new models from edit operations. Every operation is
// copy-on-write: the input model is never touched, and on error it is
// returned unchanged alongside the error — there is no partial application.
type Mutator struct {
	newID idgen.Generator
}

// NewMutator creates a Mutator. A nil generator falls back to the node id
// strategy.
func NewMutator(newID idgen.Generator) *Mutator {
	if newID == nil {
		newID = idgen.NodeID()
	}
	return &Mutator{newID: newID}
}

// Insert adds node (and its subtree) as a child of parentID at pos, or at
// the root level when parentID is empty. pos < 0 appends. Nodes arriving
// without an id are minted one; caller-supplied ids are kept (this is what
// lets redo re-insert a node under its original id) but rejected with
// ErrDuplicateID if they collide with the tree.
//
// Returns the new model and the id of the inserted root node.
func (mu *Mutator) Insert(m *PageModel, parentID string, node *PageNode, pos int) (*PageModel, string, error) {
	if node == nil {
		return m, "", fmt.Errorf("pagemodel: insert of nil node")
	}

	next := m.Clone()
	n := node.Clone()
	mintMissing(n, mu.newID)

	ids := CollectIDs(next)
	if err := checkFresh(n, ids); err != nil {
		return m, "", err
	}

	if parentID == "" {
		next.Nodes = insertAt(next.Nodes, n, pos)
		return next, n.ID, nil
	}
	parent := next.FindNode(parentID)
	if parent == nil {
		return m, "", fmt.Errorf("%w: %s", ErrNodeNotFound, parentID)
	}
	parent.Children = insertAt(parent.Children, n, pos)
	return next, n.ID, nil
}

// Remove deletes the subtree rooted at nodeID from wherever it occurs.
func (mu *Mutator) Remove(m *PageModel, nodeID string) (*PageModel, error) {
	next := m.Clone()
	if _, ok := detach(next, nodeID); !ok {
		return m, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	return next, nil
}

// UpdateAttributes shallow-merges patch into the node identified by nodeID.
func (mu *Mutator) UpdateAttributes(m *PageModel, nodeID string, patch AttrPatch) (*PageModel, error) {
	next := m.Clone()
	n := next.FindNode(nodeID)
	if n == nil {
		return m, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}

	for k, v := range patch.Attributes {
		if v == Unset {
			delete(n.Attributes, k)
			continue
		}
		if n.Attributes == nil {
			n.Attributes = make(map[string]string)
		}
		n.Attributes[k] = v
	}
	for k, v := range patch.InlineStyles {
		if v == Unset {
			delete(n.InlineStyles, k)
			continue
		}
		if n.InlineStyles == nil {
			n.InlineStyles = make(map[string]string)
		}
		n.InlineStyles[k] = v
	}
	if patch.ClassNames != nil {
		n.ClassNames = dedupeClasses(patch.ClassNames)
	}
	return next, nil
}

// Move detaches the subtree rooted at nodeID and re-attaches it under
// newParentID (root level when empty) at pos. All ids in the subtree are
// preserved — this is what distinguishes move from copy/paste, which mints
// fresh ids via Instantiate.
//
// Moving a node underneath its own subtree fails with ErrNodeNotFound: the
// subtree is detached first, so the target parent is no longer reachable.
func (mu *Mutator) Move(m *PageModel, nodeID, newParentID string, pos int) (*PageModel, error) {
	next := m.Clone()
	node, ok := detach(next, nodeID)
	if !ok {
		return m, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	if newParentID == "" {
		next.Nodes = insertAt(next.Nodes, node, pos)
		return next, nil
	}
	parent := next.FindNode(newParentID)
	if parent == nil {
		return m, fmt.Errorf("%w: %s", ErrNodeNotFound, newParentID)
	}
	parent.Children = insertAt(parent.Children, node, pos)
	return next, nil
}

func mintMissing(n *PageNode, newID idgen.Generator) {
	if n.ID == "" {
		n.ID = newID()
	}
	for _, c := range n.Children {
		mintMissing(c, newID)
	}
}

// checkFresh verifies that no id in the subtree rooted at n already exists
// in ids, and that the subtree itself carries no internal duplicates.
func checkFresh(n *PageNode, ids map[string]struct{}) error {
	if _, ok := ids[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	ids[n.ID] = struct{}{}
	for _, c := range n.Children {
		if err := checkFresh(c, ids); err != nil {
			return err
		}
	}
	return nil
}

// insertAt inserts n into siblings at pos. pos < 0 or past the end appends.
func insertAt(siblings []*PageNode, n *PageNode, pos int) []*PageNode {
	if pos < 0 || pos >= len(siblings) {
		return append(siblings, n)
	}
	siblings = append(siblings, nil)
	copy(siblings[pos+1:], siblings[pos:])
	siblings[pos] = n
	return siblings
}

// detach removes the subtree rooted at id from the model and returns it.
func detach(m *PageModel, id string) (*PageNode, bool) {
	if node, rest, ok := detachFrom(m.Nodes, id); ok {
		m.Nodes = rest
		return node, true
	}
	return nil, false
}

func detachFrom(siblings []*PageNode, id string) (*PageNode, []*PageNode, bool) {
	for i, n := range siblings {
		if n.ID == id {
			rest := append(siblings[:i:i], siblings[i+1:]...)
			return n, rest, true
		}
		if node, kids, ok := detachFrom(n.Children, id); ok {
			n.Children = kids
			return node, siblings, true
		}
	}
	return nil, nil, false
}

func dedupeClasses(classes []string) []string {
	seen := make(map[string]struct{}, len(classes))
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
