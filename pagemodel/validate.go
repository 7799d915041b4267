package pagemodel

import "fmt"

// CheckVersion rejects models whose version this build does not understand.
// Called at the load boundary; a mixed-version tree cannot exist because
// version lives only on the model root.
func CheckVersion(m *PageModel) error {
	if m.Version != CurrentVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, m.Version)
	}
	return nil
}

// Validate checks the structural invariants of the model: version is
// understood, every node has a non-empty id, and ids are unique across the
// whole tree. The tree shape itself (single parent, no cycles) is guaranteed
// by construction — children are owned by value and the mutators never
// alias subtrees.
func Validate(m *PageModel) error {
	if err := CheckVersion(m); err != nil {
		return err
	}
	seen := make(map[string]struct{})
	for _, n := range m.Nodes {
		if err := validateNode(n, seen); err != nil {
			return err
		}
	}
	return nil
}

func validateNode(n *PageNode, seen map[string]struct{}) error {
	if n.ID == "" {
		return fmt.Errorf("pagemodel: node with empty id (tag %q)", n.Tag)
	}
	if _, ok := seen[n.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}
	seen[n.ID] = struct{}{}
	for _, c := range n.Children {
		if err := validateNode(c, seen); err != nil {
			return err
		}
	}
	return nil
}

// CollectIDs returns the set of all node ids in the model.
func CollectIDs(m *PageModel) map[string]struct{} {
	ids := make(map[string]struct{})
	var walk func(*PageNode)
	walk = func(n *PageNode) {
		ids[n.ID] = struct{}{}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range m.Nodes {
		walk(n)
	}
	return ids
}

// FindNode returns the node with the given id, or nil if absent.
func (m *PageModel) FindNode(id string) *PageNode {
	var found *PageNode
	var walk func(*PageNode)
	walk = func(n *PageNode) {
		if found != nil {
			return
		}
		if n.ID == id {
			found = n
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range m.Nodes {
		walk(n)
		if found != nil {
			break
		}
	}
	return found
}

// NodeCount returns the total number of nodes in the model.
func (m *PageModel) NodeCount() int {
	count := 0
	var walk func(*PageNode)
	walk = func(n *PageNode) {
		count++
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range m.Nodes {
		walk(n)
	}
	return count
}
