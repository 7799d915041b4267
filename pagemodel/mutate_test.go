package pagemodel

import (
	"errors"
	"testing"
)

// testModel builds:
//
//	section#root
//	  div#left
//	    text#t1 "hello"
//	  div#right
func testModel() *PageModel {
	m := NewModel("test")
	m.Nodes = []*PageNode{
		{
			ID:  "root",
			Tag: "section",
			Children: []*PageNode{
				{
					ID:  "left",
					Tag: "div",
					Children: []*PageNode{
						{ID: "t1", Tag: TagText, TextContent: "hello"},
					},
				},
				{ID: "right", Tag: "div"},
			},
		},
	}
	return m
}

func TestInsert_MintsIDWhenEmpty(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	next, id, err := mu.Insert(m, "right", &PageNode{Tag: "p"}, -1)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == "" {
		t.Fatal("Insert: minted id is empty")
	}
	if next.FindNode(id) == nil {
		t.Errorf("inserted node %s not reachable in new model", id)
	}
	if m.FindNode(id) != nil {
		t.Errorf("inserted node %s leaked into the input model", id)
	}
}

func TestInsert_KeepsCallerID(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	next, id, err := mu.Insert(m, "right", &PageNode{ID: "mine", Tag: "p"}, -1)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id != "mine" {
		t.Errorf("id: got %q, want %q", id, "mine")
	}
	if next.FindNode("mine") == nil {
		t.Error("node with caller id not found")
	}
}

func TestInsert_DuplicateID(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	_, _, err := mu.Insert(m, "right", &PageNode{ID: "left", Tag: "p"}, -1)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Insert duplicate: got %v, want ErrDuplicateID", err)
	}
	if got := m.NodeCount(); got != 4 {
		t.Errorf("input model changed on error: %d nodes, want 4", got)
	}
}

func TestInsert_DuplicateInSubtree(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	// The duplicate is buried in a child of the inserted subtree.
	node := &PageNode{Tag: "div", Children: []*PageNode{{ID: "t1", Tag: "p"}}}
	_, _, err := mu.Insert(m, "right", node, -1)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Insert: got %v, want ErrDuplicateID", err)
	}
}

func TestInsert_ParentNotFound(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	_, _, err := mu.Insert(m, "ghost", &PageNode{Tag: "p"}, -1)
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Insert: got %v, want ErrNodeNotFound", err)
	}
}

func TestInsert_AtPosition(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	next, id, err := mu.Insert(m, "root", &PageNode{Tag: "p"}, 1)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	kids := next.FindNode("root").Children
	if len(kids) != 3 {
		t.Fatalf("children: got %d, want 3", len(kids))
	}
	if kids[1].ID != id {
		t.Errorf("position 1: got %s, want %s", kids[1].ID, id)
	}
	if kids[0].ID != "left" || kids[2].ID != "right" {
		t.Errorf("siblings disturbed: %s, %s", kids[0].ID, kids[2].ID)
	}
}

func TestInsert_PositionPastEndAppends(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	next, id, err := mu.Insert(m, "root", &PageNode{Tag: "p"}, 99)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	kids := next.FindNode("root").Children
	if kids[len(kids)-1].ID != id {
		t.Errorf("expected append, last child is %s", kids[len(kids)-1].ID)
	}
}

func TestInsert_RootLevel(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	next, id, err := mu.Insert(m, "", &PageNode{Tag: "footer"}, -1)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(next.Nodes) != 2 {
		t.Fatalf("root nodes: got %d, want 2", len(next.Nodes))
	}
	if next.Nodes[1].ID != id {
		t.Errorf("root append: got %s, want %s", next.Nodes[1].ID, id)
	}
}

func TestRemove_Subtree(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	next, err := mu.Remove(m, "left")
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if next.FindNode("left") != nil {
		t.Error("removed node still reachable")
	}
	if next.FindNode("t1") != nil {
		t.Error("descendant of removed node still reachable")
	}
	if m.FindNode("left") == nil {
		t.Error("input model lost the node")
	}
}

func TestRemove_NotFound(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	_, err := mu.Remove(m, "ghost")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Remove: got %v, want ErrNodeNotFound", err)
	}
}

func TestUpdateAttributes_MergeAndUnset(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()
	m.Nodes[0].Attributes = map[string]string{"data-x": "1", "data-y": "2"}
	m.Nodes[0].InlineStyles = map[string]string{"color": "red"}

	next, err := mu.UpdateAttributes(m, "root", AttrPatch{
		Attributes:   map[string]string{"data-x": "10", "data-y": Unset, "data-z": "3"},
		InlineStyles: map[string]string{"color": Unset, "margin": "0"},
	})
	if err != nil {
		t.Fatalf("UpdateAttributes: %v", err)
	}

	n := next.FindNode("root")
	if n.Attributes["data-x"] != "10" {
		t.Errorf("data-x: got %q, want %q", n.Attributes["data-x"], "10")
	}
	if _, ok := n.Attributes["data-y"]; ok {
		t.Error("data-y not removed by Unset")
	}
	if n.Attributes["data-z"] != "3" {
		t.Errorf("data-z: got %q, want %q", n.Attributes["data-z"], "3")
	}
	if _, ok := n.InlineStyles["color"]; ok {
		t.Error("color not removed by Unset")
	}
	if n.InlineStyles["margin"] != "0" {
		t.Errorf("margin: got %q, want %q", n.InlineStyles["margin"], "0")
	}

	// Input untouched.
	if m.Nodes[0].Attributes["data-x"] != "1" {
		t.Error("input model attribute changed")
	}
}

func TestUpdateAttributes_ClassReplace(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()
	m.Nodes[0].ClassNames = []string{"old"}

	next, err := mu.UpdateAttributes(m, "root", AttrPatch{
		ClassNames: []string{"a", "b", "a", ""},
	})
	if err != nil {
		t.Fatalf("UpdateAttributes: %v", err)
	}
	got := next.FindNode("root").ClassNames
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("ClassNames: got %v, want [a b]", got)
	}
}

func TestUpdateAttributes_NilClassKeeps(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()
	m.Nodes[0].ClassNames = []string{"keep"}

	next, err := mu.UpdateAttributes(m, "root", AttrPatch{
		Attributes: map[string]string{"data-x": "1"},
	})
	if err != nil {
		t.Fatalf("UpdateAttributes: %v", err)
	}
	got := next.FindNode("root").ClassNames
	if len(got) != 1 || got[0] != "keep" {
		t.Errorf("ClassNames: got %v, want [keep]", got)
	}
}

func TestUpdateAttributes_NotFound(t *testing.T) {
	mu := NewMutator(nil)
	_, err := mu.UpdateAttributes(testModel(), "ghost", AttrPatch{})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("UpdateAttributes: got %v, want ErrNodeNotFound", err)
	}
}

func TestMove_PreservesIDs(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	next, err := mu.Move(m, "left", "right", -1)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	right := next.FindNode("right")
	if len(right.Children) != 1 || right.Children[0].ID != "left" {
		t.Fatalf("left not reparented under right: %+v", right.Children)
	}
	if next.FindNode("t1") == nil {
		t.Error("descendant lost its id across the move")
	}
	if got := next.NodeCount(); got != 4 {
		t.Errorf("node count after move: got %d, want 4", got)
	}
}

func TestMove_ToRoot(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	next, err := mu.Move(m, "left", "", 0)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if len(next.Nodes) != 2 || next.Nodes[0].ID != "left" {
		t.Errorf("root nodes: got %v", next.Nodes)
	}
}

func TestMove_IntoOwnSubtree(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	// root contains left; the target is unreachable once root is detached.
	_, err := mu.Move(m, "root", "left", -1)
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Move into own subtree: got %v, want ErrNodeNotFound", err)
	}
	if got := m.NodeCount(); got != 4 {
		t.Errorf("input model changed on rejected move: %d nodes", got)
	}
}

func TestMove_NotFound(t *testing.T) {
	mu := NewMutator(nil)
	_, err := mu.Move(testModel(), "ghost", "root", -1)
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("Move: got %v, want ErrNodeNotFound", err)
	}
}

func TestApplyBatch_Order(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()
	pos := 0

	next, err := mu.ApplyBatch(m, []Op{
		{Kind: OpInsert, ParentID: "right", Node: &PageNode{ID: "new", Tag: "p"}, Position: &pos},
		{Kind: OpUpdate, NodeID: "new", Patch: AttrPatch{Attributes: map[string]string{"data-k": "v"}}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	n := next.FindNode("new")
	if n == nil {
		t.Fatal("inserted node missing")
	}
	if n.Attributes["data-k"] != "v" {
		t.Errorf("update in same batch not applied: %v", n.Attributes)
	}
}

func TestApplyBatch_RemoveIdempotentWithinBatch(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	// Removing left also removes t1; a later remove of t1 is tolerated.
	next, err := mu.ApplyBatch(m, []Op{
		{Kind: OpRemove, NodeID: "left"},
		{Kind: OpRemove, NodeID: "t1"},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if next.FindNode("left") != nil || next.FindNode("t1") != nil {
		t.Error("removed nodes still present")
	}
}

func TestApplyBatch_RemoveMissingStillFails(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	_, err := mu.ApplyBatch(m, []Op{
		{Kind: OpRemove, NodeID: "ghost"},
	})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("ApplyBatch: got %v, want ErrNodeNotFound", err)
	}
}

func TestApplyBatch_AbortLeavesInputUnchanged(t *testing.T) {
	mu := NewMutator(nil)
	m := testModel()

	_, err := mu.ApplyBatch(m, []Op{
		{Kind: OpRemove, NodeID: "left"},
		{Kind: OpUpdate, NodeID: "ghost"},
	})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("ApplyBatch: got %v, want ErrNodeNotFound", err)
	}
	if m.FindNode("left") == nil {
		t.Error("aborted batch mutated the input model")
	}
}

func TestApply_UnknownKind(t *testing.T) {
	mu := NewMutator(nil)
	_, _, err := mu.Apply(testModel(), Op{Kind: "explode"})
	if err == nil {
		t.Fatal("Apply: expected error for unknown kind")
	}
}
