package builder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/pagecraft/builder/internal/store"
	"github.com/hazyhaar/pagecraft/dbopen"
	"github.com/hazyhaar/pagecraft/pagemodel"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	db := dbopen.OpenMemory(t)
	cfg := Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	// Long debounce keeps the autosave timer out of test timing; saves in
	// tests go through SaveNow or Close.
	cfg.AutoSave.Debounce = time.Hour
	e, err := NewEditor(db, cfg)
	if err != nil {
		t.Fatalf("NewEditor: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func openTestSession(t *testing.T, e *Editor) *Session {
	t.Helper()
	ctx := context.Background()
	pageID, err := e.CreatePage(ctx, "Test Page")
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	s, err := e.Session(ctx, pageID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	return s
}

func TestSession_InsertUndoRedo(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)

	id, err := s.Apply(pagemodel.Op{
		Kind: pagemodel.OpInsert,
		Node: &pagemodel.PageNode{Tag: "h1", TextContent: "Title"},
	})
	if err != nil {
		t.Fatalf("Apply insert: %v", err)
	}
	if s.CurrentModel().FindNode(id) == nil {
		t.Fatal("inserted node missing")
	}

	if !s.Undo() {
		t.Fatal("Undo: expected a step")
	}
	if s.CurrentModel().FindNode(id) != nil {
		t.Error("node still present after undo")
	}

	if !s.Redo() {
		t.Fatal("Redo: expected a step")
	}
	if s.CurrentModel().FindNode(id) == nil {
		t.Error("node missing after redo; id must survive the round trip")
	}
}

func TestSession_UndoBoundaryNoOp(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)

	// Loading is not undoable.
	if s.Undo() {
		t.Error("Undo on fresh session: expected no-op")
	}
	if s.Redo() {
		t.Error("Redo on fresh session: expected no-op")
	}
}

func TestSession_RejectedEditLeavesModel(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)

	before := s.CurrentModel()
	_, err := s.Apply(pagemodel.Op{Kind: pagemodel.OpRemove, NodeID: "ghost"})
	if !errors.Is(err, pagemodel.ErrNodeNotFound) {
		t.Fatalf("Apply: got %v, want ErrNodeNotFound", err)
	}
	if s.CurrentModel() != before {
		t.Error("rejected edit swapped the model")
	}
	if s.CanUndo() {
		t.Error("rejected edit recorded in history")
	}
}

func TestSession_UndoMarksDirty(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)
	ctx := context.Background()

	if _, err := s.Apply(pagemodel.Op{
		Kind: pagemodel.OpInsert,
		Node: &pagemodel.PageNode{Tag: "p", TextContent: "x"},
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := s.SaveNow(ctx); err != nil {
		t.Fatalf("SaveNow: %v", err)
	}
	if s.State().Dirty {
		t.Fatal("dirty after save")
	}

	if !s.Undo() {
		t.Fatal("Undo failed")
	}
	// Edit notifications reach the pipeline asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for !s.State().Dirty && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !s.State().Dirty {
		t.Error("undo did not mark the document dirty")
	}
}

func TestSession_ApplyBatchSingleHistoryEntry(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)

	err := s.ApplyBatch([]pagemodel.Op{
		{Kind: pagemodel.OpInsert, Node: &pagemodel.PageNode{ID: "a", Tag: "div"}},
		{Kind: pagemodel.OpInsert, ParentID: "a", Node: &pagemodel.PageNode{ID: "b", Tag: "p"}},
	})
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	if !s.Undo() {
		t.Fatal("Undo failed")
	}
	m := s.CurrentModel()
	if m.FindNode("a") != nil || m.FindNode("b") != nil {
		t.Error("batch was not a single history entry")
	}
}

func TestSession_ComponentRoundTrip(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)
	ctx := context.Background()

	if err := s.ApplyBatch([]pagemodel.Op{
		{Kind: pagemodel.OpInsert, Node: &pagemodel.PageNode{ID: "hero", Tag: "section"}},
		{Kind: pagemodel.OpInsert, ParentID: "hero", Node: &pagemodel.PageNode{ID: "h", Tag: "h1", TextContent: "Hero"}},
	}); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	componentID, err := s.SaveComponent(ctx, "hero", "hero banner")
	if err != nil {
		t.Fatalf("SaveComponent: %v", err)
	}
	if !strings.HasPrefix(componentID, "cmp_") {
		t.Errorf("component id: got %q, want cmp_ prefix", componentID)
	}

	instanceID, err := s.InsertComponent(ctx, componentID, "", -1)
	if err != nil {
		t.Fatalf("InsertComponent: %v", err)
	}
	if instanceID == "hero" {
		t.Error("instance reused the template's node id")
	}

	m := s.CurrentModel()
	inst := m.FindNode(instanceID)
	if inst == nil {
		t.Fatal("instance missing")
	}
	if inst.ComponentRef != componentID {
		t.Errorf("ComponentRef: got %q, want %q", inst.ComponentRef, componentID)
	}
	if len(inst.Children) != 1 || inst.Children[0].ID == "h" {
		t.Errorf("instance children must carry fresh ids: %+v", inst.Children)
	}
	if err := pagemodel.Validate(m); err != nil {
		t.Fatalf("model invalid after instantiation: %v", err)
	}

	// Original subtree untouched.
	if m.FindNode("hero") == nil || m.FindNode("h") == nil {
		t.Error("template source nodes lost")
	}
}

func TestSession_InsertComponentNotFound(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)

	_, err := s.InsertComponent(context.Background(), "cmp_ghost", "", -1)
	if !errors.Is(err, store.ErrComponentNotFound) {
		t.Fatalf("InsertComponent: got %v, want ErrComponentNotFound", err)
	}
}

func TestEditor_CloseSessionFlushes(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)
	ctx := context.Background()
	pageID := s.PageID()

	if _, err := s.Apply(pagemodel.Op{
		Kind: pagemodel.OpInsert,
		Node: &pagemodel.PageNode{ID: "keep", Tag: "p", TextContent: "persist me"},
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if err := e.CloseSession(pageID); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}

	// A fresh session sees the flushed edit.
	s2, err := e.Session(ctx, pageID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s2.CurrentModel().FindNode("keep") == nil {
		t.Error("edit lost across close/reopen")
	}
}

func TestEditor_ImportPage(t *testing.T) {
	e := newTestEditor(t)
	ctx := context.Background()

	pageID, err := e.ImportPage(ctx, `<html><head><title>Imported</title></head><body><div><p>content</p></div></body></html>`)
	if err != nil {
		t.Fatalf("ImportPage: %v", err)
	}

	s, err := e.Session(ctx, pageID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	m := s.CurrentModel()
	if m.Meta.Title != "Imported" {
		t.Errorf("title: got %q, want Imported", m.Meta.Title)
	}
	if m.NodeCount() == 0 {
		t.Error("imported page is empty")
	}
}

func TestEditor_PreviewLiveSessionWins(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)
	ctx := context.Background()

	if _, err := s.Apply(pagemodel.Op{
		Kind: pagemodel.OpInsert,
		Node: &pagemodel.PageNode{Tag: "h1", TextContent: "unsaved headline"},
	}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	doc, err := e.Preview(ctx, s.PageID())
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(doc, "unsaved headline") {
		t.Error("preview rendered the stored model instead of the live one")
	}
}

func TestEditor_DeletePage(t *testing.T) {
	e := newTestEditor(t)
	s := openTestSession(t, e)
	ctx := context.Background()
	pageID := s.PageID()

	if err := e.DeletePage(ctx, pageID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if _, err := e.Session(ctx, pageID); !errors.Is(err, store.ErrPageNotFound) {
		t.Fatalf("Session after delete: got %v, want ErrPageNotFound", err)
	}
}
