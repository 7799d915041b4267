package builder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/pagecraft/autosave"
	"github.com/hazyhaar/pagecraft/builder/internal/store"
	"github.com/hazyhaar/pagecraft/history"
	"github.com/hazyhaar/pagecraft/idgen"
	"github.com/hazyhaar/pagecraft/pagemodel"
	"github.com/hazyhaar/pagecraft/render"
)

// Session is one editing session over one page. It holds the single
// mutable current-model reference; the mutator and history manager only
// ever see snapshots passed by value, and the auto-save pipeline reads the
// latest model through CurrentModel at save-fire time.
//
// Session methods are safe for concurrent use, but the system is
// single-editor: there is no merge of concurrent edits, only serialisation.
type Session struct {
	pageID  string
	store   *store.Store
	logger  *slog.Logger
	mutator *pagemodel.Mutator
	newCmp  idgen.Generator

	mu      sync.Mutex
	current *pagemodel.PageModel
	hist    *history.Manager

	pipeline *autosave.Pipeline
}

// openSession loads the page and starts its auto-save pipeline. The loaded
// model seeds history as the initial present; loading is never undoable.
func openSession(ctx context.Context, st *store.Store, pageID string, cfg Config) (*Session, error) {
	m, err := st.LoadModel(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if err := pagemodel.Validate(m); err != nil {
		return nil, fmt.Errorf("builder: page %s: %w", pageID, err)
	}

	s := &Session{
		pageID:  pageID,
		store:   st,
		logger:  cfg.Logger.With("page_id", pageID),
		mutator: pagemodel.NewMutator(idgen.NodeID()),
		newCmp:  idgen.ComponentID(),
		current: m,
		hist:    history.NewManager(m, cfg.HistoryDepth),
	}
	asCfg := cfg.AutoSave
	asCfg.Logger = s.logger
	s.pipeline = autosave.New(pageID, st, s, asCfg)
	return s, nil
}

// PageID returns the page this session edits.
func (s *Session) PageID() string { return s.pageID }

// CurrentModel returns the latest model. This is the live reference the
// auto-save pipeline reads at save-fire time.
func (s *Session) CurrentModel() *pagemodel.PageModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// install makes next the current model and records history. Must be called
// with s.mu held; the caller notifies the pipeline after unlocking, because
// the pipeline goroutine calls back into CurrentModel.
func (s *Session) install(next *pagemodel.PageModel, label string) {
	s.current = next
	s.hist.Record(next, label)
}

// Apply runs one edit operation. Returns the id assigned to an inserted
// node (empty for other kinds). Structural errors (ErrNodeNotFound,
// ErrDuplicateID) leave the model untouched and are returned to the caller.
func (s *Session) Apply(op pagemodel.Op) (string, error) {
	s.mu.Lock()
	next, insertedID, err := s.mutator.Apply(s.current, op)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("edit rejected", "kind", op.Kind, "error", err)
		return "", err
	}
	s.install(next, string(op.Kind))
	s.mu.Unlock()
	s.pipeline.NotifyEdit()
	return insertedID, nil
}

// ApplyBatch runs a sequence of operations as a single edit (one history
// entry, one generation bump). All-or-nothing.
func (s *Session) ApplyBatch(ops []pagemodel.Op) error {
	s.mu.Lock()
	next, err := s.mutator.ApplyBatch(s.current, ops)
	if err != nil {
		s.mu.Unlock()
		s.logger.Error("batch rejected", "ops", len(ops), "error", err)
		return err
	}
	s.install(next, fmt.Sprintf("batch(%d)", len(ops)))
	s.mu.Unlock()
	s.pipeline.NotifyEdit()
	return nil
}

// Undo restores the previous snapshot. A restored snapshot counts as an
// accepted local edit for persistence: the generation advances and the
// document is dirty, otherwise an undo after a completed save would never
// be persisted. At the history boundary Undo is a silent no-op.
func (s *Session) Undo() bool {
	s.mu.Lock()
	m, ok := s.hist.Undo()
	if ok {
		s.current = m
	}
	s.mu.Unlock()
	if ok {
		s.pipeline.NotifyEdit()
	}
	return ok
}

// Redo restores the next snapshot, symmetric to Undo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	m, ok := s.hist.Redo()
	if ok {
		s.current = m
	}
	s.mu.Unlock()
	if ok {
		s.pipeline.NotifyEdit()
	}
	return ok
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo()
}

// SetGlobalStyles replaces the page's global style text.
func (s *Session) SetGlobalStyles(css string) {
	s.mu.Lock()
	next := s.current.Clone()
	next.GlobalStyles = css
	s.install(next, "global styles")
	s.mu.Unlock()
	s.pipeline.NotifyEdit()
}

// SetMeta replaces the page's title/description metadata.
func (s *Session) SetMeta(meta pagemodel.Meta) {
	s.mu.Lock()
	next := s.current.Clone()
	next.Meta = meta
	s.install(next, "meta")
	s.mu.Unlock()
	s.pipeline.NotifyEdit()
}

// InsertComponent instantiates a saved component under parentID. The
// instance carries fresh ids throughout and a ComponentRef naming the
// template. Returns the instance root id.
func (s *Session) InsertComponent(ctx context.Context, componentID, parentID string, pos int) (string, error) {
	tmpl, err := s.store.GetComponent(ctx, componentID)
	if err != nil {
		return "", err
	}
	instance := tmpl.Instantiate(nil)
	instance.ComponentRef = componentID

	s.mu.Lock()
	next, insertedID, err := s.mutator.Insert(s.current, parentID, instance, pos)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.install(next, "insert component "+componentID)
	s.mu.Unlock()
	s.pipeline.NotifyEdit()
	return insertedID, nil
}

// SaveComponent captures the subtree rooted at nodeID as a reusable
// component template. Returns the new component id.
func (s *Session) SaveComponent(ctx context.Context, nodeID, name string) (string, error) {
	s.mu.Lock()
	node := s.current.FindNode(nodeID)
	var root *pagemodel.PageNode
	if node != nil {
		root = node.Clone()
	}
	s.mu.Unlock()
	if root == nil {
		return "", fmt.Errorf("%w: %s", pagemodel.ErrNodeNotFound, nodeID)
	}

	componentID := s.newCmp()
	if err := s.store.SaveComponent(ctx, componentID, name, root); err != nil {
		return "", err
	}
	return componentID, nil
}

// Preview renders the current model as a full HTML document.
func (s *Session) Preview() string {
	return render.Document(s.CurrentModel())
}

// Markdown exports the current model's body as CommonMark.
func (s *Session) Markdown() (string, error) {
	return render.Markdown(s.CurrentModel())
}

// SaveNow forces an immediate save through the generation-checked pipeline.
func (s *Session) SaveNow(ctx context.Context) error {
	return s.pipeline.SaveNow(ctx)
}

// State returns the auto-save status snapshot.
func (s *Session) State() autosave.State {
	return s.pipeline.State()
}

// Close stops the auto-save pipeline, flushing a dirty model.
func (s *Session) Close() error {
	return s.pipeline.Close()
}
