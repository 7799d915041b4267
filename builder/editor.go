package builder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazyhaar/pagecraft/builder/internal/store"
	"github.com/hazyhaar/pagecraft/htmlimport"
	"github.com/hazyhaar/pagecraft/idgen"
	"github.com/hazyhaar/pagecraft/pagemodel"
	"github.com/hazyhaar/pagecraft/render"
)

// Editor manages pages and their editing sessions. Sessions are opened on
// demand, at most one per page, and live until CloseSession or Close.
type Editor struct {
	cfg      Config
	store    *store.Store
	logger   *slog.Logger
	newPage  idgen.Generator
	importer *htmlimport.Importer

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewEditor creates an Editor over an open database, applying the schema.
func NewEditor(db *sql.DB, cfg Config) (*Editor, error) {
	cfg.defaults()
	st := store.New(db)
	if err := st.Init(); err != nil {
		return nil, fmt.Errorf("builder: init schema: %w", err)
	}
	return &Editor{
		cfg:      cfg,
		store:    st,
		logger:   cfg.Logger,
		newPage:  idgen.PageID(),
		importer: htmlimport.New(nil),
		sessions: make(map[string]*Session),
	}, nil
}

// CreatePage creates an empty page and returns its id.
func (e *Editor) CreatePage(ctx context.Context, title string) (string, error) {
	pageID := e.newPage()
	if err := e.store.CreatePage(ctx, pageID, pagemodel.NewModel(title)); err != nil {
		return "", err
	}
	e.logger.Info("page created", "page_id", pageID, "title", title)
	return pageID, nil
}

// ImportPage converts legacy HTML into a new page and returns its id. This
// is the migration path for content whose stored version this build rejects.
func (e *Editor) ImportPage(ctx context.Context, src string) (string, error) {
	m, err := e.importer.Import(src)
	if err != nil {
		return "", fmt.Errorf("builder: import: %w", err)
	}
	pageID := e.newPage()
	if err := e.store.CreatePage(ctx, pageID, m); err != nil {
		return "", err
	}
	e.logger.Info("page imported", "page_id", pageID, "nodes", m.NodeCount())
	return pageID, nil
}

// Session returns the editing session for pageID, opening one if needed.
func (e *Editor) Session(ctx context.Context, pageID string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, fmt.Errorf("builder: editor closed")
	}
	if s, ok := e.sessions[pageID]; ok {
		return s, nil
	}
	s, err := openSession(ctx, e.store, pageID, e.cfg)
	if err != nil {
		return nil, err
	}
	e.sessions[pageID] = s
	e.logger.Info("session opened", "page_id", pageID)
	return s, nil
}

// CloseSession ends the session for pageID, flushing unsaved edits.
func (e *Editor) CloseSession(pageID string) error {
	e.mu.Lock()
	s, ok := e.sessions[pageID]
	delete(e.sessions, pageID)
	e.mu.Unlock()
	if !ok {
		return nil
	}
	return s.Close()
}

// ListPages returns page metadata from the store.
func (e *Editor) ListPages(ctx context.Context) ([]*store.PageInfo, error) {
	return e.store.ListPages(ctx)
}

// DeletePage removes a page, closing any open session for it first.
func (e *Editor) DeletePage(ctx context.Context, pageID string) error {
	if err := e.CloseSession(pageID); err != nil {
		e.logger.Warn("session close before delete", "page_id", pageID, "error", err)
	}
	return e.store.DeletePage(ctx, pageID)
}

// Preview renders a page as a full HTML document. An open session's live
// model wins over the stored one.
func (e *Editor) Preview(ctx context.Context, pageID string) (string, error) {
	e.mu.Lock()
	s, ok := e.sessions[pageID]
	e.mu.Unlock()
	if ok {
		return s.Preview(), nil
	}
	m, err := e.store.LoadModel(ctx, pageID)
	if err != nil {
		return "", err
	}
	return render.Document(m), nil
}

// ListComponents returns the saved-component library.
func (e *Editor) ListComponents(ctx context.Context) ([]*store.ComponentInfo, error) {
	return e.store.ListComponents(ctx)
}

// Close ends all sessions, flushing unsaved edits.
func (e *Editor) Close() error {
	e.mu.Lock()
	sessions := e.sessions
	e.sessions = make(map[string]*Session)
	e.closed = true
	e.mu.Unlock()

	var firstErr error
	for id, s := range sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("builder: close session %s: %w", id, err)
		}
	}
	return firstErr
}
