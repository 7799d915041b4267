package builder

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/pagecraft/builder/internal/store"
	"github.com/hazyhaar/pagecraft/pagemodel"
)

// RegisterHTTP mounts the editor API on r. Structural edit errors come back
// as 4xx and never block further editing; persistence state is exposed on
// /status and is never an HTTP error.
func (e *Editor) RegisterHTTP(r chi.Router) {
	r.Route("/pages", func(r chi.Router) {
		r.Get("/", e.handleListPages)
		r.Post("/", e.handleCreatePage)
		r.Post("/import", e.handleImportPage)

		r.Route("/{pageID}", func(r chi.Router) {
			r.Get("/", e.handleGetPage)
			r.Delete("/", e.handleDeletePage)
			r.Get("/preview", e.handlePreview)
			r.Get("/markdown", e.handleMarkdown)
			r.Get("/status", e.handleStatus)
			r.Post("/ops", e.handleOps)
			r.Post("/undo", e.handleUndo)
			r.Post("/redo", e.handleRedo)
			r.Post("/save", e.handleSave)
			r.Post("/styles", e.handleSetStyles)
			r.Post("/meta", e.handleSetMeta)
			r.Post("/components", e.handleSaveComponent)
			r.Post("/components/{componentID}/insert", e.handleInsertComponent)
		})
	})
	r.Get("/components", e.handleListComponents)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain errors to HTTP statuses.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrPageNotFound),
		errors.Is(err, store.ErrComponentNotFound),
		errors.Is(err, pagemodel.ErrNodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pagemodel.ErrDuplicateID):
		status = http.StatusConflict
	case errors.Is(err, pagemodel.ErrUnsupportedVersion):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (e *Editor) handleListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := e.ListPages(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (e *Editor) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	pageID, err := e.CreatePage(r.Context(), req.Title)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"page_id": pageID})
}

func (e *Editor) handleImportPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML string `json:"html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HTML == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "html is required"})
		return
	}
	pageID, err := e.ImportPage(r.Context(), req.HTML)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"page_id": pageID})
}

func (e *Editor) handleGetPage(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.CurrentModel())
}

func (e *Editor) handleDeletePage(w http.ResponseWriter, r *http.Request) {
	if err := e.DeletePage(r.Context(), chi.URLParam(r, "pageID")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (e *Editor) handlePreview(w http.ResponseWriter, r *http.Request) {
	doc, err := e.Preview(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func (e *Editor) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	md, err := s.Markdown()
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(md))
}

func (e *Editor) handleStatus(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	st := s.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     st.Status,
		"dirty":      st.Dirty,
		"generation": st.Generation,
		"can_undo":   s.CanUndo(),
		"can_redo":   s.CanRedo(),
	})
}

// handleOps accepts either a single op or {"ops": [...]} for a batch.
func (e *Editor) handleOps(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}

	var req struct {
		pagemodel.Op
		Ops []pagemodel.Op `json:"ops,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	if len(req.Ops) > 0 {
		if err := s.ApplyBatch(req.Ops); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"applied": len(req.Ops)})
		return
	}

	insertedID, err := s.Apply(req.Op)
	if err != nil {
		writeErr(w, err)
		return
	}
	resp := map[string]any{"applied": 1}
	if insertedID != "" {
		resp["node_id"] = insertedID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *Editor) handleUndo(w http.ResponseWriter, r *http.Request) {
	e.handleStep(w, r, (*Session).Undo)
}

func (e *Editor) handleRedo(w http.ResponseWriter, r *http.Request) {
	e.handleStep(w, r, (*Session).Redo)
}

func (e *Editor) handleStep(w http.ResponseWriter, r *http.Request, step func(*Session) bool) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	// Stepping past the boundary is a normal no-op, not an error.
	writeJSON(w, http.StatusOK, map[string]bool{"stepped": step(s)})
}

func (e *Editor) handleSave(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.SaveNow(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	st := s.State()
	writeJSON(w, http.StatusOK, map[string]any{"status": st.Status, "dirty": st.Dirty})
}

func (e *Editor) handleSetStyles(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		GlobalStyles string `json:"global_styles"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	s.SetGlobalStyles(req.GlobalStyles)
	w.WriteHeader(http.StatusNoContent)
}

func (e *Editor) handleSetMeta(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	var meta pagemodel.Meta
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	s.SetMeta(meta)
	w.WriteHeader(http.StatusNoContent)
}

func (e *Editor) handleSaveComponent(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		NodeID string `json:"node_id"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NodeID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "node_id is required"})
		return
	}
	componentID, err := s.SaveComponent(r.Context(), req.NodeID, req.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"component_id": componentID})
}

func (e *Editor) handleInsertComponent(w http.ResponseWriter, r *http.Request) {
	s, err := e.Session(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		ParentID string `json:"parent_id"`
		Position *int   `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	pos := -1
	if req.Position != nil {
		pos = *req.Position
	}
	nodeID, err := s.InsertComponent(r.Context(), chi.URLParam(r, "componentID"), req.ParentID, pos)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"node_id": nodeID})
}

func (e *Editor) handleListComponents(w http.ResponseWriter, r *http.Request) {
	comps, err := e.ListComponents(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"components": comps})
}
