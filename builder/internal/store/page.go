package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/pagecraft/pagemodel"
)

// PageInfo is a listing row: metadata without the model payload.
type PageInfo struct {
	ID          string `json:"id"`
	Version     string `json:"version"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ModelHash   string `json:"model_hash,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

// CreatePage inserts a new page with the given model.
func (s *Store) CreatePage(ctx context.Context, pageID string, m *pagemodel.PageModel) error {
	data, err := pagemodel.Marshal(m)
	if err != nil {
		return fmt.Errorf("store: marshal page %s: %w", pageID, err)
	}
	hash, err := pagemodel.Hash(m)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO pages (id, version, title, description, model_json, model_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		pageID, string(m.Version), m.Meta.Title, m.Meta.Description, string(data), hash, now, now,
	)
	return err
}

// LoadModel reads the page's model. The version gate lives in
// pagemodel.Decode: rows written by an older build surface as
// ErrUnsupportedVersion, never as a silently misread tree.
func (s *Store) LoadModel(ctx context.Context, pageID string) (*pagemodel.PageModel, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx,
		`SELECT model_json FROM pages WHERE id = ?`, pageID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}
	if err != nil {
		return nil, err
	}
	return pagemodel.Decode([]byte(raw))
}

// SaveModel upserts the page's model. Idempotent from the caller's
// perspective: repeated identical saves rewrite the same row.
func (s *Store) SaveModel(ctx context.Context, pageID string, m *pagemodel.PageModel) error {
	data, err := pagemodel.Marshal(m)
	if err != nil {
		return fmt.Errorf("store: marshal page %s: %w", pageID, err)
	}
	hash, err := pagemodel.Hash(m)
	if err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO pages (id, version, title, description, model_json, model_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			title = excluded.title,
			description = excluded.description,
			model_json = excluded.model_json,
			model_hash = excluded.model_hash,
			updated_at = excluded.updated_at`,
		pageID, string(m.Version), m.Meta.Title, m.Meta.Description, string(data), hash, now, now,
	)
	return err
}

// ListPages returns page metadata, most recently updated first.
func (s *Store) ListPages(ctx context.Context) ([]*PageInfo, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, version, title, description, model_hash, created_at, updated_at
		FROM pages ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*PageInfo
	for rows.Next() {
		p := &PageInfo{}
		if err := rows.Scan(&p.ID, &p.Version, &p.Title, &p.Description, &p.ModelHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// DeletePage removes a page.
func (s *Store) DeletePage(ctx context.Context, pageID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, pageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}
	return nil
}
