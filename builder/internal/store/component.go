package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/pagecraft/pagemodel"
)

// ComponentInfo is a listing row for the saved-component library.
type ComponentInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

// SaveComponent stores a subtree as a reusable component template. The
// stored tree keeps the ids it arrived with; instantiation mints fresh ones
// on every insert, so template ids never collide with page ids.
func (s *Store) SaveComponent(ctx context.Context, componentID, name string, root *pagemodel.PageNode) error {
	data, err := json.Marshal(root)
	if err != nil {
		return fmt.Errorf("store: marshal component %s: %w", componentID, err)
	}
	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO components (id, name, node_json, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, node_json = excluded.node_json`,
		componentID, name, string(data), time.Now().UnixMilli(),
	)
	return err
}

// GetComponent loads a component template subtree.
func (s *Store) GetComponent(ctx context.Context, componentID string) (*pagemodel.PageNode, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx,
		`SELECT node_json FROM components WHERE id = ?`, componentID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, componentID)
	}
	if err != nil {
		return nil, err
	}
	var root pagemodel.PageNode
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil, fmt.Errorf("store: decode component %s: %w", componentID, err)
	}
	return &root, nil
}

// ListComponents returns the component library, newest first.
func (s *Store) ListComponents(ctx context.Context) ([]*ComponentInfo, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, created_at FROM components ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []*ComponentInfo
	for rows.Next() {
		c := &ComponentInfo{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// DeleteComponent removes a component template.
func (s *Store) DeleteComponent(ctx context.Context, componentID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM components WHERE id = ?`, componentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrComponentNotFound, componentID)
	}
	return nil
}
