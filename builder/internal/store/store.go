// Package store is the sqlite persistence layer behind the page editor:
// the load/save collaborator for page models and the saved-component
// library.
package store

import (
	"database/sql"
	"errors"
)

// ErrPageNotFound is returned when a page id has no row.
var ErrPageNotFound = errors.New("store: page not found")

// ErrComponentNotFound is returned when a component id has no row.
var ErrComponentNotFound = errors.New("store: component not found")

// Store wraps an open pagecraft database.
type Store struct {
	DB *sql.DB
}

// New creates a Store from an already-opened database connection.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Init applies the schema. Idempotent.
func (s *Store) Init() error {
	_, err := s.DB.Exec(Schema)
	return err
}
