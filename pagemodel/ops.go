package pagemodel

import (
	"errors"
	"fmt"
)

// OpKind is the type of edit operation.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpRemove OpKind = "remove"
	OpUpdate OpKind = "update"
	OpMove   OpKind = "move"
)

// Op is a single edit operation in wire form. It is the unit accepted by
// the editing API and replayed through the Mutator.
type Op struct {
	Kind     OpKind    `json:"kind"`
	ParentID string    `json:"parent_id,omitempty"` // insert/move target; empty = root
	NodeID   string    `json:"node_id,omitempty"`   // remove/update/move subject
	Node     *PageNode `json:"node,omitempty"`      // insert payload
	Position *int      `json:"position,omitempty"`  // nil = append
	Patch    AttrPatch `json:"patch,omitempty"`     // update payload
}

func (op Op) pos() int {
	if op.Position == nil {
		return -1
	}
	return *op.Position
}

// Apply dispatches op through the mutator. Returns the new model and, for
// inserts, the id assigned to the inserted root node.
func (mu *Mutator) Apply(m *PageModel, op Op) (*PageModel, string, error) {
	switch op.Kind {
	case OpInsert:
		return mu.Insert(m, op.ParentID, op.Node, op.pos())
	case OpRemove:
		next, err := mu.Remove(m, op.NodeID)
		return next, "", err
	case OpUpdate:
		next, err := mu.UpdateAttributes(m, op.NodeID, op.Patch)
		return next, "", err
	case OpMove:
		next, err := mu.Move(m, op.NodeID, op.ParentID, op.pos())
		return next, "", err
	default:
		return m, "", fmt.Errorf("pagemodel: unknown op kind %q", op.Kind)
	}
}

// ApplyBatch applies ops in order as one edit. Within a batch, removing an
// id that an earlier op in the same batch already removed is a tolerated
// no-op; any other failure aborts the batch and the original model is
// returned unchanged. Idempotence is strictly batch-scoped — a standalone
// Remove of a missing id still fails.
func (mu *Mutator) ApplyBatch(m *PageModel, ops []Op) (*PageModel, error) {
	next := m
	removed := make(map[string]struct{})
	for _, op := range ops {
		res, _, err := mu.Apply(next, op)
		if err != nil {
			if op.Kind == OpRemove && errors.Is(err, ErrNodeNotFound) {
				if _, gone := removed[op.NodeID]; gone {
					continue
				}
			}
			return m, err
		}
		if op.Kind == OpRemove {
			// Descendant ids are gone too.
			after := CollectIDs(res)
			for id := range CollectIDs(next) {
				if _, still := after[id]; !still {
					removed[id] = struct{}{}
				}
			}
		}
		next = res
	}
	return next, nil
}
