package pagemodel

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Marshal serialises a PageModel to its JSON wire form. This is the
// storage contract with the load/save collaborators: any structural change
// to PageNode requires a Version bump and a migration path at Decode.
func Marshal(m *PageModel) ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a PageModel from JSON and rejects unsupported
// versions. Old formats are never silently misinterpreted: callers get
// ErrUnsupportedVersion and must re-import.
func Decode(data []byte) (*PageModel, error) {
	var m PageModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("pagemodel: decode: %w", err)
	}
	if err := CheckVersion(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Hash returns the SHA-256 hex digest of the model's wire form. Used for
// change detection in listings and logs.
func Hash(m *PageModel) (string, error) {
	data, err := Marshal(m)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h), nil
}
