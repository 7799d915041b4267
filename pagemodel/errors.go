package pagemodel

import "errors"

// ErrNodeNotFound is returned when a referenced node id does not exist in
// the tree. Always recoverable: the operation is simply not applied.
var ErrNodeNotFound = errors.New("pagemodel: node not found")

// ErrDuplicateID is returned when an insertion would create two nodes
// sharing an id. This indicates an id-minting failure in the caller; it is
// rejected at every mutation boundary, not just on load.
var ErrDuplicateID = errors.New("pagemodel: duplicate node id")

// ErrUnsupportedVersion is returned when a loaded model's version is not
// understood by this build. The model must be re-imported from a legacy
// format rather than edited in a silently degraded mode.
var ErrUnsupportedVersion = errors.New("pagemodel: unsupported model version")
