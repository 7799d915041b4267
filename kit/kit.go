// Package kit holds the small transport-adapter surface shared by pagecraft
// services: a transport-agnostic Endpoint type and an adapter that exposes an
// Endpoint as an MCP tool.
package kit

import "context"

// Endpoint is a transport-agnostic request handler. HTTP handlers and MCP
// tools both decode into a typed request and delegate to an Endpoint, so
// business logic is written once per operation.
type Endpoint func(ctx context.Context, req any) (any, error)
