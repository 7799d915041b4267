package builder

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/pagecraft/kit"
)

// RegisterMCP registers page-editing tools on an MCP server.
func (e *Editor) RegisterMCP(srv *mcp.Server) {
	e.registerListPagesTool(srv)
	e.registerCreatePageTool(srv)
	e.registerImportTool(srv)
	e.registerPreviewTool(srv)
	e.registerMarkdownTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- list pages ---

func (e *Editor) registerListPagesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pagecraft_list_pages",
		Description: "List all pages with title, node count and timestamps.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		pages, err := e.ListPages(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"pages": pages}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, nil)
}

// --- create page ---

type createPageReq struct {
	Title string `json:"title"`
}

func (e *Editor) registerCreatePageTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pagecraft_create_page",
		Description: "Create a new empty page and return its id.",
		InputSchema: inputSchema(map[string]any{
			"title": map[string]any{"type": "string", "description": "Page title"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*createPageReq)
		pageID, err := e.CreatePage(ctx, r.Title)
		if err != nil {
			return nil, err
		}
		return map[string]any{"page_id": pageID}, nil
	}

	decode := func(raw json.RawMessage) (any, error) {
		var r createPageReq
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- import html ---

type importReq struct {
	HTML string `json:"html"`
}

func (e *Editor) registerImportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pagecraft_import_html",
		Description: "Sanitize an HTML document, convert it into a page tree and store it as a new page.",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "HTML source to import"},
		}, []string{"html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*importReq)
		pageID, err := e.ImportPage(ctx, r.HTML)
		if err != nil {
			return nil, err
		}
		return map[string]any{"page_id": pageID}, nil
	}

	decode := func(raw json.RawMessage) (any, error) {
		var r importReq
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, err
		}
		return &r, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- preview ---

type pageReq struct {
	PageID string `json:"page_id"`
}

func decodePageReq(raw json.RawMessage) (any, error) {
	var r pageReq
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (e *Editor) registerPreviewTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pagecraft_preview",
		Description: "Render a page as a complete HTML document.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page to render"},
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*pageReq)
		doc, err := e.Preview(ctx, r.PageID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"html": doc}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodePageReq)
}

// --- markdown ---

func (e *Editor) registerMarkdownTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "pagecraft_markdown",
		Description: "Export a page body as CommonMark markdown.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page to export"},
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*pageReq)
		s, err := e.Session(ctx, r.PageID)
		if err != nil {
			return nil, err
		}
		md, err := s.Markdown()
		if err != nil {
			return nil, err
		}
		return map[string]any{"markdown": md}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodePageReq)
}
