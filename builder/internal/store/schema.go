package store

// Schema is the complete pagecraft schema, applied at open time.
const Schema = `
-- Editable pages; model_json is the serialized PageModel wire form.
CREATE TABLE IF NOT EXISTS pages (
    id           TEXT PRIMARY KEY,
    version      TEXT NOT NULL,
    title        TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    model_json   TEXT NOT NULL,
    model_hash   TEXT NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_updated ON pages(updated_at DESC);

-- Saved reusable components; node_json is one serialized PageNode subtree.
CREATE TABLE IF NOT EXISTS components (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL,
    node_json    TEXT NOT NULL,
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_components_name ON components(name);
`
