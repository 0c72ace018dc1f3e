package repository

import (
	"context"
	"database/sql"
)

// schemaDDL is idempotent; applied on every startup.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS pack_slips (
    id                TEXT PRIMARY KEY,
    status            TEXT NOT NULL,
    file_name         TEXT NOT NULL,
    mime_type         TEXT NOT NULL,
    file_size         INTEGER NOT NULL DEFAULT 0,
    file_path         TEXT NOT NULL DEFAULT '',
    extracted_text    TEXT NOT NULL DEFAULT '',
    extract_method    TEXT NOT NULL DEFAULT '',
    extract_pages     INTEGER NOT NULL DEFAULT 0,
    vendor_id         TEXT NOT NULL DEFAULT '',
    vendor_source     TEXT NOT NULL DEFAULT 'pending',
    vendor_confidence REAL NOT NULL DEFAULT 0,
    line_items        TEXT NOT NULL DEFAULT '[]',
    metadata          TEXT NOT NULL DEFAULT '{}',
    errors            TEXT NOT NULL DEFAULT '[]',
    created_at        TIMESTAMP NOT NULL,
    updated_at        TIMESTAMP NOT NULL,
    submitted_at      TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_pack_slips_status ON pack_slips (status);
CREATE INDEX IF NOT EXISTS idx_pack_slips_created_at ON pack_slips (created_at);
`

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}
