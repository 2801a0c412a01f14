// Package storage implements Postgres-backed persistence for archives,
// feed subscriptions, view counters and comments.
package storage

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a keyed lookup matches no record.
var ErrNotFound = errors.New("storage: not found")

const schema = `
CREATE TABLE IF NOT EXISTS feeds (
	id BIGSERIAL PRIMARY KEY,
	category TEXT NOT NULL,
	url TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT now(),
	UNIQUE (category, url)
);

CREATE TABLE IF NOT EXISTS archives (
	archive_date DATE NOT NULL,
	category TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT now(),
	updated_at TIMESTAMP NOT NULL DEFAULT now(),
	PRIMARY KEY (archive_date, category)
);

CREATE TABLE IF NOT EXISTS view_stats (
	day DATE PRIMARY KEY,
	views BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS comments (
	id BIGSERIAL PRIMARY KEY,
	page_id TEXT NOT NULL,
	nickname TEXT NOT NULL,
	password TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS comments_page_idx ON comments (page_id);
`

// InitSchema creates the tables if they do not exist yet.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
