// ABOUTME: SQLite schema for store snapshots
// ABOUTME: One table per entity plus a snapshots table recording each save
package db

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	contacts INTEGER NOT NULL,
	deals INTEGER NOT NULL,
	activities INTEGER NOT NULL,
	stages INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);

CREATE TABLE IF NOT EXISTS contacts (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS deals (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	contact_id INTEGER NOT NULL,
	value REAL NOT NULL,
	stage TEXT NOT NULL,
	probability INTEGER NOT NULL,
	expected_close_date DATETIME,
	notes TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);

CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY,
	type TEXT NOT NULL,
	contact_id INTEGER,
	deal_id INTEGER,
	description TEXT NOT NULL,
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activities_timestamp ON activities(timestamp);

CREATE TABLE IF NOT EXISTS stages (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '',
	sort_order INTEGER NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}
	return nil
}
