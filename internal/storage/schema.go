package storage

import (
	"database/sql"
	"fmt"
	"time"
)

const schemaVersion = "1"

const createClassesTable = `
CREATE TABLE IF NOT EXISTS classes (
	name TEXT PRIMARY KEY,
	superclass TEXT NOT NULL DEFAULT '',
	file TEXT NOT NULL DEFAULT '',
	line INTEGER NOT NULL DEFAULT 0,
	is_module INTEGER NOT NULL DEFAULT 0,
	mixins TEXT NOT NULL DEFAULT '[]',
	constants TEXT NOT NULL DEFAULT '[]'
)`

const createMethodsTable = `
CREATE TABLE IF NOT EXISTS methods (
	id TEXT PRIMARY KEY,
	class TEXT NOT NULL,
	name TEXT NOT NULL,
	params TEXT NOT NULL DEFAULT '[]',
	visibility TEXT NOT NULL DEFAULT 'public',
	return_type TEXT NOT NULL DEFAULT '',
	usage_count INTEGER NOT NULL DEFAULT 0,
	file TEXT NOT NULL DEFAULT '',
	line INTEGER NOT NULL DEFAULT 0
)`

const createAssociationsTable = `
CREATE TABLE IF NOT EXISTS associations (
	source_model TEXT NOT NULL,
	target_model TEXT NOT NULL,
	type TEXT NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY (source_model, name, type)
)`

const createCallEdgesTable = `
CREATE TABLE IF NOT EXISTS call_edges (
	caller TEXT NOT NULL,
	callee TEXT NOT NULL,
	file TEXT NOT NULL DEFAULT '',
	line INTEGER NOT NULL DEFAULT 0
)`

const createSnapshotMetaTable = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// createSchema creates all snapshot tables in one transaction.
func createSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"classes", createClassesTable},
		{"methods", createMethodsTable},
		{"associations", createAssociationsTable},
		{"call_edges", createCallEdgesTable},
		{"snapshot_meta", createSnapshotMetaTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_methods_class ON methods(class)",
		"CREATE INDEX IF NOT EXISTS idx_associations_source ON associations(source_model)",
		"CREATE INDEX IF NOT EXISTS idx_call_edges_callee ON call_edges(callee)",
	}
	for i, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	bootstrapSQL := `
		INSERT OR IGNORE INTO snapshot_meta (key, value, updated_at) VALUES
			('schema_version', ?, ?),
			('saved_at', '', ?)
	`
	if _, err := tx.Exec(bootstrapSQL, schemaVersion, now, now); err != nil {
		return fmt.Errorf("failed to bootstrap snapshot_meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}
