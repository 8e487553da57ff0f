package migrations

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Run creates the schema backing the SQL key-value store.
// The statements are portable between SQLite and PostgreSQL.
func Run(db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
            record_key TEXT PRIMARY KEY,
            payload TEXT NOT NULL,
            updated_at TEXT NOT NULL
        );`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
