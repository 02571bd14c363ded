package db

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
)

var (
	dbInstance *sql.DB
	dbOnce     sync.Once
	dbErr      error
)

// GetDB returns a singleton in-memory DuckDB connection with the JSON
// extension loaded.
func GetDB() (*sql.DB, error) {
	dbOnce.Do(func() {
		dbInstance, dbErr = initializeDuckDB()
	})
	return dbInstance, dbErr
}

func initializeDuckDB() (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB: %w", err)
	}

	// DuckDB works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// The extension is bundled in most builds; install only when loading fails.
	if _, err := db.Exec("LOAD json"); err != nil {
		if _, err := db.Exec("INSTALL json"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to install JSON extension: %w", err)
		}
		if _, err := db.Exec("LOAD json"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to load JSON extension: %w", err)
		}
	}

	return db, nil
}
