package db

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "podqueue"
	dbFileName = "podqueue.db"
)

// Open opens the podqueue database at path, creating it and its schema when
// needed. An empty path resolves to the xdg data directory.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		var err error
		path, err = xdg.DataFile(filepath.Join(appName, dbFileName))
		if err != nil {
			return nil, err
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		conn.Close()
		return nil, err
	}

	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return conn, nil
}
