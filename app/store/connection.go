package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const dbFileName = "sportwire.db"

type DB struct {
	*sql.DB

	path string
}

// Open opens (or creates) the article store under dataDir. A corrupt
// or unreadable database is moved aside and replaced with a fresh one
// rather than failing startup.
func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, dbFileName)

	db, err := openFile(path)
	if err != nil {
		slog.Warn("Article store unreadable, starting empty", "path", path, "error", err)

		if moveErr := moveCorruptFile(path); moveErr != nil {
			return nil, fmt.Errorf("failed to move corrupt store aside: %w", moveErr)
		}

		db, err = openFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to create fresh store: %w", err)
		}
	}

	return &DB{DB: db, path: path}, nil
}

func openFile(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The store is accessed strictly sequentially within a run; a
	// single connection also keeps sqlite writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	var integrity string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&integrity); err != nil {
		db.Close()
		return nil, fmt.Errorf("integrity check failed: %w", err)
	}
	if integrity != "ok" {
		db.Close()
		return nil, fmt.Errorf("integrity check reported: %s", integrity)
	}

	return db, nil
}

func moveCorruptFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	corrupt := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102150405"))
	return os.Rename(path, corrupt)
}

// Backup writes a consistent snapshot of the store into the backups
// directory and returns its path.
func (db *DB) Backup() (string, error) {
	backupDir := filepath.Join(filepath.Dir(db.path), "backups")
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := filepath.Join(backupDir,
		fmt.Sprintf("sportwire-%s.db", time.Now().UTC().Format("20060102150405")))

	if _, err := db.Exec("VACUUM INTO ?", backupPath); err != nil {
		return "", fmt.Errorf("failed to back up store: %w", err)
	}

	return backupPath, nil
}
