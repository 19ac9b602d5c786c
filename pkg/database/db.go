package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDSN keeps session data in a shared in-memory database that lives
// as long as the process holds a connection.
const DefaultDSN = "file:biodex?mode=memory&cache=shared"

type Config struct {
	DSN string
}

func DefaultConfig() Config {
	if dsn := os.Getenv("BIODEX_DB_DSN"); dsn != "" {
		return Config{DSN: dsn}
	}
	return Config{DSN: DefaultDSN}
}

// InMemory reports whether the DSN points at a sqlite memory database.
func (c Config) InMemory() bool {
	return c.DSN == ":memory:" || strings.Contains(c.DSN, "mode=memory")
}

func Open(cfg Config) (*sql.DB, error) {
	if cfg.DSN == "" {
		cfg.DSN = DefaultDSN
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if cfg.InMemory() {
		// the memory database disappears with its last connection
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma foreign_keys: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

func MustOpen(cfg Config) *sql.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	return db
}
