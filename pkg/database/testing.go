package database

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// OpenTest opens a private in-memory database with the schema applied and
// closes it when the test ends.
func OpenTest(t testing.TB) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(Config{DSN: dsn})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
