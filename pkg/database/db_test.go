package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInMemory(t *testing.T) {
	assert.True(t, Config{DSN: DefaultDSN}.InMemory())
	assert.True(t, Config{DSN: ":memory:"}.InMemory())
	assert.False(t, Config{DSN: "/tmp/biodex.db"}.InMemory())
}

func TestMigrateCreatesTables(t *testing.T) {
	db := OpenTest(t)

	for _, table := range Tables {
		var name string
		err := db.QueryRowContext(context.Background(),
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	// idempotent
	require.NoError(t, Migrate(db))
}
