package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE reconciliation_runs (id TEXT PRIMARY KEY, matched INTEGER, policy TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "reconciliation_runs")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	types := make(map[string]string)
	for _, col := range columns {
		types[col.Field] = col.Type
	}
	assert.Equal(t, map[string]string{"id": "text", "matched": "integer", "policy": "text"}, types)

	// sqlite reports no columns, not an error, for an unknown table
	cols, err := GetTableColumns(db, "reconciliation_breaks")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE runs (id INTEGER PRIMARY KEY, left_provider TEXT)").Error)

	missing, err := MissingColumns(db, "runs", []string{"id", "LEFT_PROVIDER", "right_provider"})
	require.NoError(t, err)
	assert.Equal(t, []string{"right_provider"}, missing)
}
