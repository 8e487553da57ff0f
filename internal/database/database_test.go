package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_SQLiteMemory(t *testing.T) {
	db, err := Connect(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	var one int
	require.NoError(t, db.Get(&one, "SELECT 1"))
	assert.Equal(t, 1, one)
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect("nope", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect nope")
}
