package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	query, args := sqliteDialect.rebind(
		"UPDATE t SET a=$2, b=$1 WHERE id=$3 AND org=$3",
		[]any{"one", "two", "three"},
	)
	assert.Equal(t, "UPDATE t SET a=?, b=? WHERE id=? AND org=?", query)
	assert.Equal(t, []any{"two", "one", "three", "three"}, args)
}

func TestRebindPostgresUnchanged(t *testing.T) {
	query, args := postgresDialect.rebind("SELECT $1", []any{1})
	assert.Equal(t, "SELECT $1", query)
	assert.Equal(t, []any{1}, args)
}

func TestAddConnectionParams(t *testing.T) {
	assert.Equal(t, "postgres://u@h/db?connect_timeout=10",
		addConnectionParams("postgres://u@h/db", "connect_timeout=10"))
	assert.Equal(t, "postgres://u@h/db?sslmode=disable&connect_timeout=10",
		addConnectionParams("postgres://u@h/db?sslmode=disable", "connect_timeout=10"))
	assert.Equal(t, "host=h dbname=db sslmode=require connect_timeout=10",
		addConnectionParams("host=h dbname=db", "sslmode=require&connect_timeout=10"))
}
