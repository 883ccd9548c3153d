// Package sqlitetest opens throwaway in-memory SQLite stores carrying the
// crafting schema.
package sqlitetest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/sergawain/gawain/internal/gateways/database/repositories"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// Open returns a bun.DB over a per-test in-memory database. The pool is
// capped at one connection, so transactions from concurrent goroutines queue
// for it instead of failing with SQLITE_BUSY.
func Open(t testing.TB) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", nameReplacer.Replace(t.Name()))
	sqldb, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repositories.CreateSchema(context.Background(), db))
	return db
}
