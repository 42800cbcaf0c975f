package testdb

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/iurii2002/CoursesManager/internal/db"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// SetupSQLite opens a private in-memory SQLite database for one test and
// creates the tables of models. The database is closed when the test ends.
//
// Usage:
//
//	func TestMyRepo(t *testing.T) {
//	    db := testdb.SetupSQLite(t, (*MyModel)(nil))
//
//	    t.Run("Case", func(t *testing.T) {
//	        testdb.CleanupTables(t, db, "my_table")
//	        // ... test
//	    })
//	}
func SetupSQLite(t *testing.T, models ...interface{}) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	sqliteDB, err := db.NewSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { sqliteDB.Close() })

	ctx := context.Background()
	for _, model := range models {
		_, err := sqliteDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		require.NoError(t, err, "failed to create table")
	}

	return sqliteDB
}

// CleanupTables empties tables and resets their id sequences, so every
// subtest starts numbering rows at 1.
func CleanupTables(t *testing.T, db *bun.DB, tables ...string) {
	t.Helper()

	ctx := context.Background()

	for _, table := range tables {
		if db.Dialect().Name() != dialect.SQLite {
			_, err := db.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY CASCADE")
			require.NoError(t, err, "failed to truncate table: %s", table)
			continue
		}

		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "failed to truncate table: %s", table)

		// sqlite_sequence only exists once an AUTOINCREMENT table was written
		var sequences int
		err = db.NewRaw("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").
			Scan(ctx, &sequences)
		require.NoError(t, err)
		if sequences > 0 {
			_, err = db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table)
			require.NoError(t, err, "failed to reset sequence: %s", table)
		}
	}
}
