package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iurii2002/CoursesManager/internal/config"
	"github.com/iurii2002/CoursesManager/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets"`

	ID   int    `bun:"id,pk,autoincrement"`
	Name string `bun:"name,notnull"`
}

func TestNew_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.db")

	database, err := db.New(config.DatabaseConfig{Driver: db.DriverSQLite, Path: path})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.RunMigrations(ctx, database, (*widget)(nil)))
	// Migrations are idempotent
	require.NoError(t, db.RunMigrations(ctx, database, (*widget)(nil)))

	w := &widget{Name: "first"}
	_, err = database.NewInsert().Model(w).Returning("id").Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, w.ID)

	// Data survives reopening the file
	db.Close(database)
	reopened, err := db.NewSQLite(path)
	require.NoError(t, err)
	defer db.Close(reopened)

	var got widget
	require.NoError(t, reopened.NewSelect().Model(&got).Where("id = ?", 1).Scan(ctx))
	assert.Equal(t, "first", got.Name)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := db.New(config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
