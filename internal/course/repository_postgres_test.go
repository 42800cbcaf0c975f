//go:build integration

package course_test

import (
	"testing"

	"github.com/iurii2002/CoursesManager/internal/course"
	"github.com/iurii2002/CoursesManager/testing/testdb"
)

func TestRepository_Postgres(t *testing.T) {
	pgContainer := testdb.SetupSharedPostgres(t)
	defer pgContainer.Cleanup(t)

	pgContainer.RunMigrations(t, (*course.Course)(nil))

	runRepositoryTests(t, pgContainer.DB)
}
