package orm_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/database/migrations"
	"github.com/ksred/ironforge/internal/models"
	"github.com/ksred/ironforge/internal/orm"
)

// setupDB returns a sqlite database with every migration applied
func setupDB(t *testing.T) *database.Database {
	t.Helper()

	db := database.TestDatabase(t)
	runner := database.NewMigrationRunner(db, zerolog.Nop())
	require.NoError(t, runner.Register(migrations.GetMigrations()...))

	report, err := runner.Migrate(context.Background(), database.ModeRun)
	require.NoError(t, err)
	require.NoError(t, report.Err())
	return db
}

func createUsers(t *testing.T, users *orm.Entity[models.User], n int) []*models.User {
	t.Helper()

	created := make([]*models.User, 0, n)
	for i := 1; i <= n; i++ {
		u, err := users.Create(context.Background(), orm.Attributes{
			"name":  fmt.Sprintf("u%d", i),
			"email": fmt.Sprintf("u%d@example.com", i),
		})
		require.NoError(t, err)
		created = append(created, u)
	}
	return created
}

func names(recs []*models.User) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}
