package migrations

import (
	"github.com/ksred/ironforge/internal/database"
)

// GetMigrations returns all registered migrations in the order they were
// written. New migrations are appended here.
func GetMigrations() []database.Migration {
	return []database.Migration{
		CreateUsersTable(),
		CreatePostsTable(),
		CreateProfilesTable(),
		CreateRolesTable(),
		CreateRoleUserTable(),
	}
}
