package migrations

import "github.com/ksred/ironforge/internal/database"

// CreateProfilesTable creates the one-per-user profiles table
func CreateProfilesTable() database.Migration {
	return database.Migration{
		Name: "003_create_profiles_table",
		Up: createTable("profiles",
			id(),
			foreignID("user_id", "NULL"),
			text("bio"),
		),
		Down: dropTable("profiles"),
	}
}
