package migrations

import "github.com/ksred/ironforge/internal/database"

// CreateUsersTable creates the users table
func CreateUsersTable() database.Migration {
	return database.Migration{
		Name: "001_create_users_table",
		Up: createTable("users",
			id(),
			varchar("name", 255, "NOT NULL"),
			varchar("email", 255, "NOT NULL UNIQUE"),
			timestamp("created_at"),
			timestamp("updated_at"),
			timestamp("deleted_at"),
		),
		Down: dropTable("users"),
	}
}
