package migrations

import "github.com/ksred/ironforge/internal/database"

// CreateRolesTable creates the roles table
func CreateRolesTable() database.Migration {
	return database.Migration{
		Name: "004_create_roles_table",
		Up: createTable("roles",
			id(),
			varchar("name", 255, "NOT NULL UNIQUE"),
		),
		Down: dropTable("roles"),
	}
}
