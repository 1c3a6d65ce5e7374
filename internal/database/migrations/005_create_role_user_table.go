package migrations

import (
	"github.com/ksred/ironforge/internal/database"
	"github.com/ksred/ironforge/internal/models"
)

// CreateRoleUserTable creates the pivot table between roles and users
func CreateRoleUserTable() database.Migration {
	return database.Migration{
		Name: "005_create_role_user_table",
		Up: steps(
			createTable(models.RoleUserTable,
				foreignID("user_id", "NOT NULL"),
				foreignID("role_id", "NOT NULL"),
				primaryKey("user_id", "role_id"),
			),
			createIndex("idx_role_user_role_id", models.RoleUserTable, "role_id"),
		),
		Down: dropTable(models.RoleUserTable),
	}
}
