package models

// RoleUserTable is the pivot table linking roles and users
const RoleUserTable = "role_user"

// Role is a named permission group; users and roles are linked through
// the role_user pivot table.
type Role struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Fillable lists the columns accepted from external data
func (Role) Fillable() []string {
	return []string{"name"}
}
