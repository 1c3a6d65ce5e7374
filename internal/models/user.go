package models

import (
	"fmt"
	"strings"
	"time"
)

// User is an application account
type User struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Email     string     `db:"email" json:"email"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Fillable lists the columns accepted from external data
func (User) Fillable() []string {
	return []string{"name", "email"}
}

// Validate checks the user before it is saved
func (u *User) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !strings.Contains(u.Email, "@") {
		return fmt.Errorf("invalid email address: %q", u.Email)
	}
	return nil
}

// IsTrashed reports whether the user was soft deleted
func (u *User) IsTrashed() bool {
	return u.DeletedAt != nil
}
