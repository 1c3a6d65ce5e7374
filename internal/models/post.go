package models

import (
	"fmt"
	"time"
)

// Post is an article written by a user
type Post struct {
	ID        int64     `db:"id" json:"id"`
	UserID    *int64    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Views     int64     `db:"views" json:"views"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Fillable lists the columns accepted from external data
func (Post) Fillable() []string {
	return []string{"user_id", "title", "body", "views"}
}

// Validate checks the post before it is saved
func (p *Post) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if p.Views < 0 {
		return fmt.Errorf("views cannot be negative")
	}
	return nil
}
