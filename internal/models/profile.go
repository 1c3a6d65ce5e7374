package models

// Profile holds the optional biography of a user
type Profile struct {
	ID     int64  `db:"id" json:"id"`
	UserID *int64 `db:"user_id" json:"user_id"`
	Bio    string `db:"bio" json:"bio"`
}

// Fillable lists the columns accepted from external data
func (Profile) Fillable() []string {
	return []string{"user_id", "bio"}
}
