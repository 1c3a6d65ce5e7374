package migrations

import "github.com/ksred/ironforge/internal/database"

// CreatePostsTable creates the posts table, keyed to users by user_id
func CreatePostsTable() database.Migration {
	return database.Migration{
		Name: "002_create_posts_table",
		Up: steps(
			createTable("posts",
				id(),
				foreignID("user_id", "NULL"),
				varchar("title", 255, "NOT NULL"),
				text("body"),
				bigint("views", "NOT NULL DEFAULT 0"),
				timestamp("created_at"),
				timestamp("updated_at"),
			),
			createIndex("idx_posts_user_id", "posts", "user_id"),
		),
		Down: dropTable("posts"),
	}
}
