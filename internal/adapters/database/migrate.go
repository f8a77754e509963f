package database

import (
	"snippets/internal/core/post"
	"snippets/internal/core/user"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the database backend owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&user.UserRole{},
		&post.Post{},
		&post.Profile{},
	)
}
