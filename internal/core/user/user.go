package user

import (
	"time"

	"github.com/gofrs/uuid"
)

const RoleAdmin = "admin"

type User struct {
	ID        uuid.UUID `gorm:"primaryKey;type:char(36)"`
	Email     string    `gorm:"size:255;uniqueIndex;not null"`
	Password  string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type UserRole struct {
	ID     uuid.UUID `gorm:"primaryKey;type:char(36)"`
	UserID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uniq_user_role"`
	Role   string    `gorm:"size:20;not null;uniqueIndex:uniq_user_role"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
