package database

import (
	"context"
	"errors"
	"fmt"

	"snippets/internal/core/apperr"
	"snippets/internal/core/user"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepositoryDatabase struct {
	DB *gorm.DB
}

// NewUserRepositoryDatabase is the output adapter for users and roles.
func NewUserRepositoryDatabase(db *gorm.DB) *UserRepositoryDatabase {
	return &UserRepositoryDatabase{DB: db}
}

// Create inserts a user; emails are unique.
func (repo *UserRepositoryDatabase) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if err := repo.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// FindByEmail expects an already normalized address.
func (repo *UserRepositoryDatabase) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return repo.first(ctx, "email = ?", email)
}

// FindByID returns ErrNotFound for unknown ids.
func (repo *UserRepositoryDatabase) FindByID(ctx context.Context, id string) (*user.User, error) {
	return repo.first(ctx, "id = ?", id)
}

func (repo *UserRepositoryDatabase) first(ctx context.Context, cond string, arg string) (*user.User, error) {
	var u user.User
	if err := repo.DB.WithContext(ctx).Where(cond, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", arg, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

// HasRole reports whether userID holds role.
func (repo *UserRepositoryDatabase) HasRole(ctx context.Context, userID, role string) (bool, error) {
	var n int64
	err := repo.DB.WithContext(ctx).Model(&user.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&n).Error
	return n > 0, err
}

// GrantRole is idempotent.
func (repo *UserRepositoryDatabase) GrantRole(ctx context.Context, userID, role string) error {
	uid, err := uuid.FromString(userID)
	if err != nil {
		return fmt.Errorf("invalid userID: %w", err)
	}
	return repo.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&user.UserRole{ID: uuid.Must(uuid.NewV4()), UserID: uid, Role: role}).Error
}

// Delete removes the user and any roles. It is used to undo a sign-up that
// could not be completed.
func (repo *UserRepositoryDatabase) Delete(ctx context.Context, id string) error {
	return repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&user.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&user.User{}).Error
	})
}
