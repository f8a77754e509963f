package database

import (
	"context"
	"errors"
	"fmt"

	"snippets/internal/core/apperr"
	"snippets/internal/core/post"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepositoryDatabase struct {
	DB *gorm.DB
}

// NewProfileRepositoryDatabase is the output adapter for profiles.
func NewProfileRepositoryDatabase(db *gorm.DB) *ProfileRepositoryDatabase {
	return &ProfileRepositoryDatabase{DB: db}
}

// SaveProfile inserts or renames the profile for p.UserID.
func (repo *ProfileRepositoryDatabase) SaveProfile(ctx context.Context, p *post.Profile) error {
	return repo.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username"}),
	}).Create(p).Error
}

// FindProfile returns ErrNotFound when userID has no profile.
func (repo *ProfileRepositoryDatabase) FindProfile(ctx context.Context, userID string) (*post.Profile, error) {
	var p post.Profile
	if err := repo.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("profile %s: %w", userID, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// SelectProfiles orders by username with unnamed profiles last; ties fall
// back to user_id.
func (repo *ProfileRepositoryDatabase) SelectProfiles(ctx context.Context) ([]*post.Profile, error) {
	var profiles []*post.Profile
	err := repo.DB.WithContext(ctx).
		Order("CASE WHEN username IS NULL THEN 1 ELSE 0 END").
		Order("username").
		Order("user_id").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

// CountProfiles is the number of registered users.
func (repo *ProfileRepositoryDatabase) CountProfiles(ctx context.Context) (int64, error) {
	var n int64
	err := repo.DB.WithContext(ctx).Model(&post.Profile{}).Count(&n).Error
	return n, err
}
