package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snippets/internal/core/apperr"
	"snippets/internal/core/post"
	postPort "snippets/internal/ports/post"

	"gorm.io/gorm"
)

// PostRepositoryDatabase stores posts through gorm.
type PostRepositoryDatabase struct {
	DB *gorm.DB
}

// NewPostRepositoryDatabase is the output adapter for posts on gorm.
func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{DB: db}
}

// feedRow is one post joined with its author's profile.
type feedRow struct {
	ID                string
	UserID            string
	ImageURL          string
	ContentText       *string
	CreatedAt         time.Time
	AuthorDisplayName *string
}

// Insert stores a new post row as given.
func (repo *PostRepositoryDatabase) Insert(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := repo.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// Select lists posts newest first with the author name joined from profiles.
func (repo *PostRepositoryDatabase) Select(ctx context.Context, f postPort.Filter) ([]*postPort.PostDTO, error) {
	q := repo.DB.WithContext(ctx).
		Table("posts AS p").
		Select("p.id, p.user_id, p.image_url, p.content_text, p.created_at, pr.username AS author_display_name").
		Joins("LEFT JOIN profiles AS pr ON pr.user_id = p.user_id").
		Order("p.created_at DESC")
	if f.OwnerID != "" {
		q = q.Where("p.user_id = ?", f.OwnerID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []feedRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*postPort.PostDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, &postPort.PostDTO{
			ID:                r.ID,
			UserID:            r.UserID,
			ImageURL:          r.ImageURL,
			ContentText:       r.ContentText,
			CreatedAt:         r.CreatedAt,
			AuthorDisplayName: r.AuthorDisplayName,
		})
	}
	return out, nil
}

// FindByID returns ErrNotFound when no row has id.
func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id string) (*post.Post, error) {
	var p post.Post
	if err := repo.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("post %s: %w", id, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

// DeleteByID removes one row; deleting a missing row is ErrNotFound.
func (repo *PostRepositoryDatabase) DeleteByID(ctx context.Context, id string) error {
	res := repo.DB.WithContext(ctx).Where("id = ?", id).Delete(&post.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Count is the total number of posts.
func (repo *PostRepositoryDatabase) Count(ctx context.Context) (int64, error) {
	var n int64
	err := repo.DB.WithContext(ctx).Model(&post.Post{}).Count(&n).Error
	return n, err
}
