package post

import (
	"context"
	"time"

	"snippets/internal/core/post"
)

// Filter narrows a listing. Order is always created_at descending; a zero
// Limit means uncapped.
type Filter struct {
	OwnerID string
	Limit   int
}

// PostRepository is the backend contract for the posts table.
type PostRepository interface {
	Insert(ctx context.Context, p *post.Post) (*post.Post, error)
	Select(ctx context.Context, f Filter) ([]*PostDTO, error)
	FindByID(ctx context.Context, id string) (*post.Post, error)
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ProfileRepository is the backend contract for the profiles table.
type ProfileRepository interface {
	SaveProfile(ctx context.Context, p *post.Profile) error
	FindProfile(ctx context.Context, userID string) (*post.Profile, error)
	SelectProfiles(ctx context.Context) ([]*post.Profile, error)
	CountProfiles(ctx context.Context) (int64, error)
}

// Actor is whoever triggers an operation. An empty UserID means a signed-out
// visitor.
type Actor interface {
	UserID() string
	IsAdmin() bool
}

// DTOs for the use cases
type PostDTO struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	ImageURL          string    `json:"image_url"`
	ContentText       *string   `json:"content_text"`
	CreatedAt         time.Time `json:"created_at"`
	AuthorDisplayName *string   `json:"author_display_name,omitempty"`
}

type ProfileDTO struct {
	UserID      string  `json:"user_id"`
	Username    *string `json:"username"`
	DisplayName string  `json:"display_name"`
}
