package post

import (
	"time"

	"github.com/gofrs/uuid"
)

// Post is one snippet row. Saving someone else's snippet inserts a new Post;
// rows are never updated in place.
type Post struct {
	ID          uuid.UUID `gorm:"primaryKey;type:char(36)"`
	UserID      uuid.UUID `gorm:"type:char(36);not null;index"`
	ImageURL    string    `gorm:"column:image_url;type:text;not null"`
	ContentText *string   `gorm:"column:content_text;type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (Post) TableName() string {
	return "posts"
}

// Profile carries the display name joined onto posts by user_id.
type Profile struct {
	UserID   uuid.UUID `gorm:"primaryKey;type:char(36)"`
	Username *string   `gorm:"size:255"`
}

func (Profile) TableName() string {
	return "profiles"
}

const UnnamedUser = "Unnamed User"

// DisplayName is the name shown in pickers; it is never used as a sort key.
func (p *Profile) DisplayName() string {
	if p.Username == nil || *p.Username == "" {
		return UnnamedUser
	}
	return *p.Username
}
