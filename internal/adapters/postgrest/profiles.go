package postgrest

import (
	"context"
	"fmt"

	"snippets/internal/core/apperr"
	"snippets/internal/core/post"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"
	"resty.dev/v3"
)

const (
	profilesPath   = "/profiles"
	profileColumns = "user_id,username"
	byUsername     = "username.asc.nullslast,user_id.asc"
)

type profileRow struct {
	UserID   string  `json:"user_id"`
	Username *string `json:"username"`
}

func (row profileRow) entity() *post.Profile {
	return &post.Profile{UserID: uuid.FromStringOrNil(row.UserID), Username: row.Username}
}

// SaveProfile upserts on user_id.
func (r *Repository) SaveProfile(ctx context.Context, p *post.Profile) error {
	_, err := r.do(func() (*resty.Response, error) {
		return r.req(ctx).
			SetHeader("Prefer", "resolution=merge-duplicates").
			SetQueryParam("on_conflict", "user_id").
			SetBody(profileRow{UserID: p.UserID.String(), Username: p.Username}).
			Post(profilesPath)
	})
	return err
}

// FindProfile selects one profile by user_id.
func (r *Repository) FindProfile(ctx context.Context, userID string) (*post.Profile, error) {
	var rows []profileRow
	_, err := r.do(func() (*resty.Response, error) {
		return r.req(ctx).
			SetQueryParam("select", profileColumns).
			SetQueryParam("user_id", "eq."+userID).
			SetResult(&rows).
			Get(profilesPath)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("profile %s: %w", userID, apperr.ErrNotFound)
	}
	return rows[0].entity(), nil
}

// SelectProfiles asks the backend for username order, nulls last.
func (r *Repository) SelectProfiles(ctx context.Context) ([]*post.Profile, error) {
	var rows []profileRow
	_, err := r.do(func() (*resty.Response, error) {
		return r.req(ctx).
			SetQueryParam("select", profileColumns).
			SetQueryParam("order", byUsername).
			SetResult(&rows).
			Get(profilesPath)
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row profileRow, _ int) *post.Profile { return row.entity() }), nil
}

func (r *Repository) CountProfiles(ctx context.Context) (int64, error) {
	return r.countTable(ctx, profilesPath, "user_id")
}
