package postgrest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"snippets/internal/core/apperr"
	"snippets/internal/core/post"
	postPort "snippets/internal/ports/post"

	"github.com/gofrs/uuid"
	"resty.dev/v3"
)

const (
	postsPath    = "/posts"
	feedSelect   = "id,image_url,content_text,user_id,created_at,profiles(username)"
	postColumns  = "id,image_url,content_text,user_id,created_at"
	newestFirst  = "created_at.desc"
	preferReturn = "return=representation"
)

type postRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ImageURL    string    `json:"image_url"`
	ContentText *string   `json:"content_text"`
	CreatedAt   time.Time `json:"created_at"`
	Profiles    *struct {
		Username *string `json:"username"`
	} `json:"profiles,omitempty"`
}

func (row postRow) entity() *post.Post {
	return &post.Post{
		ID:          uuid.FromStringOrNil(row.ID),
		UserID:      uuid.FromStringOrNil(row.UserID),
		ImageURL:    row.ImageURL,
		ContentText: row.ContentText,
		CreatedAt:   row.CreatedAt,
	}
}

// Insert stores p. The backend assigns id and created_at; the stored row is
// read back from the representation.
func (r *Repository) Insert(ctx context.Context, p *post.Post) (*post.Post, error) {
	body := map[string]any{
		"user_id":      p.UserID.String(),
		"image_url":    p.ImageURL,
		"content_text": p.ContentText,
	}
	var rows []postRow
	_, err := r.do(func() (*resty.Response, error) {
		return r.req(ctx).
			SetHeader("Prefer", preferReturn).
			SetQueryParam("select", postColumns).
			SetBody(body).
			SetResult(&rows).
			Post(postsPath)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("postgrest insert: empty representation")
	}
	return rows[0].entity(), nil
}

// Select maps the filter onto PostgREST query parameters.
func (r *Repository) Select(ctx context.Context, f postPort.Filter) ([]*postPort.PostDTO, error) {
	var rows []postRow
	_, err := r.do(func() (*resty.Response, error) {
		req := r.req(ctx).
			SetQueryParam("select", feedSelect).
			SetQueryParam("order", newestFirst).
			SetResult(&rows)
		if f.OwnerID != "" {
			req.SetQueryParam("user_id", "eq."+f.OwnerID)
		}
		if f.Limit > 0 {
			req.SetQueryParam("limit", strconv.Itoa(f.Limit))
		}
		return req.Get(postsPath)
	})
	if err != nil {
		return nil, err
	}

	out := make([]*postPort.PostDTO, 0, len(rows))
	for _, row := range rows {
		dto := &postPort.PostDTO{
			ID:          row.ID,
			UserID:      row.UserID,
			ImageURL:    row.ImageURL,
			ContentText: row.ContentText,
			CreatedAt:   row.CreatedAt,
		}
		if row.Profiles != nil {
			dto.AuthorDisplayName = row.Profiles.Username
		}
		out = append(out, dto)
	}
	return out, nil
}

// FindByID returns ErrNotFound for an empty result.
func (r *Repository) FindByID(ctx context.Context, id string) (*post.Post, error) {
	var rows []postRow
	_, err := r.do(func() (*resty.Response, error) {
		return r.req(ctx).
			SetQueryParam("select", postColumns).
			SetQueryParam("id", "eq."+id).
			SetResult(&rows).
			Get(postsPath)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("post %s: %w", id, apperr.ErrNotFound)
	}
	return rows[0].entity(), nil
}

// DeleteByID reports ErrNotFound when no row was removed, which includes rows
// the backend's own policies refused to delete.
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	var rows []postRow
	_, err := r.do(func() (*resty.Response, error) {
		return r.req(ctx).
			SetHeader("Prefer", preferReturn).
			SetQueryParam("id", "eq."+id).
			SetResult(&rows).
			Delete(postsPath)
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("post %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// Count reads the exact total from Content-Range.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.countTable(ctx, postsPath, "id")
}

func (r *Repository) countTable(ctx context.Context, path, column string) (int64, error) {
	res, err := r.do(func() (*resty.Response, error) {
		return r.req(ctx).
			SetHeader("Prefer", "count=exact").
			SetHeader("Range-Unit", "items").
			SetHeader("Range", "0-0").
			SetQueryParam("select", column).
			Get(path)
	})
	if err != nil {
		return 0, err
	}
	return count(res)
}
