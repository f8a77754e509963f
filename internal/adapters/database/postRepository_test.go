package database

import (
	"context"
	"testing"
	"time"

	"snippets/internal/core/apperr"
	"snippets/internal/core/post"
	postPort "snippets/internal/ports/post"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertPost(t *testing.T, repo *PostRepositoryDatabase, owner uuid.UUID, url string, at time.Time) *post.Post {
	t.Helper()
	p, err := repo.Insert(context.Background(), &post.Post{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    owner,
		ImageURL:  url,
		CreatedAt: at,
	})
	require.NoError(t, err)
	return p
}

func TestSelectOrdersNewestFirstWithAuthor(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepositoryDatabase(db)
	profiles := NewProfileRepositoryDatabase(db)
	ctx := context.Background()

	alice := uuid.Must(uuid.NewV4())
	bob := uuid.Must(uuid.NewV4())
	require.NoError(t, profiles.SaveProfile(ctx, &post.Profile{UserID: alice, Username: strPtr("alice")}))

	base := time.Now().UTC().Add(-time.Hour)
	insertPost(t, repo, alice, "https://img.test/1.png", base)
	insertPost(t, repo, bob, "https://img.test/2.png", base.Add(time.Minute))
	insertPost(t, repo, alice, "https://img.test/3.png", base.Add(2*time.Minute))

	all, err := repo.Select(ctx, postPort.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "https://img.test/3.png", all[0].ImageURL)
	assert.Equal(t, "https://img.test/1.png", all[2].ImageURL)
	require.NotNil(t, all[0].AuthorDisplayName)
	assert.Equal(t, "alice", *all[0].AuthorDisplayName)
	assert.Nil(t, all[1].AuthorDisplayName)

	wall, err := repo.Select(ctx, postPort.Filter{OwnerID: alice.String()})
	require.NoError(t, err)
	assert.Len(t, wall, 2)
	for _, p := range wall {
		assert.Equal(t, alice.String(), p.UserID)
	}

	capped, err := repo.Select(ctx, postPort.Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestFindAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepositoryDatabase(db)
	ctx := context.Background()

	p := insertPost(t, repo, uuid.Must(uuid.NewV4()), "https://img.test/a.png", time.Now().UTC())

	got, err := repo.FindByID(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.ImageURL, got.ImageURL)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.DeleteByID(ctx, p.ID.String()))
	_, err = repo.FindByID(ctx, p.ID.String())
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, repo.DeleteByID(ctx, p.ID.String()), apperr.ErrNotFound)
}

func TestSelectProfilesOrder(t *testing.T) {
	db := newTestDB(t)
	profiles := NewProfileRepositoryDatabase(db)
	ctx := context.Background()

	ids := []uuid.UUID{
		uuid.FromStringOrNil("00000000-0000-4000-8000-000000000002"),
		uuid.FromStringOrNil("00000000-0000-4000-8000-000000000001"),
		uuid.FromStringOrNil("00000000-0000-4000-8000-000000000003"),
	}
	require.NoError(t, profiles.SaveProfile(ctx, &post.Profile{UserID: ids[0]}))
	require.NoError(t, profiles.SaveProfile(ctx, &post.Profile{UserID: ids[1]}))
	require.NoError(t, profiles.SaveProfile(ctx, &post.Profile{UserID: ids[2], Username: strPtr("zed")}))

	got, err := profiles.SelectProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "zed", *got[0].Username)
	assert.Equal(t, ids[1], got[1].UserID)
	assert.Equal(t, ids[0], got[2].UserID)
	assert.Equal(t, post.UnnamedUser, got[1].DisplayName())

	require.NoError(t, profiles.SaveProfile(ctx, &post.Profile{UserID: ids[0], Username: strPtr("amy")}))
	p, err := profiles.FindProfile(ctx, ids[0].String())
	require.NoError(t, err)
	assert.Equal(t, "amy", *p.Username)

	n, err := profiles.CountProfiles(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = profiles.FindProfile(ctx, uuid.Must(uuid.NewV4()).String())
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
