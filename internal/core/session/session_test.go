package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	users   map[string]*User
	calls   int
	revoked []string
	fail    error
}

func (f *fakeResolver) ResolveToken(_ context.Context, token string) (*User, error) {
	f.calls++
	u, ok := f.users[token]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return u, nil
}

func (f *fakeResolver) Revoke(_ context.Context, u *User) error {
	if f.fail != nil {
		return f.fail
	}
	f.revoked = append(f.revoked, u.TokenID)
	return nil
}

func TestResolveOnce(t *testing.T) {
	r := &fakeResolver{users: map[string]*User{"tok": {ID: "u1", IsAdmin: true, TokenID: "j1"}}}
	sc := New(r)
	assert.True(t, sc.Resolving())
	assert.False(t, sc.Authenticated())

	require.NoError(t, sc.Resolve(context.Background(), "tok"))
	require.NoError(t, sc.Resolve(context.Background(), "other"))

	assert.False(t, sc.Resolving())
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, "u1", sc.UserID())
	assert.True(t, sc.IsAdmin())
}

func TestResolveWithoutToken(t *testing.T) {
	r := &fakeResolver{}
	sc := New(r)

	require.NoError(t, sc.Resolve(context.Background(), ""))
	assert.False(t, sc.Resolving())
	assert.False(t, sc.Authenticated())
	assert.Equal(t, 0, r.calls)
}

func TestResolveInvalidTokenIsSignedOut(t *testing.T) {
	sc := New(&fakeResolver{})

	err := sc.Resolve(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, sc.Resolving())
	assert.Empty(t, sc.UserID())
	assert.False(t, sc.IsAdmin())
}

func TestSignOut(t *testing.T) {
	r := &fakeResolver{users: map[string]*User{"tok": {ID: "u1", TokenID: "j1"}}}
	sc := New(r)
	require.NoError(t, sc.Resolve(context.Background(), "tok"))

	require.NoError(t, sc.SignOut(context.Background()))
	assert.False(t, sc.Authenticated())
	assert.Equal(t, []string{"j1"}, r.revoked)

	// signing out twice is harmless
	require.NoError(t, sc.SignOut(context.Background()))
	assert.Len(t, r.revoked, 1)
}

func TestSignOutFailureKeepsIdentity(t *testing.T) {
	r := &fakeResolver{users: map[string]*User{"tok": {ID: "u1"}}, fail: errors.New("store down")}
	sc := New(r)
	require.NoError(t, sc.Resolve(context.Background(), "tok"))

	assert.Error(t, sc.SignOut(context.Background()))
	assert.True(t, sc.Authenticated())
}

func TestPrebuiltContexts(t *testing.T) {
	assert.False(t, Anonymous().Resolving())
	assert.False(t, Anonymous().Authenticated())

	sc := WithUser(&User{ID: "u2"})
	assert.Equal(t, "u2", sc.UserID())
	assert.False(t, sc.IsAdmin())
}
