// Package session holds the per-request authentication state every view reads.
// A Context is built explicitly for each request, resolved once, and cleared
// on sign-out; nothing here is process-global.
package session

import (
	"context"
	"sync"
	"time"
)

// User is a resolved identity.
type User struct {
	ID          string
	Email       string
	DisplayName *string
	IsAdmin     bool
	TokenID     string
	ExpiresAt   time.Time
}

// Resolver turns a bearer token into a User and revokes it again.
type Resolver interface {
	ResolveToken(ctx context.Context, token string) (*User, error)
	Revoke(ctx context.Context, u *User) error
}

type Context struct {
	resolver Resolver

	mu        sync.RWMutex
	resolving bool
	user      *User
}

// New starts in the resolving state until Resolve is called.
func New(resolver Resolver) *Context {
	return &Context{resolver: resolver, resolving: true}
}

// Anonymous is an already-resolved, signed-out context.
func Anonymous() *Context {
	return &Context{}
}

// WithUser is an already-resolved context for u.
func WithUser(u *User) *Context {
	return &Context{user: u}
}

// Resolve runs once; later calls are no-ops. An empty token resolves to a
// signed-out session. A resolver error also leaves the session signed out.
func (c *Context) Resolve(ctx context.Context, token string) error {
	c.mu.RLock()
	done := !c.resolving
	c.mu.RUnlock()
	if done {
		return nil
	}

	var (
		u   *User
		err error
	)
	if token != "" && c.resolver != nil {
		u, err = c.resolver.ResolveToken(ctx, token)
		if err != nil {
			u = nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolving {
		c.user = u
		c.resolving = false
	}
	return err
}

func (c *Context) Resolving() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolving
}

func (c *Context) User() (*User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user, c.user != nil
}

func (c *Context) UserID() string {
	if u, ok := c.User(); ok {
		return u.ID
	}
	return ""
}

// IsAdmin is false for signed-out callers.
func (c *Context) IsAdmin() bool {
	u, ok := c.User()
	return ok && u.IsAdmin
}

func (c *Context) Authenticated() bool {
	_, ok := c.User()
	return ok
}

// SignOut revokes the current token and clears the identity. It returns only
// after the revocation finished, so callers may navigate away afterwards.
func (c *Context) SignOut(ctx context.Context) error {
	u, ok := c.User()
	if !ok {
		return nil
	}
	if c.resolver != nil {
		if err := c.resolver.Revoke(ctx, u); err != nil {
			return err
		}
	}
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
	return nil
}
