package feed

import (
	"context"
	"sync"

	"snippets/internal/core/apperr"
	postPort "snippets/internal/ports/post"
)

type ImageState int

const (
	ImagePending ImageState = iota
	ImageLoaded
	ImageErrored
)

func (s ImageState) String() string {
	switch s {
	case ImageLoaded:
		return "loaded"
	case ImageErrored:
		return "errored"
	}
	return "pending"
}

// ImageProber checks that a URL serves an image.
type ImageProber interface {
	Probe(ctx context.Context, url string) error
}

// Actions is the subset of the post service a card mutates through.
type Actions interface {
	SaveToWall(ctx context.Context, actor postPort.Actor, postID string) (string, error)
	Remove(ctx context.Context, actor postPort.Actor, postID string) error
}

// Guard tracks saves in flight per viewer and post.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]struct{})}
}

func (g *Guard) acquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

func (g *Guard) release(key string) {
	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
}

type Card struct {
	Post *postPort.PostDTO

	viewer       postPort.Actor
	actions      Actions
	guard        *Guard
	adminContext bool

	mu    sync.Mutex
	image ImageState
}

// NewCard binds a post to the viewer looking at it. adminContext is set on the
// admin dashboard, where administrators may delete any card.
func NewCard(p *postPort.PostDTO, viewer postPort.Actor, actions Actions, guard *Guard, adminContext bool) *Card {
	return &Card{Post: p, viewer: viewer, actions: actions, guard: guard, adminContext: adminContext}
}

func (c *Card) Image() ImageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.image
}

func (c *Card) ImageLoaded() { c.settle(ImageLoaded) }

func (c *Card) ImageErrored() { c.settle(ImageErrored) }

// settle moves the image out of Pending; later signals are ignored.
func (c *Card) settle(s ImageState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.image == ImagePending {
		c.image = s
	}
}

// ProbeImage settles the image state once from prober.
func (c *Card) ProbeImage(ctx context.Context, prober ImageProber) ImageState {
	if err := prober.Probe(ctx, c.Post.ImageURL); err != nil {
		c.ImageErrored()
	} else {
		c.ImageLoaded()
	}
	return c.Image()
}

func (c *Card) IsOwner() bool {
	id := c.viewer.UserID()
	return id != "" && id == c.Post.UserID
}

func (c *Card) CanSave() bool {
	return !c.IsOwner()
}

// CanDelete holds for the owner and for admins.
func (c *Card) CanDelete() bool {
	return c.IsOwner() || (c.adminContext && c.viewer.IsAdmin())
}

// SaveToWall copies the post onto the viewer's wall. A second save of the same
// post by the same viewer fails with ErrSaveInFlight until the first returns.
func (c *Card) SaveToWall(ctx context.Context) (Notice, error) {
	if c.viewer.UserID() == "" {
		return SignInRequired(ActionSave), apperr.ErrUnauthenticated
	}
	key := c.viewer.UserID() + "/" + c.Post.ID
	if !c.guard.acquire(key) {
		return Notice{}, apperr.ErrSaveInFlight
	}
	defer c.guard.release(key)

	if _, err := c.actions.SaveToWall(ctx, c.viewer, c.Post.ID); err != nil {
		return Failure(ActionSave, err), err
	}
	return Success(ActionSave), nil
}

// Delete removes the post immediately; there is no confirmation step.
func (c *Card) Delete(ctx context.Context) (Notice, error) {
	if c.viewer.UserID() == "" {
		return Failure(ActionDelete, apperr.ErrUnauthenticated), apperr.ErrUnauthenticated
	}
	if !c.CanDelete() {
		return Failure(ActionDelete, apperr.ErrForbidden), apperr.ErrForbidden
	}
	if err := c.actions.Remove(ctx, c.viewer, c.Post.ID); err != nil {
		return Failure(ActionDelete, err), err
	}
	return Success(ActionDelete), nil
}
