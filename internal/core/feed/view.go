package feed

import (
	"context"
	"errors"
	"sync"

	postPort "snippets/internal/ports/post"
)

// ErrSuperseded is returned by a load whose response arrived after a newer
// load was issued. Its result has been dropped.
var ErrSuperseded = errors.New("feed: load superseded by a newer request")

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	}
	return "idle"
}

type Lister interface {
	List(ctx context.Context, f postPort.Filter) ([]*postPort.PostDTO, error)
}

// Snapshot is what a renderer sees of a View.
type Snapshot struct {
	State State
	Posts []*postPort.PostDTO
	Err   error
}

// View keeps the most recent listing for one filter. Loads may overlap; only
// the response for the newest issued request is applied.
type View struct {
	lister Lister

	mu     sync.Mutex
	filter postPort.Filter
	state  State
	posts  []*postPort.PostDTO
	err    error
	issued uint64
}

// NewView starts idle with filter f.
func NewView(lister Lister, f postPort.Filter) *View {
	return &View{lister: lister, filter: f}
}

// Load fetches posts; a result that arrives after a newer Load started is dropped.
func (v *View) Load(ctx context.Context) ([]*postPort.PostDTO, error) {
	v.mu.Lock()
	v.issued++
	token := v.issued
	f := v.filter
	v.state = StateLoading
	v.mu.Unlock()

	posts, err := v.lister.List(ctx, f)

	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.issued {
		return nil, ErrSuperseded
	}
	if err != nil {
		v.state = StateFailed
		v.posts = nil
		v.err = err
		return nil, err
	}
	v.state = StateLoaded
	v.posts = posts
	v.err = nil
	return posts, nil
}

// SetFilter switches the filter and reloads.
func (v *View) SetFilter(ctx context.Context, f postPort.Filter) ([]*postPort.PostDTO, error) {
	v.mu.Lock()
	v.filter = f
	v.mu.Unlock()
	return v.Load(ctx)
}

// Refresh re-lists after a child mutation. A failed mutation leaves the
// current listing in place.
func (v *View) Refresh(ctx context.Context, mutationErr error) error {
	if mutationErr != nil {
		return nil
	}
	_, err := v.Load(ctx)
	return err
}

func (v *View) Filter() postPort.Filter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	posts := make([]*postPort.PostDTO, len(v.posts))
	copy(posts, v.posts)
	return Snapshot{State: v.state, Posts: posts, Err: v.err}
}
