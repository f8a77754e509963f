package feed

import (
	"context"
	"errors"
	"sync"
	"testing"

	postPort "snippets/internal/ports/post"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLister struct {
	mu      sync.Mutex
	calls   []postPort.Filter
	results [][]*postPort.PostDTO
	errs    []error
	hooks   []func()
}

func (l *scriptedLister) List(_ context.Context, f postPort.Filter) ([]*postPort.PostDTO, error) {
	l.mu.Lock()
	i := len(l.calls)
	l.calls = append(l.calls, f)
	var hook func()
	if i < len(l.hooks) {
		hook = l.hooks[i]
	}
	l.mu.Unlock()

	if hook != nil {
		hook()
	}
	var err error
	if i < len(l.errs) {
		err = l.errs[i]
	}
	if err != nil {
		return nil, err
	}
	return l.results[i], nil
}

func posts(ids ...string) []*postPort.PostDTO {
	out := make([]*postPort.PostDTO, 0, len(ids))
	for _, id := range ids {
		out = append(out, &postPort.PostDTO{ID: id, ImageURL: "https://x.test/" + id + ".png"})
	}
	return out
}

func TestViewLoad(t *testing.T) {
	l := &scriptedLister{results: [][]*postPort.PostDTO{posts("a", "b")}}
	v := NewView(l, postPort.Filter{Limit: 100})
	assert.Equal(t, StateIdle, v.Snapshot().State)

	got, err := v.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	snap := v.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	assert.Equal(t, "a", snap.Posts[0].ID)
	assert.Equal(t, 100, l.calls[0].Limit)
}

func TestViewFailureKeepsNoData(t *testing.T) {
	boom := errors.New("boom")
	l := &scriptedLister{
		results: [][]*postPort.PostDTO{posts("a"), nil},
		errs:    []error{nil, boom},
	}
	v := NewView(l, postPort.Filter{})

	_, err := v.Load(context.Background())
	require.NoError(t, err)
	_, err = v.Load(context.Background())
	require.ErrorIs(t, err, boom)

	snap := v.Snapshot()
	assert.Equal(t, StateFailed, snap.State)
	assert.Empty(t, snap.Posts)
}

func TestViewDiscardsStaleResponse(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	l := &scriptedLister{
		results: [][]*postPort.PostDTO{posts("old"), posts("new")},
		hooks: []func(){func() {
			close(started)
			<-release
		}},
	}
	v := NewView(l, postPort.Filter{OwnerID: "u1"})

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = v.Load(context.Background())
	}()
	<-started

	got, err := v.SetFilter(context.Background(), postPort.Filter{OwnerID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, "new", got[0].ID)

	close(release)
	wg.Wait()
	require.ErrorIs(t, firstErr, ErrSuperseded)

	snap := v.Snapshot()
	assert.Equal(t, StateLoaded, snap.State)
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, "new", snap.Posts[0].ID)
	assert.Equal(t, "u2", v.Filter().OwnerID)
}

func TestViewRefresh(t *testing.T) {
	l := &scriptedLister{results: [][]*postPort.PostDTO{posts("a"), posts("b", "a")}}
	v := NewView(l, postPort.Filter{})
	_, err := v.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, v.Refresh(context.Background(), errors.New("mutation failed")))
	assert.Len(t, l.calls, 1)

	require.NoError(t, v.Refresh(context.Background(), nil))
	assert.Len(t, l.calls, 2)
	assert.Len(t, v.Snapshot().Posts, 2)
}
