package imageprobe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cat.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	})
	mux.HandleFunc("/page.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	})
	mux.HandleFunc("/nohead.jpg", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte{0xff})
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := newProber(200*time.Millisecond, func(net.IP, string) bool { return true })
	t.Cleanup(func() { _ = p.Close() })
	ctx := context.Background()

	require.NoError(t, p.Probe(ctx, srv.URL+"/cat.png"))
	require.NoError(t, p.Probe(ctx, srv.URL+"/nohead.jpg"))
	assert.ErrorIs(t, p.Probe(ctx, srv.URL+"/page.html"), ErrNotImage)
	assert.ErrorIs(t, p.Probe(ctx, srv.URL+"/missing.png"), ErrNotImage)
	assert.Error(t, p.Probe(ctx, srv.URL+"/slow.png"))
}

func TestProbeRefusesInternalAddresses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
	}))
	t.Cleanup(srv.Close)

	p := New(time.Second)
	t.Cleanup(func() { _ = p.Close() })

	err := p.Probe(context.Background(), srv.URL+"/cat.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrBlockedAddress.Error())
	assert.Zero(t, hits.Load())
}

func TestProbeRefusesRedirectToInternalAddress(t *testing.T) {
	var internalHits atomic.Int32
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		internalHits.Add(1)
		w.Header().Set("Content-Type", "image/png")
	}))
	t.Cleanup(internal.Close)
	_, internalPort, err := net.SplitHostPort(internal.Listener.Addr().String())
	require.NoError(t, err)

	front := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internal.URL+"/cat.png", http.StatusFound)
	}))
	t.Cleanup(front.Close)

	// Both servers listen on loopback; only the redirect target's port is refused.
	p := newProber(time.Second, func(_ net.IP, port string) bool { return port != internalPort })
	t.Cleanup(func() { _ = p.Close() })

	err = p.Probe(context.Background(), front.URL+"/start")
	require.Error(t, err)
	assert.Zero(t, internalHits.Load())
}

func TestPublicAddress(t *testing.T) {
	blocked := []string{
		"127.0.0.1", "::1", "10.1.2.3", "172.16.0.9", "192.168.1.1",
		"169.254.169.254", "fe80::1", "0.0.0.0", "::", "100.64.0.7", "fd00::1", "224.0.0.1",
	}
	for _, raw := range blocked {
		assert.False(t, publicAddress(net.ParseIP(raw)), raw)
	}
	for _, raw := range []string{"93.184.216.34", "8.8.8.8", "2606:4700::1111"} {
		assert.True(t, publicAddress(net.ParseIP(raw)), raw)
	}
}
