package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"snippets/internal/core/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tokenResolver map[string]*session.User

func (r tokenResolver) ResolveToken(_ context.Context, tok string) (*session.User, error) {
	if u, ok := r[tok]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func (tokenResolver) Revoke(context.Context, *session.User) error { return nil }

func whoami(c *gin.Context) {
	sc := Session(c)
	c.JSON(http.StatusOK, gin.H{"id": sc.UserID(), "admin": sc.IsAdmin()})
}

func TestSessionMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(tokenResolver{"good": {ID: "u1", IsAdmin: true}}, zap.NewNop()))
	r.GET("/me", whoami)

	tests := []struct {
		name string
		set  func(*http.Request)
		want string
	}{
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, `{"admin":true,"id":"u1"}`},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "good"}) }, `{"admin":true,"id":"u1"}`},
		{"bad token", func(req *http.Request) { req.Header.Set("Authorization", "Bearer nope") }, `{"admin":false,"id":""}`},
		{"anonymous", func(*http.Request) {}, `{"admin":false,"id":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.set(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}

func TestSessionWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", whoami)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.JSONEq(t, `{"admin":false,"id":""}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	assert.Zero(t, rl.Sweep())
	assert.Equal(t, 1, rl.Forget(-1))
	assert.Empty(t, rl.clients)
}

func TestRequestLoggerEchoesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}
