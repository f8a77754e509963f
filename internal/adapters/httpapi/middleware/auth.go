package middleware

import (
	"strings"

	"snippets/internal/core/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	SessionCookie = "snippets_session"
	sessionKey    = "session"
)

// SessionMiddleware resolves the caller once per request from the session
// cookie or an Authorization bearer header. Invalid tokens leave the request
// signed out.
func SessionMiddleware(resolver session.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := session.New(resolver)
		if err := sc.Resolve(c.Request.Context(), Token(c)); err != nil {
			logger.Debug("session not resolved", zap.Error(err))
		}
		c.Set(sessionKey, sc)
		if id := sc.UserID(); id != "" {
			c.Set("userID", id)
		}
		c.Next()
	}
}

// Token returns the bearer token, falling back to the session cookie.
func Token(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if tok, err := c.Cookie(SessionCookie); err == nil {
		return tok
	}
	return ""
}

// Session returns the request's session; a request that skipped the
// middleware is treated as signed out.
func Session(c *gin.Context) *session.Context {
	if v, ok := c.Get(sessionKey); ok {
		if sc, ok := v.(*session.Context); ok {
			return sc
		}
	}
	return session.Anonymous()
}
