package middleware

import (
	"errors"
	"net/http"
	"strings"

	"finsight/pkg/session"

	"github.com/gin-gonic/gin"
)

const (
	sessionKey = "session"
	userIDKey  = "user_id"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *gin.Context) (string, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// AuthMiddleware rejects requests without a live session.
func AuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		token, ok := BearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		s, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			message := "Invalid or expired token"
			if errors.Is(err, session.ErrRevoked) {
				message = "Session has been signed out"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": message})
			c.Abort()
			return
		}

		setSession(c, s)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches a session when a valid token is present
// and lets the request through either way.
func OptionalAuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			if s, err := sessions.Resolve(c.Request.Context(), token); err == nil {
				setSession(c, s)
			}
		}
		c.Next()
	}
}

func setSession(c *gin.Context, s *session.Session) {
	c.Set(sessionKey, s)
	c.Set(userIDKey, s.UserID)
}

// SetSession is exported for handler tests.
func SetSession(c *gin.Context, s *session.Session) {
	setSession(c, s)
}

// SessionFrom returns the request's session or nil.
func SessionFrom(c *gin.Context) *session.Session {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
