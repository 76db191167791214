package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

type TokenValidator interface {
	ValidateToken(token string) (auth.Session, error)
}

type MaintenanceChecker interface {
	MaintenanceMode(ctx context.Context) (bool, error)
}

// AuthMiddleware is the security guard for every protected route. It reads
// the Bearer token (or the "token" query parameter, which websocket clients
// use), rejects invalid tokens and, while maintenance mode is on, turns away
// everyone except admins.
func AuthMiddleware(tokens TokenValidator, settings MaintenanceChecker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get the token ---
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		// 2. --- Validate token ---
		session, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- Enforce maintenance mode ---
		// A failed lookup counts as off, same as a missing setting.
		if !session.IsAdmin() {
			on, err := settings.MaintenanceMode(c.Request.Context())
			if err != nil {
				logger.WarnContext(c.Request.Context(), "maintenance mode check failed", slog.Any("error", err))
			}
			if on {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error": "The system is currently in maintenance mode. Please try again later.",
				})
				return
			}
		}

		// 4. --- Success ---
		c.Set(sessionKey, session)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if t := c.Query("token"); t != "" {
			return t, true
		}
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session not found (AuthMiddleware must run first)"})
			return
		}
		if !slices.Contains(roles, session.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		c.Next()
	}
}

// SessionFrom returns the session AuthMiddleware stored on the context.
func SessionFrom(c *gin.Context) (auth.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return auth.Session{}, false
	}
	s, ok := v.(auth.Session)
	return s, ok
}
