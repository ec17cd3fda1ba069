// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/pkg/auth"
)

const (
	// AccessTokenCookie carries the access token for browser clients
	AccessTokenCookie = "access_token"
	// LoginPath is where unauthenticated browser requests are sent
	LoginPath = "/login/"

	jsonOnlyKey = "json_only"
)

// Authenticate reads the access token from the Authorization header or the
// access token cookie. Requests without a valid token continue anonymously.
func Authenticate(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			tokenString, _ = c.Cookie(AccessTokenCookie)
		}
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("is_admin", claims.IsAdmin)
		c.Set("token_claims", claims)

		c.Next()
	}
}

// RequireAuth stops anonymous requests. AJAX and API clients get a 401 with
// the login location, browsers are redirected to it.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserIDFromContext(c); ok {
			c.Next()
			return
		}
		AbortUnauthenticated(c)
	}
}

// AdminOnly must run after RequireAuth
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdminFromContext(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "Admin access required",
			})
			return
		}
		c.Next()
	}
}

// JSONOnly marks every response of the group as JSON, never a redirect
func JSONOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(jsonOnlyKey, true)
		c.Next()
	}
}

// AbortUnauthenticated answers an anonymous request to a protected resource
func AbortUnauthenticated(c *gin.Context) {
	if IsAJAX(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success":  false,
			"error":    "Authentication required",
			"redirect": LoginPath,
		})
		return
	}
	c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

// IsAJAX reports whether the client expects JSON rather than a page
func IsAJAX(c *gin.Context) bool {
	if c.GetBool(jsonOnlyKey) {
		return true
	}
	if c.GetHeader("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json") ||
		strings.HasPrefix(c.ContentType(), "application/json")
}

// GetUserIDFromContext extracts user ID from gin context
func GetUserIDFromContext(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmailFromContext extracts user email from gin context
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get("user_email")
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// IsAdminFromContext checks if user is admin from gin context
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetBool("is_admin")
}
