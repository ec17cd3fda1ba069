package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hackerz/marketplace/internal/pkg/session"
)

// SessionCookie identifies the visitor session, and with it the cart
const SessionCookie = "session_id"

const sessionKey = "session"

// Session attaches the visitor session to the request, issuing a new
// session token when the cookie is missing or malformed.
func Session(store session.Store, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, int(ttl.Seconds()), "/", "", secure, true)
		c.Set(sessionKey, session.New(id, store, ttl))

		c.Next()
	}
}

// GetSession returns the session attached by Session
func GetSession(c *gin.Context) *session.Session {
	sess, _ := c.MustGet(sessionKey).(*session.Session)
	return sess
}
