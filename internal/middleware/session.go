package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dashboard/internal/session"
)

const sessionKey = "session"

// Sessions resolves the session cookie and exposes the session to handlers. Known sessions
// get their cookie renewed so the lifetime slides with activity; new sessions are only
// persisted when a handler saves them.
func Sessions(m *session.Manager, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token, _ := c.Cookie(m.CookieName())
		s, isNew, err := m.Load(c.Request.Context(), token)
		if err != nil {
			log.WithField("operation", "middleware.Sessions").Errorf("[session][load][err] %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !isNew {
			if err := m.WriteCookie(c.Writer, s); err != nil {
				log.WithField("operation", "middleware.Sessions").Warnf("[session][renew][err] %v", err)
			}
		}

		c.Set(sessionKey, s)
		c.Next()
	}
}

// CurrentSession returns the session set by Sessions, or nil when the middleware did not run.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
