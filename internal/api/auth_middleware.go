package api

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hexxt-git/knowdown/internal/constants"
)

// Context keys populated by AuthRequired.
const (
	ctxUserSubject = "userSubject"
	ctxUserName    = "userName"
)

// setSessionCookie sets the session cookie with appropriate flags for
// dev/prod.
func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	secure := os.Getenv(constants.EnvSessionSecureCookie) == "1"
	c.SetCookie(constants.CookieSessionName, token, int(ttl.Seconds()), "/", "", secure, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(constants.CookieSessionName, "", -1, "/", "", false, true)
}

// AuthRequired validates the session cookie and injects identity into the
// request context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(constants.CookieSessionName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrAuthRequired})
			return
		}
		claims, err := parseAndValidateSession(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{constants.JSONKeyError: constants.ErrInvalidSession})
			return
		}
		c.Set(ctxUserSubject, claims.Sub)
		c.Set(ctxUserName, claims.Name)
		c.Next()
	}
}

// subjectFromContext returns the authenticated identity subject, or ""
// when the request is unauthenticated.
func subjectFromContext(c *gin.Context) string {
	if v, ok := c.Get(ctxUserSubject); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}
