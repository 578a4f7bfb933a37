package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/faqbot/internal/infra/config"
)

const defaultSessionCookie = "session_id"

type sessionIssuer struct {
	name   string
	maxAge time.Duration
	secure bool
}

func newSessionIssuer(cfg config.SessionConfig) sessionIssuer {
	name := cfg.CookieName
	if name == "" {
		name = defaultSessionCookie
	}
	return sessionIssuer{name: name, maxAge: cfg.MaxAge, secure: cfg.Secure}
}

// ensure returns the caller's session id, issuing a cookie when missing or
// malformed.
func (s sessionIssuer) ensure(c *gin.Context) string {
	if raw, err := c.Cookie(s.name); err == nil {
		if id, err := uuid.Parse(raw); err == nil {
			return id.String()
		}
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.name, id, int(s.maxAge.Seconds()), "/", "", s.secure, true)
	return id
}
