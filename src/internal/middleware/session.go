package middleware

import (
	"net/http"
	"time"

	"showroom-presence-svc/src/internal/config"
	"showroom-presence-svc/src/internal/presence"
	"showroom-presence-svc/src/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionTracker records every request in the presence store and keeps the
// session cookie up to date.
type SessionTracker struct {
	tokens    *session.TokenManager
	presence  presence.Service
	cfg       config.SessionSettings
	skipPaths map[string]struct{}
	now       func() time.Time
}

func NewSessionTracker(tokens *session.TokenManager, presenceService presence.Service,
	cfg config.SessionSettings, skipPaths []string) *SessionTracker {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return &SessionTracker{
		tokens:    tokens,
		presence:  presenceService,
		cfg:       cfg,
		skipPaths: skip,
		now:       time.Now,
	}
}

func (m *SessionTracker) Track() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, skip := m.skipPaths[c.Request.URL.Path]; skip {
			c.Next()
			return
		}

		visit := presence.Visit{
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			Path:      c.Request.URL.Path,
		}
		if visit.UserAgent == "" {
			visit.UserAgent = presence.UnknownAgent
		}

		if claims := m.readClaims(c); claims != nil {
			visit.SessionID = claims.SessionID
			visit.CreatedAt = claims.CreatedAt
		}

		rec := m.presence.Track(visit)

		token, err := m.tokens.Issue(rec.SessionID, rec.CreatedAt, rec.LastSeen, m.now())
		if err != nil {
			logrus.WithError(err).WithField("session_id", rec.SessionID).Error("Failed to issue session cookie")
		} else {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(m.cfg.CookieName, token, int(m.tokens.MaxAge().Seconds()), "/", "", m.cfg.Secure, m.cfg.HttpOnly)
		}

		c.Set(session.ContextKeyID, rec.SessionID)

		c.Next()
	}
}

func (m *SessionTracker) readClaims(c *gin.Context) *session.Claims {
	cookie, err := c.Cookie(m.cfg.CookieName)
	if err != nil || cookie == "" {
		return nil
	}

	claims, err := m.tokens.Parse(cookie)
	if err != nil {
		logrus.WithError(err).Debug("Ignoring invalid session cookie")
		return nil
	}
	return claims
}
