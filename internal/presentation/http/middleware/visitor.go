package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osamaqaseem39/couture-edge/internal/application/services"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/security"
	"github.com/osamaqaseem39/couture-edge/pkg/config"
)

// Gin context keys set by VisitorMiddleware.
const (
	ContextVisitorID = "visitorId"
	ContextSessionID = "sessionId"
)

// VisitorMiddleware establishes the visitor and session identity for every
// request. A missing visitor cookie gets a fresh ULID with a one-year
// lifetime; a missing session cookie gets a per-browser-session UUID. The
// behavior record is bootstrapped before any handler runs, so handlers can
// assume it exists.
func VisitorMiddleware(behaviorService *services.BehaviorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		visitorID, err := c.Cookie(config.VisitorCookieName)
		if err != nil || visitorID == "" {
			visitorID = security.NewVisitorID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(
				config.VisitorCookieName,
				visitorID,
				int(config.VisitorCookieMaxAge.Seconds()),
				"/",
				config.CookieDomain,
				false,
				true,
			)
		}

		sessionID, err := c.Cookie(config.SessionCookieName)
		if err != nil || sessionID == "" {
			sessionID = security.NewSessionID()
			c.SetSameSite(http.SameSiteLaxMode)
			// Session cookie, no max-age: gone when the browser closes.
			c.SetCookie(config.SessionCookieName, sessionID, 0, "/", config.CookieDomain, false, true)
		}

		if _, err := behaviorService.Bootstrap(visitorID, sessionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initialize visitor"})
			c.Abort()
			return
		}

		c.Set(ContextVisitorID, visitorID)
		c.Set(ContextSessionID, sessionID)
		c.Next()
	}
}

// VisitorID returns the visitor identity established by VisitorMiddleware.
func VisitorID(c *gin.Context) string {
	return c.GetString(ContextVisitorID)
}

// SessionID returns the session identity established by VisitorMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}
