package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osamaqaseem39/couture-edge/internal/application/services"
	"github.com/osamaqaseem39/couture-edge/internal/domain/visitor"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/caching/stores"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/performance"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/persistence/kv"
	"github.com/osamaqaseem39/couture-edge/pkg/config"
)

func newTestEngine(t *testing.T) (*gin.Engine, *services.BehaviorService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		DefaultLevel:  slog.LevelError + 4,
		ChannelLevels: make(map[logging.Channel]slog.Level),
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	tracker := performance.NewTracker(time.Minute, logger)

	behaviorSvc := services.NewBehaviorService(
		stores.NewVisitorsStore(kv.NewMemoryStore(), logger),
		visitor.Caps{PageViews: 50, Searches: 20, ProductViews: 100, CartActions: 200, Observations: 100},
		0, 10000, 3, logger, tracker,
	)

	r := gin.New()
	r.Use(VisitorMiddleware(behaviorSvc))
	r.GET("/landing", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"visitorId": VisitorID(c), "sessionId": SessionID(c)})
	})
	return r, behaviorSvc
}

func TestMiddlewareMintsVisitorCookie(t *testing.T) {
	r, behaviorSvc := newTestEngine(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/landing", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", w.Code)
	}

	var visitorCookie, sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		switch c.Name {
		case config.VisitorCookieName:
			visitorCookie = c
		case config.SessionCookieName:
			sessionCookie = c
		}
	}
	if visitorCookie == nil {
		t.Fatal("expected visitor cookie to be set")
	}
	if visitorCookie.MaxAge != int(config.VisitorCookieMaxAge.Seconds()) {
		t.Errorf("expected one-year max-age, got %d", visitorCookie.MaxAge)
	}
	if visitorCookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", visitorCookie.SameSite)
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.MaxAge != 0 {
		t.Errorf("session cookie must not carry a max-age, got %d", sessionCookie.MaxAge)
	}

	if _, ok := behaviorSvc.Behavior(visitorCookie.Value); !ok {
		t.Error("expected behavior record bootstrapped for new visitor")
	}
}

func TestMiddlewareReusesExistingIdentity(t *testing.T) {
	r, behaviorSvc := newTestEngine(t)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/landing", nil))

	var visitorID, sessionID string
	for _, c := range first.Result().Cookies() {
		switch c.Name {
		case config.VisitorCookieName:
			visitorID = c.Value
		case config.SessionCookieName:
			sessionID = c.Value
		}
	}

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/landing", nil)
	req.AddCookie(&http.Cookie{Name: config.VisitorCookieName, Value: visitorID})
	req.AddCookie(&http.Cookie{Name: config.SessionCookieName, Value: sessionID})
	r.ServeHTTP(second, req)

	for _, c := range second.Result().Cookies() {
		if c.Name == config.VisitorCookieName && c.Value != visitorID {
			t.Error("known visitor must keep their cookie")
		}
	}
	if !strings.Contains(second.Body.String(), visitorID) {
		t.Error("handler should see the existing visitor id")
	}

	record, ok := behaviorSvc.Behavior(visitorID)
	if !ok {
		t.Fatal("expected record for returning visitor")
	}
	if record.VisitCount != 1 {
		t.Errorf("same session must not bump visitCount, got %d", record.VisitCount)
	}
}
