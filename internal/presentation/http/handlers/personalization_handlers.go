package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osamaqaseem39/couture-edge/internal/application/services"
	"github.com/osamaqaseem39/couture-edge/internal/domain/visitor"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/security"
	"github.com/osamaqaseem39/couture-edge/internal/presentation/http/middleware"
	"github.com/osamaqaseem39/couture-edge/pkg/config"
)

// PersonalizationHandlers contains the personalization and visitor-profile
// HTTP handlers.
type PersonalizationHandlers struct {
	personalizationService *services.PersonalizationService
	behaviorService        *services.BehaviorService
	logger                 *logging.ChanneledLogger
}

// NewPersonalizationHandlers creates personalization handlers with injected
// dependencies.
func NewPersonalizationHandlers(
	personalizationService *services.PersonalizationService,
	behaviorService *services.BehaviorService,
	logger *logging.ChanneledLogger,
) *PersonalizationHandlers {
	return &PersonalizationHandlers{
		personalizationService: personalizationService,
		behaviorService:        behaviorService,
		logger:                 logger,
	}
}

// GetRecommendations serves the visitor's recommendation payload.
func (h *PersonalizationHandlers) GetRecommendations(c *gin.Context) {
	recs, err := h.personalizationService.Recommendations(c.Request.Context(), middleware.VisitorID(c))
	if err != nil {
		h.logger.Analytics().Error("Recommendation computation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendations unavailable"})
		return
	}
	c.JSON(http.StatusOK, recs)
}

// UpdatePreferences shallow-merges supplied fields into the visitor's
// explicit preferences.
func (h *PersonalizationHandlers) UpdatePreferences(c *gin.Context) {
	var patch visitor.PreferencesPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	record, err := h.behaviorService.UpdatePreferences(middleware.VisitorID(c), patch)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": record.Preferences})
}

// GetBehavior serves the visitor's full behavior record.
func (h *PersonalizationHandlers) GetBehavior(c *gin.Context) {
	record, ok := h.behaviorService.Behavior(middleware.VisitorID(c))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no behavior record"})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetAnalyticsSummary serves the aggregate analytics view of the visitor.
func (h *PersonalizationHandlers) GetAnalyticsSummary(c *gin.Context) {
	summary, err := h.behaviorService.Summary(middleware.VisitorID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ClearUserData deletes all tracked behavior for the visitor, rotates the
// visitor cookie to a fresh identity, and bootstraps an empty record under
// it. Calling it repeatedly is safe.
func (h *PersonalizationHandlers) ClearUserData(c *gin.Context) {
	newID := security.NewVisitorID()

	record, err := h.behaviorService.Clear(middleware.VisitorID(c), newID, middleware.SessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		config.VisitorCookieName,
		newID,
		int(config.VisitorCookieMaxAge.Seconds()),
		"/",
		config.CookieDomain,
		false,
		true,
	)
	c.JSON(http.StatusOK, gin.H{"cleared": true, "userId": record.UserID})
}
