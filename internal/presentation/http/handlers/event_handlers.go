package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osamaqaseem39/couture-edge/internal/application/services"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/presentation/http/middleware"
)

// PageViewRequest is the tracked page navigation payload.
type PageViewRequest struct {
	Page string `json:"page" binding:"required"`
}

// SearchRequest is the tracked catalog search payload.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// ProductViewRequest is the tracked product detail view payload.
type ProductViewRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Category  string `json:"category"`
	Brand     string `json:"brand"`
}

// CartActionRequest is the tracked cart event payload.
type CartActionRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

// EventHandlers contains the behavior tracking HTTP handlers.
type EventHandlers struct {
	behaviorService *services.BehaviorService
	logger          *logging.ChanneledLogger
}

// NewEventHandlers creates event handlers with injected dependencies.
func NewEventHandlers(behaviorService *services.BehaviorService, logger *logging.ChanneledLogger) *EventHandlers {
	return &EventHandlers{
		behaviorService: behaviorService,
		logger:          logger,
	}
}

// TrackPageView records one page navigation for the current visitor.
func (h *EventHandlers) TrackPageView(c *gin.Context) {
	var req PageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.behaviorService.TrackPageView(middleware.VisitorID(c), req.Page); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true})
}

// TrackSearch records one catalog search for the current visitor.
func (h *EventHandlers) TrackSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.behaviorService.TrackSearch(middleware.VisitorID(c), req.Query); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true})
}

// TrackProductView records one product detail view for the current visitor.
func (h *EventHandlers) TrackProductView(c *gin.Context) {
	var req ProductViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.behaviorService.TrackProductView(middleware.VisitorID(c), req.ProductID, req.Category, req.Brand); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true})
}

// TrackCartAction records one cart event for the current visitor.
func (h *EventHandlers) TrackCartAction(c *gin.Context) {
	var req CartActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.behaviorService.TrackCartAction(middleware.VisitorID(c), req.ProductID, req.Action); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracked": true})
}
