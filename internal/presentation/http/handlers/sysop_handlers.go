package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/osamaqaseem39/couture-edge/internal/application/services"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/performance"
	"github.com/osamaqaseem39/couture-edge/pkg/config"
)

// SysOpHandlers handles operator authentication and the runtime dashboard
// endpoints.
type SysOpHandlers struct {
	authService     *services.AuthService
	catalogService  *services.CatalogService
	behaviorService *services.BehaviorService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewSysOpHandlers creates sysop handlers with injected dependencies.
func NewSysOpHandlers(
	authService *services.AuthService,
	catalogService *services.CatalogService,
	behaviorService *services.BehaviorService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *SysOpHandlers {
	return &SysOpHandlers{
		authService:     authService,
		catalogService:  catalogService,
		behaviorService: behaviorService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

// AuthCheck reports whether sysop access is configured and whether the
// caller's token is valid.
func (h *SysOpHandlers) AuthCheck(c *gin.Context) {
	response := gin.H{
		"passwordRequired": config.SysopPasswordHash != "",
		"authenticated":    false,
	}
	if config.SysopPasswordHash == "" {
		response["message"] = "Set SYSOP_PASSWORD_HASH to protect the operator endpoints"
	}
	if h.authService.ValidateSysop(bearerToken(c)) {
		response["authenticated"] = true
	}
	c.JSON(http.StatusOK, response)
}

// Login authenticates the operator and issues a JWT.
func (h *SysOpHandlers) Login(c *gin.Context) {
	var request struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result := h.authService.AuthenticateSysop(request.Password)
	if !result.Success {
		c.JSON(http.StatusUnauthorized, gin.H{"error": result.Error})
		return
	}
	c.JSON(http.StatusOK, result)
}

// SysOpAuthMiddleware guards the authenticated operator endpoints.
func (h *SysOpHandlers) SysOpAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.authService.ValidateSysop(bearerToken(c)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActivityMetrics reports live cache and visitor counts plus the
// per-operation performance snapshot.
func (h *SysOpHandlers) GetActivityMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"catalog":        h.catalogService.Status(),
		"activeVisitors": h.behaviorService.ActiveVisitors(),
		"operations":     h.perfTracker.Snapshot(),
		"uptimeSeconds":  h.perfTracker.Uptime().Seconds(),
	})
}

// ClearCatalogCache drops the stored snapshot so the next storefront load
// refetches the catalog.
func (h *SysOpHandlers) ClearCatalogCache(c *gin.Context) {
	if err := h.catalogService.ClearSnapshot(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.logger.Cache().Info("Catalog snapshot cleared by operator")
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// GetLogLevels reports the current level of every log channel.
func (h *SysOpHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"levels": h.logger.ChannelLevels()})
}

// SetLogLevel adjusts one channel's level at runtime.
func (h *SysOpHandlers) SetLogLevel(c *gin.Context) {
	var request struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var level slog.Level
	switch strings.ToLower(request.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown level " + request.Level})
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(request.Channel), level); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel": request.Channel, "level": request.Level})
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
