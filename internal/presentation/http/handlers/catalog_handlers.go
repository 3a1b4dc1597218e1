// Package handlers provides HTTP handlers for the presentation layer.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osamaqaseem39/couture-edge/internal/application/services"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/pkg/config"
)

// CatalogHandlers contains the catalog-facing HTTP handlers.
type CatalogHandlers struct {
	catalogService *services.CatalogService
	logger         *logging.ChanneledLogger
}

// NewCatalogHandlers creates catalog handlers with injected dependencies.
func NewCatalogHandlers(catalogService *services.CatalogService, logger *logging.ChanneledLogger) *CatalogHandlers {
	return &CatalogHandlers{
		catalogService: catalogService,
		logger:         logger,
	}
}

// GetProducts serves a filtered, paginated slice of the catalog snapshot.
func (h *CatalogHandlers) GetProducts(c *gin.Context) {
	start := time.Now()

	filter := services.ProductFilter{
		Category: c.Query("category"),
		Brand:    c.Query("brand"),
		Search:   c.Query("search"),
		PriceMin: queryFloat(c, "priceMin", 0),
		PriceMax: queryFloat(c, "priceMax", 0),
		OnSale:   queryBool(c, "onSale"),
		NewOnly:  queryBool(c, "isNew"),
		InStock:  queryBool(c, "inStock"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 20),
	}

	page, err := h.catalogService.Products(c.Request.Context(), filter)
	if err != nil {
		h.logger.Catalog().Error("Product listing failed", "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	h.logger.Catalog().Debug("Product listing served",
		"count", len(page.Data), "total", page.Total, "duration", time.Since(start))
	c.JSON(http.StatusOK, page)
}

// RefreshProducts forces a full catalog refetch, bypassing the TTL.
func (h *CatalogHandlers) RefreshProducts(c *gin.Context) {
	start := time.Now()

	snap, err := h.catalogService.Refresh(c.Request.Context(), true)
	if err != nil {
		h.logger.Catalog().Error("Forced refresh failed", "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog refresh failed"})
		return
	}

	h.logger.Catalog().Info("Forced refresh completed",
		"productCount", len(snap.Products), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"refreshed":    true,
		"productCount": len(snap.Products),
		"capturedAt":   snap.Timestamp,
	})
}

// GetTrending serves the default product shelf for unpersonalized views.
func (h *CatalogHandlers) GetTrending(c *gin.Context) {
	limit := queryInt(c, "limit", config.TrendingLimit)

	products, err := h.catalogService.Trending(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
}

// GetCategories serves the cached category metadata.
func (h *CatalogHandlers) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "categories unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories, "count": len(categories)})
}

// GetBrands serves the cached brand metadata.
func (h *CatalogHandlers) GetBrands(c *gin.Context) {
	brands, err := h.catalogService.Brands(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "brands unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": brands, "count": len(brands)})
}

// GetStatus reports the cache's operational state.
func (h *CatalogHandlers) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalogService.Status())
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(c *gin.Context, key string, fallback float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}
