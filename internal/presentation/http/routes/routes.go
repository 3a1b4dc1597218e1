// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/osamaqaseem39/couture-edge/internal/application/container"
	"github.com/osamaqaseem39/couture-edge/internal/presentation/http/handlers"
	"github.com/osamaqaseem39/couture-edge/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency
// injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	catalogHandlers := handlers.NewCatalogHandlers(container.CatalogService, container.Logger)
	eventHandlers := handlers.NewEventHandlers(container.BehaviorService, container.Logger)
	personalizationHandlers := handlers.NewPersonalizationHandlers(
		container.PersonalizationService,
		container.BehaviorService,
		container.Logger,
	)
	sysopHandlers := handlers.NewSysOpHandlers(
		container.AuthService,
		container.CatalogService,
		container.BehaviorService,
		container.Logger,
		container.PerfTracker,
	)

	// Operator endpoints sit outside the visitor middleware; dashboards
	// should not mint visitor cookies.
	sysopAPI := r.Group("/api/sysop")
	{
		sysopAPI.GET("/auth", sysopHandlers.AuthCheck)
		sysopAPI.POST("/login", sysopHandlers.Login)

		sysopAPI.Use(sysopHandlers.SysOpAuthMiddleware())
		{
			sysopAPI.GET("/activity", sysopHandlers.GetActivityMetrics)
			sysopAPI.POST("/cache/clear", sysopHandlers.ClearCatalogCache)
			sysopAPI.GET("/logs/levels", sysopHandlers.GetLogLevels)
			sysopAPI.POST("/logs/levels", sysopHandlers.SetLogLevel)
		}
	}

	api := r.Group("/api/v1")
	api.Use(middleware.VisitorMiddleware(container.BehaviorService))
	{
		api.GET("/products", catalogHandlers.GetProducts)
		api.POST("/products/refresh", catalogHandlers.RefreshProducts)
		api.GET("/products/trending", catalogHandlers.GetTrending)
		api.GET("/categories", catalogHandlers.GetCategories)
		api.GET("/brands", catalogHandlers.GetBrands)

		api.POST("/events/pageview", eventHandlers.TrackPageView)
		api.POST("/events/search", eventHandlers.TrackSearch)
		api.POST("/events/product-view", eventHandlers.TrackProductView)
		api.POST("/events/cart", eventHandlers.TrackCartAction)

		api.GET("/recommendations", personalizationHandlers.GetRecommendations)
		api.PUT("/preferences", personalizationHandlers.UpdatePreferences)
		api.GET("/behavior", personalizationHandlers.GetBehavior)
		api.GET("/analytics/summary", personalizationHandlers.GetAnalyticsSummary)
		api.DELETE("/user-data", personalizationHandlers.ClearUserData)

		api.GET("/status", catalogHandlers.GetStatus)
	}

	return r
}
