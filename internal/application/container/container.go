// Package container provides dependency injection for all singleton services.
package container

import (
	"fmt"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/application/services"
	"github.com/osamaqaseem39/couture-edge/internal/domain/visitor"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/caching/stores"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/performance"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/persistence/kv"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/upstream"
	"github.com/osamaqaseem39/couture-edge/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies.
type Container struct {
	// Application services
	CatalogService         *services.CatalogService
	BehaviorService        *services.BehaviorService
	PersonalizationService *services.PersonalizationService
	WarmingService         *services.WarmingService
	AuthService            *services.AuthService

	// Infrastructure
	Store       kv.Store
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewContainer creates and wires all singleton services.
func NewContainer() (*Container, error) {
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	perfTracker := performance.NewTracker(500*time.Millisecond, logger)

	store, err := kv.NewSQLiteStore(kv.Config{
		SQLitePath:    config.SQLitePath,
		TursoDatabase: config.TursoDatabase,
		TursoToken:    config.TursoToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open key-value store: %w", err)
	}
	logger.Startup().Info("Key-value store ready", "backend", store.ConnectionInfo())

	snapshotStore := stores.NewSnapshotStore(store, logger)
	metadataStore := stores.NewMetadataStore(store, logger)
	visitorsStore := stores.NewVisitorsStore(store, logger)

	client := upstream.NewClient(config.UpstreamBaseURL, config.UpstreamTimeout, logger)
	paginator := upstream.NewPaginator(client, config.CatalogPageSize, config.CatalogMaxPages, logger)

	catalogService := services.NewCatalogService(
		snapshotStore,
		metadataStore,
		paginator,
		client,
		config.CatalogTTL,
		logger,
		perfTracker,
	)

	behaviorService := services.NewBehaviorService(
		visitorsStore,
		visitor.Caps{
			PageViews:    config.PageViewLogCap,
			Searches:     config.SearchLogCap,
			ProductViews: config.ProductViewLogCap,
			CartActions:  config.CartActionLogCap,
			Observations: config.ObservationListCap,
		},
		config.DefaultPriceMin,
		config.DefaultPriceMax,
		config.RecommendationTopN,
		logger,
		perfTracker,
	)

	personalizationService := services.NewPersonalizationService(
		catalogService,
		behaviorService,
		config.RecommendationTopN,
		config.PersonalizedLimit,
		logger,
		perfTracker,
	)

	warmingService := services.NewWarmingService(catalogService, 2*time.Minute, logger)
	authService := services.NewAuthService(logger)

	return &Container{
		CatalogService:         catalogService,
		BehaviorService:        behaviorService,
		PersonalizationService: personalizationService,
		WarmingService:         warmingService,
		AuthService:            authService,
		Store:                  store,
		Logger:                 logger,
		PerfTracker:            perfTracker,
	}, nil
}

// Close releases the container's infrastructure resources.
func (c *Container) Close() error {
	return c.Store.Close()
}
