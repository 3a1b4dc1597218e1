package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
)

// WarmingService pre-populates the catalog caches at startup so the first
// storefront request does not pay for the full fetch sequence. Warming
// failures are logged, not fatal: the read-through path recovers on demand.
type WarmingService struct {
	catalog *CatalogService
	timeout time.Duration
	logger  *logging.ChanneledLogger
}

// NewWarmingService creates the startup cache warmer.
func NewWarmingService(catalogSvc *CatalogService, timeout time.Duration, logger *logging.ChanneledLogger) *WarmingService {
	return &WarmingService{
		catalog: catalogSvc,
		timeout: timeout,
		logger:  logger,
	}
}

// WarmAll loads the product snapshot and the catalog metadata concurrently.
func (s *WarmingService) WarmAll(ctx context.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.catalog.PingUpstream(ctx); err != nil {
		s.logger.Startup().Warn("Catalog API unreachable at startup", "error", err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.catalog.Warm(ctx)
	})
	g.Go(func() error {
		return s.catalog.WarmMetadata(ctx)
	})

	if err := g.Wait(); err != nil {
		s.logger.Startup().Warn("Cache warming incomplete, caches will fill on demand",
			"error", err.Error(), "duration", time.Since(start).String())
		return
	}
	s.logger.Startup().Info("Cache warming complete", "duration", time.Since(start).String())
}
