package services

import (
	"context"
	"fmt"

	"github.com/osamaqaseem39/couture-edge/internal/domain/catalog"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/performance"
)

// Recommendations is the personalization payload served to the storefront:
// ranked category/brand names plus the personalized products resolved
// against the current catalog snapshot.
type Recommendations struct {
	RecommendedCategories []string          `json:"recommendedCategories"`
	RecommendedBrands     []string          `json:"recommendedBrands"`
	PersonalizedProducts  []catalog.Product `json:"personalizedProducts"`
	Fallback              bool              `json:"fallback"`
}

// PersonalizationService derives recommendations from the behavior record
// and materializes them against the catalog cache. It never blocks on the
// network beyond what the catalog service itself requires.
type PersonalizationService struct {
	catalog      *CatalogService
	behavior     *BehaviorService
	topN         int
	productLimit int
	logger       *logging.ChanneledLogger
	perf         *performance.Tracker
}

// NewPersonalizationService creates the personalization application service.
func NewPersonalizationService(
	catalogSvc *CatalogService,
	behaviorSvc *BehaviorService,
	topN, productLimit int,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
) *PersonalizationService {
	return &PersonalizationService{
		catalog:      catalogSvc,
		behavior:     behaviorSvc,
		topN:         topN,
		productLimit: productLimit,
		logger:       logger,
		perf:         perf,
	}
}

// Recommendations computes the visitor's recommendation payload. Visitors
// with no observed categories or brands fall back to the trending set so the
// storefront never renders an empty shelf.
func (s *PersonalizationService) Recommendations(ctx context.Context, userID string) (*Recommendations, error) {
	marker := s.perf.StartOperation("recommendations")
	defer marker.Complete()

	record, ok := s.behavior.Behavior(userID)
	if !ok {
		return nil, fmt.Errorf("no behavior record for visitor %s", userID)
	}

	if !record.HasObservations() {
		trending, err := s.catalog.Trending(ctx, s.productLimit)
		if err != nil {
			return nil, err
		}
		s.logger.WithVisitor(logging.ChannelAnalytics, userID).Debug("Serving trending fallback")
		marker.SetSuccess(true)
		return &Recommendations{
			RecommendedCategories: []string{},
			RecommendedBrands:     []string{},
			PersonalizedProducts:  trending,
			Fallback:              true,
		}, nil
	}

	derived := record.Recommendations(s.topN, s.productLimit)

	products, err := s.catalog.ProductsByID(ctx, derived.PersonalizedProducts)
	if err != nil {
		return nil, err
	}
	// Recently viewed products may all have left the catalog; pad from
	// trending so the shelf stays full.
	if len(products) < s.productLimit {
		products = s.padWithTrending(ctx, products)
	}

	marker.SetSuccess(true)
	return &Recommendations{
		RecommendedCategories: derived.RecommendedCategories,
		RecommendedBrands:     derived.RecommendedBrands,
		PersonalizedProducts:  products,
		Fallback:              false,
	}, nil
}

// PersonalizedProducts returns only the product portion of the payload.
func (s *PersonalizationService) PersonalizedProducts(ctx context.Context, userID string) ([]catalog.Product, error) {
	recs, err := s.Recommendations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return recs.PersonalizedProducts, nil
}

func (s *PersonalizationService) padWithTrending(ctx context.Context, products []catalog.Product) []catalog.Product {
	trending, err := s.catalog.Trending(ctx, s.productLimit)
	if err != nil {
		return products
	}
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		seen[p.ID] = struct{}{}
	}
	for _, p := range trending {
		if len(products) >= s.productLimit {
			break
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		products = append(products, p)
	}
	return products
}
