package services

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/caching/stores"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/persistence/kv"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/upstream"
)

func newTestPersonalization(t *testing.T, api *fakeCatalogAPI) (*PersonalizationService, *BehaviorService) {
	t.Helper()
	logger := quietLogger(t)
	tracker := testTracker(t, logger)
	srv := api.server(t)

	store := kv.NewMemoryStore()
	client := upstream.NewClient(srv.URL, 5*time.Second, logger)
	catalogSvc := NewCatalogService(
		stores.NewSnapshotStore(store, logger),
		stores.NewMetadataStore(store, logger),
		upstream.NewPaginator(client, 100, 200, logger),
		client,
		10*time.Minute,
		logger,
		tracker,
	)
	behaviorSvc := NewBehaviorService(
		stores.NewVisitorsStore(store, logger),
		serviceCaps, 0, 10000, 3, logger, tracker,
	)
	return NewPersonalizationService(catalogSvc, behaviorSvc, 3, 10, logger, tracker), behaviorSvc
}

func TestNewVisitorGetsTrendingFallback(t *testing.T) {
	api := &fakeCatalogAPI{products: inventory(20)}
	personalization, behavior := newTestPersonalization(t, api)

	if _, err := behavior.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	recs, err := personalization.Recommendations(context.Background(), "u1")
	if err != nil {
		t.Fatalf("recommendations failed: %v", err)
	}
	if !recs.Fallback {
		t.Error("visitor with no history must get the fallback payload")
	}
	if len(recs.RecommendedCategories) != 0 || len(recs.RecommendedBrands) != 0 {
		t.Errorf("fallback payload must carry no ranked names: %+v", recs)
	}
	if len(recs.PersonalizedProducts) != 10 {
		t.Errorf("expected 10 trending products, got %d", len(recs.PersonalizedProducts))
	}
}

func TestObservedVisitorGetsRankedRecommendations(t *testing.T) {
	api := &fakeCatalogAPI{products: inventory(20)}
	personalization, behavior := newTestPersonalization(t, api)

	if _, err := behavior.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	// Evening Wear twice, Bridal once.
	mustTrack(t, behavior.TrackProductView("u1", "prod-1", "Evening Wear", "Valentino"))
	mustTrack(t, behavior.TrackProductView("u1", "prod-2", "Evening Wear", "Dior"))
	mustTrack(t, behavior.TrackProductView("u1", "prod-3", "Bridal", "Vera Wang"))

	recs, err := personalization.Recommendations(context.Background(), "u1")
	if err != nil {
		t.Fatalf("recommendations failed: %v", err)
	}
	if recs.Fallback {
		t.Error("observed visitor must not get the fallback payload")
	}
	if !reflect.DeepEqual(recs.RecommendedCategories, []string{"Evening Wear", "Bridal"}) {
		t.Errorf("unexpected category ranking: %v", recs.RecommendedCategories)
	}
	if recs.RecommendedBrands[0] != "Valentino" {
		t.Errorf("expected first-observed brand ahead on tie, got %v", recs.RecommendedBrands)
	}
	if recs.PersonalizedProducts[0].ID != "prod-3" {
		t.Errorf("expected most recent view first, got %s", recs.PersonalizedProducts[0].ID)
	}
}

func TestRecommendationsPadWithTrending(t *testing.T) {
	api := &fakeCatalogAPI{products: inventory(20)}
	personalization, behavior := newTestPersonalization(t, api)

	if _, err := behavior.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	// Two real views plus one product that has left the catalog.
	mustTrack(t, behavior.TrackProductView("u1", "prod-1", "Evening Wear", "Valentino"))
	mustTrack(t, behavior.TrackProductView("u1", "discontinued", "Evening Wear", "Valentino"))

	recs, err := personalization.Recommendations(context.Background(), "u1")
	if err != nil {
		t.Fatalf("recommendations failed: %v", err)
	}
	if len(recs.PersonalizedProducts) != 10 {
		t.Fatalf("expected shelf padded to 10, got %d", len(recs.PersonalizedProducts))
	}
	seen := make(map[string]bool)
	for _, p := range recs.PersonalizedProducts {
		if seen[p.ID] {
			t.Errorf("duplicate product %s in padded shelf", p.ID)
		}
		seen[p.ID] = true
	}
}

func TestRecommendationsUnknownVisitor(t *testing.T) {
	api := &fakeCatalogAPI{products: inventory(5)}
	personalization, _ := newTestPersonalization(t, api)

	if _, err := personalization.Recommendations(context.Background(), "ghost"); err == nil {
		t.Error("expected error for unknown visitor")
	}
}

func mustTrack(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("tracking failed: %v", err)
	}
}
