package services

import (
	"fmt"
	"testing"

	"github.com/osamaqaseem39/couture-edge/internal/domain/visitor"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/caching/stores"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/persistence/kv"
)

var serviceCaps = visitor.Caps{
	PageViews:    50,
	Searches:     20,
	ProductViews: 100,
	CartActions:  200,
	Observations: 100,
}

func newTestBehaviorService(t *testing.T) *BehaviorService {
	t.Helper()
	logger := quietLogger(t)
	visitors := stores.NewVisitorsStore(kv.NewMemoryStore(), logger)
	return NewBehaviorService(visitors, serviceCaps, 0, 10000, 3, logger, testTracker(t, logger))
}

func TestBootstrapCreatesRecord(t *testing.T) {
	svc := newTestBehaviorService(t)

	record, err := svc.Bootstrap("u1", "s1")
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if record.VisitCount != 1 || record.SessionID != "s1" {
		t.Errorf("unexpected record: %+v", record)
	}
}

func TestBootstrapSameSessionDoesNotBumpVisit(t *testing.T) {
	svc := newTestBehaviorService(t)

	if _, err := svc.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	record, err := svc.Bootstrap("u1", "s1")
	if err != nil {
		t.Fatalf("rebootstrap failed: %v", err)
	}
	if record.VisitCount != 1 {
		t.Errorf("same session must not bump visitCount, got %d", record.VisitCount)
	}
}

func TestBootstrapNewSessionBumpsVisit(t *testing.T) {
	svc := newTestBehaviorService(t)

	if _, err := svc.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if _, err := svc.Bootstrap("u1", "s2"); err != nil {
		t.Fatalf("rebootstrap failed: %v", err)
	}

	record, ok := svc.Behavior("u1")
	if !ok {
		t.Fatal("expected record")
	}
	if record.VisitCount != 2 || record.SessionID != "s2" {
		t.Errorf("expected visit bump under new session, got %+v", record)
	}
}

func TestTrackingFlowsIntoRecord(t *testing.T) {
	svc := newTestBehaviorService(t)
	if _, err := svc.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	if err := svc.TrackPageView("u1", "/collections/bridal"); err != nil {
		t.Fatalf("page view failed: %v", err)
	}
	if err := svc.TrackSearch("u1", "silk gown"); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if err := svc.TrackProductView("u1", "p1", "Bridal", "Vera Wang"); err != nil {
		t.Fatalf("product view failed: %v", err)
	}
	if err := svc.TrackCartAction("u1", "p1", visitor.CartActionAdd); err != nil {
		t.Fatalf("cart action failed: %v", err)
	}

	record, _ := svc.Behavior("u1")
	if len(record.PageViews) != 1 || len(record.Searches) != 1 ||
		len(record.ProductViews) != 1 || len(record.CartActions) != 1 {
		t.Errorf("unexpected log lengths: %+v", record)
	}
	if len(record.CategoriesViewed) != 1 || record.CategoriesViewed[0].Name != "Bridal" {
		t.Errorf("expected Bridal observation, got %+v", record.CategoriesViewed)
	}
}

func TestTrackRejectsInvalidInput(t *testing.T) {
	svc := newTestBehaviorService(t)
	if _, err := svc.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	if err := svc.TrackPageView("u1", ""); err == nil {
		t.Error("expected error for empty page")
	}
	if err := svc.TrackCartAction("u1", "p1", "purchase"); err == nil {
		t.Error("expected error for unknown cart action")
	}
	if err := svc.TrackSearch("unknown-visitor", "gown"); err == nil {
		t.Error("expected error for unknown visitor")
	}
}

func TestUpdatePreferences(t *testing.T) {
	svc := newTestBehaviorService(t)
	if _, err := svc.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	brands := []string{"Valentino"}
	record, err := svc.UpdatePreferences("u1", visitor.PreferencesPatch{Brands: &brands})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(record.Preferences.Brands) != 1 || record.Preferences.Brands[0] != "Valentino" {
		t.Errorf("unexpected preferences: %+v", record.Preferences)
	}
}

func TestSummaryAggregates(t *testing.T) {
	svc := newTestBehaviorService(t)
	if _, err := svc.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	for i := 0; i < 8; i++ {
		if err := svc.TrackSearch("u1", fmt.Sprintf("query %d", i)); err != nil {
			t.Fatalf("search failed: %v", err)
		}
	}
	if err := svc.TrackProductView("u1", "p1", "Bridal", "Vera Wang"); err != nil {
		t.Fatalf("product view failed: %v", err)
	}

	summary, err := svc.Summary("u1")
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.SearchCount != 8 {
		t.Errorf("expected 8 searches, got %d", summary.SearchCount)
	}
	if len(summary.RecentSearches) != 5 {
		t.Errorf("expected 5 recent searches, got %d", len(summary.RecentSearches))
	}
	if summary.RecentSearches[4].Query != "query 7" {
		t.Errorf("expected newest search last, got %s", summary.RecentSearches[4].Query)
	}
	if len(summary.TopCategories) != 1 || summary.TopCategories[0] != "Bridal" {
		t.Errorf("unexpected top categories: %v", summary.TopCategories)
	}
}

func TestClearResetsRecord(t *testing.T) {
	svc := newTestBehaviorService(t)
	if _, err := svc.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.TrackProductView("u1", "p1", "Bridal", "Vera Wang"); err != nil {
		t.Fatalf("product view failed: %v", err)
	}

	record, err := svc.Clear("u1", "u2", "s1")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if len(record.ProductViews) != 0 || record.HasObservations() {
		t.Errorf("expected empty record after clear, got %+v", record)
	}
	if record.UserID != "u2" {
		t.Errorf("clear must rotate to the new visitor id, got %s", record.UserID)
	}
	if record.VisitCount != 1 {
		t.Errorf("cleared record starts over with visitCount 1, got %d", record.VisitCount)
	}
	if _, ok := svc.Behavior("u1"); ok {
		t.Error("old visitor record must be gone after clear")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	svc := newTestBehaviorService(t)
	if _, err := svc.Bootstrap("u1", "s1"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}

	first, err := svc.Clear("u1", "u2", "s1")
	if err != nil {
		t.Fatalf("first clear failed: %v", err)
	}
	second, err := svc.Clear(first.UserID, "u3", "s1")
	if err != nil {
		t.Fatalf("second clear failed: %v", err)
	}

	if second.VisitCount != 1 || second.HasObservations() || len(second.PageViews) != 0 {
		t.Errorf("repeated clear must yield the same empty state, got %+v", second)
	}
}
