package visitor

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

var testCaps = Caps{
	PageViews:    50,
	Searches:     20,
	ProductViews: 100,
	CartActions:  200,
	Observations: 100,
}

func newTestRecord(t *testing.T) *BehaviorRecord {
	t.Helper()
	return NewRecord("usr-1", "sess-1", 0, 10000, time.Unix(1700000000, 0))
}

func TestNewRecordDefaults(t *testing.T) {
	r := newTestRecord(t)

	if r.VisitCount != 1 {
		t.Errorf("expected visitCount 1, got %d", r.VisitCount)
	}
	if r.Preferences.PriceRange.Min != 0 || r.Preferences.PriceRange.Max != 10000 {
		t.Errorf("unexpected default price range: %+v", r.Preferences.PriceRange)
	}
	if r.HasObservations() {
		t.Error("fresh record should have no observations")
	}
}

func TestRecordVisitBumpsCount(t *testing.T) {
	r := newTestRecord(t)
	r.RecordVisit("sess-2", time.Unix(1700000100, 0))

	if r.VisitCount != 2 {
		t.Errorf("expected visitCount 2, got %d", r.VisitCount)
	}
	if r.SessionID != "sess-2" {
		t.Errorf("expected session sess-2, got %s", r.SessionID)
	}
}

func TestPageViewLogCapping(t *testing.T) {
	r := newTestRecord(t)
	base := time.Unix(1700000000, 0)

	for i := 0; i < testCaps.PageViews+7; i++ {
		r.AddPageView(fmt.Sprintf("/page/%d", i), testCaps, base.Add(time.Duration(i)*time.Second))
	}

	if len(r.PageViews) != testCaps.PageViews {
		t.Fatalf("expected %d page views, got %d", testCaps.PageViews, len(r.PageViews))
	}
	// Oldest entries are evicted: the first surviving entry is /page/7.
	if r.PageViews[0].Page != "/page/7" {
		t.Errorf("expected oldest surviving page /page/7, got %s", r.PageViews[0].Page)
	}
	last := r.PageViews[len(r.PageViews)-1]
	if last.Page != fmt.Sprintf("/page/%d", testCaps.PageViews+6) {
		t.Errorf("expected newest page preserved, got %s", last.Page)
	}
}

func TestSearchLogCapping(t *testing.T) {
	r := newTestRecord(t)
	now := time.Unix(1700000000, 0)

	for i := 0; i < testCaps.Searches+3; i++ {
		r.AddSearch(fmt.Sprintf("query %d", i), testCaps, now)
	}
	if len(r.Searches) != testCaps.Searches {
		t.Errorf("expected %d searches, got %d", testCaps.Searches, len(r.Searches))
	}
}

func TestCartActionLogCapping(t *testing.T) {
	r := newTestRecord(t)
	now := time.Unix(1700000000, 0)

	for i := 0; i < testCaps.CartActions+5; i++ {
		r.AddCartAction(fmt.Sprintf("prod-%d", i), CartActionAdd, testCaps, now)
	}
	if len(r.CartActions) != testCaps.CartActions {
		t.Fatalf("expected %d cart actions, got %d", testCaps.CartActions, len(r.CartActions))
	}
	if r.CartActions[0].ProductID != "prod-5" {
		t.Errorf("expected oldest cart entries evicted, first is %s", r.CartActions[0].ProductID)
	}
}

func TestObservationDeduplication(t *testing.T) {
	r := newTestRecord(t)
	now := time.Unix(1700000000, 0)

	r.AddProductView("p1", "Evening Wear", "Valentino", testCaps, now)
	r.AddProductView("p2", "Evening Wear", "Valentino", testCaps, now.Add(time.Second))
	r.AddProductView("p3", "Bridal", "Vera Wang", testCaps, now.Add(2*time.Second))

	if len(r.CategoriesViewed) != 2 {
		t.Fatalf("expected 2 distinct categories, got %d", len(r.CategoriesViewed))
	}
	if r.CategoriesViewed[0].Name != "Evening Wear" || r.CategoriesViewed[0].Count != 2 {
		t.Errorf("expected Evening Wear count 2, got %+v", r.CategoriesViewed[0])
	}
	if r.BrandsViewed[0].Count != 2 {
		t.Errorf("expected Valentino count 2, got %+v", r.BrandsViewed[0])
	}
}

func TestRecommendationsRankByFrequency(t *testing.T) {
	r := newTestRecord(t)
	now := time.Unix(1700000000, 0)

	// Evening Wear twice, Bridal once, Outerwear three times.
	r.AddProductView("p1", "Evening Wear", "", testCaps, now)
	r.AddProductView("p2", "Bridal", "", testCaps, now.Add(time.Second))
	r.AddProductView("p3", "Evening Wear", "", testCaps, now.Add(2*time.Second))
	r.AddProductView("p4", "Outerwear", "", testCaps, now.Add(3*time.Second))
	r.AddProductView("p5", "Outerwear", "", testCaps, now.Add(4*time.Second))
	r.AddProductView("p6", "Outerwear", "", testCaps, now.Add(5*time.Second))

	recs := r.Recommendations(3, 10)
	want := []string{"Outerwear", "Evening Wear", "Bridal"}
	if !reflect.DeepEqual(recs.RecommendedCategories, want) {
		t.Errorf("expected %v, got %v", want, recs.RecommendedCategories)
	}
}

func TestRecommendationsTieBreakIsFirstObserved(t *testing.T) {
	r := newTestRecord(t)
	now := time.Unix(1700000000, 0)

	r.AddProductView("p1", "Knitwear", "", testCaps, now)
	r.AddProductView("p2", "Denim", "", testCaps, now.Add(time.Second))
	r.AddProductView("p3", "Shoes", "", testCaps, now.Add(2*time.Second))
	r.AddProductView("p4", "Bags", "", testCaps, now.Add(3*time.Second))

	// All counts equal: ranking must follow first-observed order, and it
	// must be identical on every call.
	first := r.Recommendations(3, 10)
	want := []string{"Knitwear", "Denim", "Shoes"}
	if !reflect.DeepEqual(first.RecommendedCategories, want) {
		t.Fatalf("expected %v, got %v", want, first.RecommendedCategories)
	}
	for i := 0; i < 20; i++ {
		again := r.Recommendations(3, 10)
		if !reflect.DeepEqual(again.RecommendedCategories, first.RecommendedCategories) {
			t.Fatalf("ranking not deterministic: %v vs %v", again.RecommendedCategories, first.RecommendedCategories)
		}
	}
}

func TestPersonalizedProductsAreRecentDistinct(t *testing.T) {
	r := newTestRecord(t)
	now := time.Unix(1700000000, 0)

	for i := 0; i < 15; i++ {
		r.AddProductView(fmt.Sprintf("p%d", i), "", "", testCaps, now.Add(time.Duration(i)*time.Second))
	}
	// Re-view an older product; it must move to the front without duplication.
	r.AddProductView("p3", "", "", testCaps, now.Add(20*time.Second))

	recs := r.Recommendations(3, 10)
	if len(recs.PersonalizedProducts) != 10 {
		t.Fatalf("expected 10 personalized products, got %d", len(recs.PersonalizedProducts))
	}
	if recs.PersonalizedProducts[0] != "p3" {
		t.Errorf("expected most-recent view first, got %s", recs.PersonalizedProducts[0])
	}
	seen := make(map[string]bool)
	for _, id := range recs.PersonalizedProducts {
		if seen[id] {
			t.Errorf("duplicate product id %s in personalized list", id)
		}
		seen[id] = true
	}
}

func TestMergePreferencesIsShallow(t *testing.T) {
	r := newTestRecord(t)

	categories := []string{"Evening Wear"}
	r.MergePreferences(PreferencesPatch{Categories: &categories})

	if !reflect.DeepEqual(r.Preferences.Categories, categories) {
		t.Errorf("expected categories merged, got %v", r.Preferences.Categories)
	}
	// Untouched fields keep their values.
	if r.Preferences.PriceRange.Max != 10000 {
		t.Errorf("price range should be untouched, got %+v", r.Preferences.PriceRange)
	}

	pr := PriceRange{Min: 500, Max: 2500}
	r.MergePreferences(PreferencesPatch{PriceRange: &pr})
	if r.Preferences.PriceRange != pr {
		t.Errorf("expected price range replaced, got %+v", r.Preferences.PriceRange)
	}
	if !reflect.DeepEqual(r.Preferences.Categories, categories) {
		t.Errorf("categories should survive unrelated patch, got %v", r.Preferences.Categories)
	}
}

func TestObservationListEviction(t *testing.T) {
	r := newTestRecord(t)
	now := time.Unix(1700000000, 0)

	caps := testCaps
	caps.Observations = 3

	r.AddProductView("p1", "A", "", caps, now)
	r.AddProductView("p2", "B", "", caps, now.Add(time.Second))
	r.AddProductView("p3", "C", "", caps, now.Add(2*time.Second))
	// Refresh A so B becomes the least recently observed.
	r.AddProductView("p4", "A", "", caps, now.Add(3*time.Second))
	r.AddProductView("p5", "D", "", caps, now.Add(4*time.Second))

	if len(r.CategoriesViewed) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(r.CategoriesViewed))
	}
	for _, obs := range r.CategoriesViewed {
		if obs.Name == "B" {
			t.Error("expected least-recently-observed B to be evicted")
		}
	}
}
