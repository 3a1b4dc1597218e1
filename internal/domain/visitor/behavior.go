// Package visitor defines the per-visitor behavior record and the pure
// derivations computed from it. The record accumulates tracked storefront
// events in bounded logs and is persisted wholesale after every mutation.
package visitor

import (
	"sort"
	"time"
)

// Cart action values accepted by TrackCartAction.
const (
	CartActionAdd    = "add"
	CartActionRemove = "remove"
	CartActionView   = "view"
)

// PageView is one tracked page navigation.
type PageView struct {
	Page      string `json:"page"`
	Timestamp int64  `json:"timestamp"`
}

// SearchQuery is one tracked catalog search.
type SearchQuery struct {
	Query     string `json:"query"`
	Timestamp int64  `json:"timestamp"`
}

// ProductView is one tracked product detail view.
type ProductView struct {
	ProductID string `json:"productId"`
	Category  string `json:"category,omitempty"`
	Brand     string `json:"brand,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// CartAction is one tracked cart mutation or inspection.
type CartAction struct {
	ProductID string `json:"productId"`
	Action    string `json:"action"`
	Timestamp int64  `json:"timestamp"`
}

// Observation is one deduplicated category or brand sighting. Count carries
// the observation frequency; list position preserves first-observed order,
// which is the tie-break for recommendation ranking.
type Observation struct {
	Name      string `json:"name"`
	Count     int    `json:"count"`
	FirstSeen int64  `json:"firstSeen"`
	LastSeen  int64  `json:"lastSeen"`
}

// PriceRange bounds the visitor's preferred price window.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Preferences is the explicitly supplied preference sub-record. It is only
// changed by UpdatePreferences; nothing in the engine infers into it.
type Preferences struct {
	PriceRange PriceRange `json:"priceRange"`
	Categories []string   `json:"categories,omitempty"`
	Brands     []string   `json:"brands,omitempty"`
	Colors     []string   `json:"colors,omitempty"`
	Sizes      []string   `json:"sizes,omitempty"`
}

// PreferencesPatch is a partial preferences update; nil fields are left
// untouched (shallow merge).
type PreferencesPatch struct {
	PriceRange *PriceRange `json:"priceRange,omitempty"`
	Categories *[]string   `json:"categories,omitempty"`
	Brands     *[]string   `json:"brands,omitempty"`
	Colors     *[]string   `json:"colors,omitempty"`
	Sizes      *[]string   `json:"sizes,omitempty"`
}

// Caps bounds the record's event logs and observation lists.
type Caps struct {
	PageViews    int
	Searches     int
	ProductViews int
	CartActions  int
	Observations int
}

// BehaviorRecord is the durable per-visitor behavior state. Exactly one
// record exists per visitor; it is replaced, never merged, on clear.
type BehaviorRecord struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`

	PageViews    []PageView    `json:"pageViews"`
	Searches     []SearchQuery `json:"searches"`
	ProductViews []ProductView `json:"productViews"`
	CartActions  []CartAction  `json:"cartActions"`

	CategoriesViewed []Observation `json:"categoriesViewed"`
	BrandsViewed     []Observation `json:"brandsViewed"`

	Preferences Preferences `json:"preferences"`

	VisitCount int   `json:"visitCount"`
	LastVisit  int64 `json:"lastVisit"`
}

// NewRecord creates an empty record for a fresh visitor.
func NewRecord(userID, sessionID string, priceMin, priceMax float64, now time.Time) *BehaviorRecord {
	return &BehaviorRecord{
		UserID:    userID,
		SessionID: sessionID,
		Preferences: Preferences{
			PriceRange: PriceRange{Min: priceMin, Max: priceMax},
		},
		VisitCount: 1,
		LastVisit:  now.UnixMilli(),
	}
}

// RecordVisit bumps the visit bookkeeping. Called once per bootstrap of a
// returning visitor, not per page view.
func (r *BehaviorRecord) RecordVisit(sessionID string, now time.Time) {
	r.SessionID = sessionID
	r.VisitCount++
	r.LastVisit = now.UnixMilli()
}

// AddPageView appends to the page-view log, evicting the oldest entry past cap.
func (r *BehaviorRecord) AddPageView(page string, caps Caps, now time.Time) {
	r.PageViews = append(r.PageViews, PageView{Page: page, Timestamp: now.UnixMilli()})
	r.PageViews = capTail(r.PageViews, caps.PageViews)
}

// AddSearch appends to the search log, evicting the oldest entry past cap.
func (r *BehaviorRecord) AddSearch(query string, caps Caps, now time.Time) {
	r.Searches = append(r.Searches, SearchQuery{Query: query, Timestamp: now.UnixMilli()})
	r.Searches = capTail(r.Searches, caps.Searches)
}

// AddProductView appends to the product-view log and registers the product's
// category and brand in their observation lists.
func (r *BehaviorRecord) AddProductView(productID, category, brand string, caps Caps, now time.Time) {
	r.ProductViews = append(r.ProductViews, ProductView{
		ProductID: productID,
		Category:  category,
		Brand:     brand,
		Timestamp: now.UnixMilli(),
	})
	r.ProductViews = capTail(r.ProductViews, caps.ProductViews)

	if category != "" {
		r.CategoriesViewed = observe(r.CategoriesViewed, category, caps.Observations, now)
	}
	if brand != "" {
		r.BrandsViewed = observe(r.BrandsViewed, brand, caps.Observations, now)
	}
}

// AddCartAction appends to the cart-action log, evicting the oldest entry past cap.
func (r *BehaviorRecord) AddCartAction(productID, action string, caps Caps, now time.Time) {
	r.CartActions = append(r.CartActions, CartAction{
		ProductID: productID,
		Action:    action,
		Timestamp: now.UnixMilli(),
	})
	r.CartActions = capTail(r.CartActions, caps.CartActions)
}

// Clone returns a deep copy of the record. Readers hold clones so tracking
// can keep appending to the live record's slices underneath them.
func (r *BehaviorRecord) Clone() *BehaviorRecord {
	c := *r
	c.PageViews = append([]PageView(nil), r.PageViews...)
	c.Searches = append([]SearchQuery(nil), r.Searches...)
	c.ProductViews = append([]ProductView(nil), r.ProductViews...)
	c.CartActions = append([]CartAction(nil), r.CartActions...)
	c.CategoriesViewed = append([]Observation(nil), r.CategoriesViewed...)
	c.BrandsViewed = append([]Observation(nil), r.BrandsViewed...)
	c.Preferences.Categories = append([]string(nil), r.Preferences.Categories...)
	c.Preferences.Brands = append([]string(nil), r.Preferences.Brands...)
	c.Preferences.Colors = append([]string(nil), r.Preferences.Colors...)
	c.Preferences.Sizes = append([]string(nil), r.Preferences.Sizes...)
	return &c
}

// MergePreferences shallow-merges the supplied fields into Preferences.
func (r *BehaviorRecord) MergePreferences(patch PreferencesPatch) {
	if patch.PriceRange != nil {
		r.Preferences.PriceRange = *patch.PriceRange
	}
	if patch.Categories != nil {
		r.Preferences.Categories = *patch.Categories
	}
	if patch.Brands != nil {
		r.Preferences.Brands = *patch.Brands
	}
	if patch.Colors != nil {
		r.Preferences.Colors = *patch.Colors
	}
	if patch.Sizes != nil {
		r.Preferences.Sizes = *patch.Sizes
	}
}

// HasObservations reports whether any category or brand has been observed.
// New visitors with no history fall back to the trending set.
func (r *BehaviorRecord) HasObservations() bool {
	return len(r.CategoriesViewed) > 0 || len(r.BrandsViewed) > 0
}

// RecommendationResult is derived on demand from the current record; it is
// never stored.
type RecommendationResult struct {
	RecommendedCategories []string `json:"recommendedCategories"`
	RecommendedBrands     []string `json:"recommendedBrands"`
	PersonalizedProducts  []string `json:"personalizedProducts"`
}

// Recommendations computes the frequency-ranked recommendation view of the
// record. Pure, no I/O: top-N categories/brands by descending observation
// count with ties broken by first-observed order, plus the deduplicated
// most-recent product-view IDs.
func (r *BehaviorRecord) Recommendations(topN, productLimit int) RecommendationResult {
	return RecommendationResult{
		RecommendedCategories: rankObservations(r.CategoriesViewed, topN),
		RecommendedBrands:     rankObservations(r.BrandsViewed, topN),
		PersonalizedProducts:  recentProductIDs(r.ProductViews, productLimit),
	}
}

// capTail keeps the most-recent max entries of a log in insertion order.
func capTail[T any](log []T, max int) []T {
	if max <= 0 || len(log) <= max {
		return log
	}
	return log[len(log)-max:]
}

// observe registers one sighting of name in a dedup observation list,
// preserving first-observed order. When the list exceeds max, the
// least-recently-observed entry is evicted.
func observe(list []Observation, name string, max int, now time.Time) []Observation {
	ts := now.UnixMilli()
	for i := range list {
		if list[i].Name == name {
			list[i].Count++
			list[i].LastSeen = ts
			return list
		}
	}

	list = append(list, Observation{Name: name, Count: 1, FirstSeen: ts, LastSeen: ts})
	if max > 0 && len(list) > max {
		oldest := 0
		for i := 1; i < len(list); i++ {
			if list[i].LastSeen < list[oldest].LastSeen {
				oldest = i
			}
		}
		list = append(list[:oldest], list[oldest+1:]...)
	}
	return list
}

// rankObservations returns the top-N names by descending count. The sort is
// stable over a list that is already in first-observed order, so ties resolve
// to the earliest-observed name.
func rankObservations(list []Observation, topN int) []string {
	ranked := make([]Observation, len(list))
	copy(ranked, list)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	names := make([]string, len(ranked))
	for i, obs := range ranked {
		names[i] = obs.Name
	}
	return names
}

// recentProductIDs walks the product-view log newest-first, deduplicating on
// product ID, and returns up to limit entries.
func recentProductIDs(views []ProductView, limit int) []string {
	seen := make(map[string]struct{}, limit)
	ids := make([]string, 0, limit)
	for i := len(views) - 1; i >= 0 && len(ids) < limit; i-- {
		id := views[i].ProductID
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
