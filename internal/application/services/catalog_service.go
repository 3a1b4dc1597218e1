// Package services provides application-level services that orchestrate
// business logic between the upstream catalog API, the cache stores, and the
// visitor behavior engine.
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/domain/catalog"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/caching"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/caching/stores"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/performance"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/upstream"
)

// refreshLockKey guards the single catalog refresh slot; only one refresh
// sequence runs at a time, duplicates coalesce onto the in-flight one.
const refreshLockKey = "catalog:refresh"

// ProductFilter selects a slice of the catalog snapshot. Zero values mean
// "no constraint" except PriceMax, where zero means unbounded.
type ProductFilter struct {
	Category string
	Brand    string
	Search   string
	PriceMin float64
	PriceMax float64
	OnSale   bool
	NewOnly  bool
	InStock  bool
	Page     int
	Limit    int
}

// CatalogStatus is the operational view of the catalog cache for the status
// endpoint and the sysop surface.
type CatalogStatus struct {
	HasSnapshot  bool      `json:"hasSnapshot"`
	ProductCount int       `json:"productCount"`
	CapturedAt   time.Time `json:"capturedAt,omitempty"`
	AgeSeconds   float64   `json:"ageSeconds"`
	Fresh        bool      `json:"fresh"`
	MemoryOnly   bool      `json:"memoryOnly"`
	Refreshing   bool      `json:"refreshing"`
}

// CatalogService owns the catalog snapshot lifecycle: read-through loading,
// TTL-driven background refresh, and derived views (trending, filtering,
// metadata) over the immutable snapshot.
type CatalogService struct {
	snapshots   *stores.SnapshotStore
	metadata    *stores.MetadataStore
	paginator   *upstream.Paginator
	client      *upstream.Client
	refreshLock *caching.RefreshLock
	ttl         time.Duration
	logger      *logging.ChanneledLogger
	perf        *performance.Tracker
}

// NewCatalogService creates the catalog application service.
func NewCatalogService(
	snapshots *stores.SnapshotStore,
	metadata *stores.MetadataStore,
	paginator *upstream.Paginator,
	client *upstream.Client,
	ttl time.Duration,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
) *CatalogService {
	return &CatalogService{
		snapshots:   snapshots,
		metadata:    metadata,
		paginator:   paginator,
		client:      client,
		refreshLock: caching.NewRefreshLock(),
		ttl:         ttl,
		logger:      logger,
		perf:        perf,
	}
}

// Load returns the current catalog snapshot. A fresh snapshot is served as-is
// with zero network traffic. A stale snapshot is served immediately while a
// background refresh runs. Only when no usable snapshot exists does the
// caller block on a full fetch sequence.
func (s *CatalogService) Load(ctx context.Context) (*catalog.Snapshot, error) {
	marker := s.perf.StartOperation("catalog_load")
	defer marker.Complete()

	snap, ok := s.snapshots.Load()
	if ok {
		if snap.Fresh(s.ttl, time.Now()) {
			marker.SetSuccess(true)
			return snap, nil
		}

		s.logger.Catalog().Debug("Serving stale snapshot, scheduling refresh",
			"ageSeconds", snap.Age(time.Now()).Seconds())
		s.refreshInBackground()
		marker.SetSuccess(true)
		return snap, nil
	}

	// Cold start or discarded snapshot: the request pays for the fetch.
	fresh, err := s.Refresh(ctx, true)
	if err != nil {
		return nil, err
	}
	marker.SetSuccess(true)
	return fresh, nil
}

// Refresh fetches the full catalog from the upstream API and replaces the
// snapshot wholesale. With force false a still-fresh snapshot short-circuits.
// On fetch failure the previous snapshot, however stale, stays in place.
func (s *CatalogService) Refresh(ctx context.Context, force bool) (*catalog.Snapshot, error) {
	if !force {
		if snap, ok := s.snapshots.Load(); ok && snap.Fresh(s.ttl, time.Now()) {
			return snap, nil
		}
	}

	marker := s.perf.StartOperation("catalog_refresh")
	defer marker.Complete()

	products, err := s.paginator.FetchAll(ctx)
	if err != nil {
		if prev, ok := s.snapshots.Load(); ok {
			s.logger.Catalog().Warn("Catalog refresh failed, keeping previous snapshot",
				"error", err.Error(), "ageSeconds", prev.Age(time.Now()).Seconds())
			return prev, nil
		}
		return nil, fmt.Errorf("catalog refresh failed with no snapshot to fall back on: %w", err)
	}

	snap := catalog.NewSnapshot(products, time.Now())
	s.snapshots.Save(snap)
	s.logger.Catalog().Info("Catalog snapshot replaced", "productCount", len(products))
	marker.SetSuccess(true)
	return snap, nil
}

// refreshInBackground starts one refresh goroutine if none is in flight.
func (s *CatalogService) refreshInBackground() {
	if !s.refreshLock.TryLock(refreshLockKey) {
		return
	}
	go func() {
		defer s.refreshLock.Unlock(refreshLockKey)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Refresh(ctx, true); err != nil {
			s.logger.Catalog().Error("Background catalog refresh failed", "error", err.Error())
		}
	}()
}

// Refreshing reports whether a refresh sequence is currently in flight.
func (s *CatalogService) Refreshing() bool {
	if s.refreshLock.TryLock(refreshLockKey) {
		s.refreshLock.Unlock(refreshLockKey)
		return false
	}
	return true
}

// Products returns the snapshot slice selected by filter, paginated.
func (s *CatalogService) Products(ctx context.Context, filter ProductFilter) (*catalog.Page, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]catalog.Product, 0, len(snap.Products))
	for _, p := range snap.Products {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}

	return paginate(matched, filter.Page, filter.Limit), nil
}

// Trending returns the storefront's default product set for visitors with no
// behavior history: highest-rated, most-reviewed in-stock products first.
func (s *CatalogService) Trending(ctx context.Context, limit int) ([]catalog.Product, error) {
	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]catalog.Product, 0, len(snap.Products))
	for _, p := range snap.Products {
		if p.StockStatus == catalog.StockStatusOutOfStock {
			continue
		}
		ranked = append(ranked, p)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		// New arrivals and sale items lead the shelf, then rating and
		// review volume settle the rest.
		fi, fj := ranked[i].IsNew || ranked[i].IsSale, ranked[j].IsNew || ranked[j].IsSale
		if fi != fj {
			return fi
		}
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].Reviews > ranked[j].Reviews
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ProductsByID resolves ids against the snapshot, preserving input order and
// silently dropping ids that no longer exist in the catalog.
func (s *CatalogService) ProductsByID(ctx context.Context, ids []string) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}

	snap, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]catalog.Product, len(snap.Products))
	for _, p := range snap.Products {
		byID[p.ID] = p
	}

	resolved := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			resolved = append(resolved, p)
		}
	}
	return resolved, nil
}

// Categories returns the cached category list, fetching from the upstream
// API when the cached copy is missing or past TTL.
func (s *CatalogService) Categories(ctx context.Context) ([]catalog.Category, error) {
	meta, err := s.loadMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return meta.Categories, nil
}

// Brands returns the cached brand list, fetching like Categories.
func (s *CatalogService) Brands(ctx context.Context) ([]catalog.Brand, error) {
	meta, err := s.loadMetadata(ctx)
	if err != nil {
		return nil, err
	}
	return meta.Brands, nil
}

func (s *CatalogService) loadMetadata(ctx context.Context) (*catalog.Metadata, error) {
	if meta, ok := s.metadata.Load(); ok && meta.Fresh(s.ttl, time.Now()) {
		return meta, nil
	}

	marker := s.perf.StartOperation("metadata_refresh")
	defer marker.Complete()

	categories, err := s.client.FetchCategories(ctx)
	if err != nil {
		if meta, ok := s.metadata.Load(); ok {
			s.logger.Catalog().Warn("Category fetch failed, serving cached metadata", "error", err.Error())
			return meta, nil
		}
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	brands, err := s.client.FetchBrands(ctx)
	if err != nil {
		if meta, ok := s.metadata.Load(); ok {
			s.logger.Catalog().Warn("Brand fetch failed, serving cached metadata", "error", err.Error())
			return meta, nil
		}
		return nil, fmt.Errorf("failed to fetch brands: %w", err)
	}

	s.metadata.Save(categories, brands, time.Now())
	marker.SetSuccess(true)
	return &catalog.Metadata{Categories: categories, Brands: brands, Timestamp: time.Now().UnixMilli()}, nil
}

// ClearSnapshot drops the stored catalog snapshot; the next Load pays for a
// blocking full fetch.
func (s *CatalogService) ClearSnapshot() error {
	return s.snapshots.Clear()
}

// PingUpstream checks catalog API reachability.
func (s *CatalogService) PingUpstream(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Warm performs the startup load without failing startup on upstream errors.
func (s *CatalogService) Warm(ctx context.Context) error {
	if _, err := s.Load(ctx); err != nil {
		return fmt.Errorf("catalog warm failed: %w", err)
	}
	return nil
}

// WarmMetadata primes the category and brand lists in one fetch pair. Both
// lists come from the same loadMetadata pass, so warming goes through here
// rather than calling Categories and Brands separately.
func (s *CatalogService) WarmMetadata(ctx context.Context) error {
	if _, err := s.loadMetadata(ctx); err != nil {
		return fmt.Errorf("metadata warm failed: %w", err)
	}
	return nil
}

// Status reports the snapshot's operational state.
func (s *CatalogService) Status() CatalogStatus {
	status := CatalogStatus{
		MemoryOnly: s.snapshots.MemoryOnly(),
		Refreshing: s.Refreshing(),
	}
	if snap, ok := s.snapshots.Load(); ok {
		now := time.Now()
		status.HasSnapshot = true
		status.ProductCount = len(snap.Products)
		status.CapturedAt = snap.CapturedAt()
		status.AgeSeconds = snap.Age(now).Seconds()
		status.Fresh = snap.Fresh(s.ttl, now)
	}
	return status
}

func matchesFilter(p catalog.Product, f ProductFilter) bool {
	if f.Category != "" && !containsFold(p.Categories, f.Category) {
		return false
	}
	if f.Brand != "" && !strings.EqualFold(p.Brand, f.Brand) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) &&
			!containsFold(p.Tags, f.Search) {
			return false
		}
	}
	price := effectivePrice(p)
	if price < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && price > f.PriceMax {
		return false
	}
	if f.OnSale && !p.IsSale {
		return false
	}
	if f.NewOnly && !p.IsNew {
		return false
	}
	if f.InStock && p.StockStatus != catalog.StockStatusInStock {
		return false
	}
	return true
}

func effectivePrice(p catalog.Product) float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}
	return p.Price
}

func containsFold(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.EqualFold(s, needle) {
			return true
		}
	}
	return false
}

func paginate(products []catalog.Product, page, limit int) *catalog.Page {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	total := len(products)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &catalog.Page{
		Data:       products[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}
