package services

import (
	"fmt"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/domain/visitor"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/caching/stores"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/performance"
)

// AnalyticsSummary is the aggregate view of one visitor's tracked behavior.
type AnalyticsSummary struct {
	UserID          string               `json:"userId"`
	SessionID       string               `json:"sessionId"`
	VisitCount      int                  `json:"visitCount"`
	LastVisit       int64                `json:"lastVisit"`
	PageViewCount   int                  `json:"pageViewCount"`
	SearchCount     int                  `json:"searchCount"`
	ProductViews    int                  `json:"productViewCount"`
	CartActionCount int                  `json:"cartActionCount"`
	TopCategories   []string             `json:"topCategories"`
	TopBrands       []string             `json:"topBrands"`
	RecentSearches  []visitor.SearchQuery `json:"recentSearches"`
}

// BehaviorService owns the per-visitor behavior records: bootstrap, event
// tracking, preference updates, and clearing. Every mutation persists the
// whole record through the visitors store.
type BehaviorService struct {
	visitors *stores.VisitorsStore
	caps     visitor.Caps
	priceMin float64
	priceMax float64
	topN     int
	logger   *logging.ChanneledLogger
	perf     *performance.Tracker
}

// NewBehaviorService creates the behavior application service.
func NewBehaviorService(
	visitors *stores.VisitorsStore,
	caps visitor.Caps,
	priceMin, priceMax float64,
	topN int,
	logger *logging.ChanneledLogger,
	perf *performance.Tracker,
) *BehaviorService {
	return &BehaviorService{
		visitors: visitors,
		caps:     caps,
		priceMin: priceMin,
		priceMax: priceMax,
		topN:     topN,
		logger:   logger,
		perf:     perf,
	}
}

// Bootstrap ensures a behavior record exists for the visitor. A known visitor
// gets a visit bump under the new session; an unknown one gets a fresh record
// with default preferences.
func (s *BehaviorService) Bootstrap(userID, sessionID string) (*visitor.BehaviorRecord, error) {
	marker := s.perf.StartOperation("visitor_bootstrap")
	defer marker.Complete()

	if record, ok := s.visitors.Get(userID); ok {
		if record.SessionID != sessionID {
			if err := s.visitors.Update(userID, func(r *visitor.BehaviorRecord) {
				r.RecordVisit(sessionID, time.Now())
			}); err != nil {
				return nil, err
			}
			record, _ = s.visitors.Get(userID)
			s.logger.WithVisitor(logging.ChannelAnalytics, userID).Debug("Returning visitor",
				"visitCount", record.VisitCount, "sessionId", sessionID)
		}
		marker.SetSuccess(true)
		return record, nil
	}

	record := visitor.NewRecord(userID, sessionID, s.priceMin, s.priceMax, time.Now())
	if err := s.visitors.Put(record); err != nil {
		return nil, fmt.Errorf("failed to bootstrap visitor %s: %w", userID, err)
	}
	s.logger.WithVisitor(logging.ChannelAnalytics, userID).Info("New visitor bootstrapped",
		"sessionId", sessionID)
	marker.SetSuccess(true)
	return record, nil
}

// TrackPageView records one page navigation.
func (s *BehaviorService) TrackPageView(userID, page string) error {
	if page == "" {
		return fmt.Errorf("page cannot be empty")
	}
	return s.visitors.Update(userID, func(r *visitor.BehaviorRecord) {
		r.AddPageView(page, s.caps, time.Now())
	})
}

// TrackSearch records one catalog search.
func (s *BehaviorService) TrackSearch(userID, query string) error {
	if query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return s.visitors.Update(userID, func(r *visitor.BehaviorRecord) {
		r.AddSearch(query, s.caps, time.Now())
	})
}

// TrackProductView records one product detail view and feeds the category
// and brand observation lists.
func (s *BehaviorService) TrackProductView(userID, productID, category, brand string) error {
	if productID == "" {
		return fmt.Errorf("productId cannot be empty")
	}
	return s.visitors.Update(userID, func(r *visitor.BehaviorRecord) {
		r.AddProductView(productID, category, brand, s.caps, time.Now())
	})
}

// TrackCartAction records one cart mutation or inspection.
func (s *BehaviorService) TrackCartAction(userID, productID, action string) error {
	if productID == "" {
		return fmt.Errorf("productId cannot be empty")
	}
	switch action {
	case visitor.CartActionAdd, visitor.CartActionRemove, visitor.CartActionView:
	default:
		return fmt.Errorf("unknown cart action %q", action)
	}
	return s.visitors.Update(userID, func(r *visitor.BehaviorRecord) {
		r.AddCartAction(productID, action, s.caps, time.Now())
	})
}

// UpdatePreferences shallow-merges the patch into the visitor's explicit
// preferences and returns the updated record.
func (s *BehaviorService) UpdatePreferences(userID string, patch visitor.PreferencesPatch) (*visitor.BehaviorRecord, error) {
	if err := s.visitors.Update(userID, func(r *visitor.BehaviorRecord) {
		r.MergePreferences(patch)
	}); err != nil {
		return nil, err
	}
	record, _ := s.visitors.Get(userID)
	return record, nil
}

// Behavior returns the visitor's full behavior record.
func (s *BehaviorService) Behavior(userID string) (*visitor.BehaviorRecord, bool) {
	return s.visitors.Get(userID)
}

// Summary aggregates the record into the analytics view.
func (s *BehaviorService) Summary(userID string) (*AnalyticsSummary, error) {
	record, ok := s.visitors.Get(userID)
	if !ok {
		return nil, fmt.Errorf("no behavior record for visitor %s", userID)
	}

	recs := record.Recommendations(s.topN, 0)
	recent := record.Searches
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	return &AnalyticsSummary{
		UserID:          record.UserID,
		SessionID:       record.SessionID,
		VisitCount:      record.VisitCount,
		LastVisit:       record.LastVisit,
		PageViewCount:   len(record.PageViews),
		SearchCount:     len(record.Searches),
		ProductViews:    len(record.ProductViews),
		CartActionCount: len(record.CartActions),
		TopCategories:   recs.RecommendedCategories,
		TopBrands:       recs.RecommendedBrands,
		RecentSearches:  recent,
	}, nil
}

// Clear deletes all tracked behavior for the visitor and bootstraps a fresh
// empty record under a brand-new visitor identity. Clearing again from any
// identity yields the same empty state, so repeated calls are idempotent.
func (s *BehaviorService) Clear(oldUserID, newUserID, sessionID string) (*visitor.BehaviorRecord, error) {
	marker := s.perf.StartOperation("visitor_clear")
	defer marker.Complete()

	if err := s.visitors.Delete(oldUserID); err != nil {
		s.logger.Analytics().Warn("Failed to delete stored visitor record",
			"visitorId", oldUserID, "error", err.Error())
	}

	record := visitor.NewRecord(newUserID, sessionID, s.priceMin, s.priceMax, time.Now())
	if err := s.visitors.Put(record); err != nil {
		return nil, fmt.Errorf("failed to rebootstrap visitor %s: %w", newUserID, err)
	}
	s.logger.WithVisitor(logging.ChannelAnalytics, newUserID).Info("Visitor data cleared",
		"previousVisitorId", oldUserID)
	marker.SetSuccess(true)
	return record, nil
}

// ActiveVisitors reports how many records are held in memory.
func (s *BehaviorService) ActiveVisitors() int {
	return s.visitors.Count()
}
