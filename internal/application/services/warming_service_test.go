package services

import (
	"context"
	"testing"
	"time"
)

func TestWarmAllPrimesSnapshotAndMetadata(t *testing.T) {
	api := &fakeCatalogAPI{products: inventory(40)}
	svc := newTestCatalogService(t, api, 10*time.Minute)
	warmer := NewWarmingService(svc, time.Minute, quietLogger(t))

	warmer.WarmAll(context.Background())

	status := svc.Status()
	if !status.HasSnapshot || status.ProductCount != 40 {
		t.Errorf("expected warmed 40-product snapshot, got %+v", status)
	}
	if cats, err := svc.Categories(context.Background()); err != nil || len(cats) != 1 {
		t.Errorf("expected warmed categories, got %v (err %v)", cats, err)
	}
}

func TestWarmAllFetchesMetadataOnce(t *testing.T) {
	api := &fakeCatalogAPI{products: inventory(40)}
	svc := newTestCatalogService(t, api, 10*time.Minute)
	warmer := NewWarmingService(svc, time.Minute, quietLogger(t))

	warmer.WarmAll(context.Background())

	if n := api.categoryRequests.Load(); n != 1 {
		t.Errorf("expected one category fetch during warming, got %d", n)
	}
	if n := api.brandRequests.Load(); n != 1 {
		t.Errorf("expected one brand fetch during warming, got %d", n)
	}
	// One reachability check plus one snapshot fetch.
	if n := api.pageRequests.Load(); n != 2 {
		t.Errorf("expected two page requests during warming, got %d", n)
	}
}

func TestWarmAllSurvivesUnreachableUpstream(t *testing.T) {
	api := &fakeCatalogAPI{products: inventory(10)}
	api.failing.Store(true)
	svc := newTestCatalogService(t, api, 10*time.Minute)
	warmer := NewWarmingService(svc, time.Minute, quietLogger(t))

	// Must return, not fail startup; the read-through path recovers later.
	warmer.WarmAll(context.Background())

	api.failing.Store(false)
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load after failed warming should recover: %v", err)
	}
}
