// Package stores provides concrete cache store implementations over the
// key-value substrate.
package stores

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/domain/catalog"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/persistence/kv"
)

// SnapshotKey is the store key for the full-catalog snapshot.
const SnapshotKey = "catalog:snapshot"

// SnapshotStore owns the durable full-catalog snapshot. It keeps the last
// good snapshot in memory so the stale-fallback path works even after the
// durable store degrades.
type SnapshotStore struct {
	store  kv.Store
	logger *logging.ChanneledLogger

	mu         sync.RWMutex
	current    *catalog.Snapshot
	memoryOnly bool
}

// NewSnapshotStore creates a snapshot store over the given kv store.
func NewSnapshotStore(store kv.Store, logger *logging.ChanneledLogger) *SnapshotStore {
	if logger != nil {
		logger.Cache().Info("Initializing catalog snapshot store")
	}
	return &SnapshotStore{store: store, logger: logger}
}

// Load returns the current snapshot, reading through to the durable store
// when no in-memory copy exists. A stored snapshot that fails to parse is
// deleted and treated as absent.
func (ss *SnapshotStore) Load() (*catalog.Snapshot, bool) {
	start := time.Now()

	ss.mu.RLock()
	if ss.current != nil {
		snap := ss.current
		ss.mu.RUnlock()
		if ss.logger != nil {
			ss.logger.LogCacheOperation("load", SnapshotKey, true, time.Since(start))
		}
		return snap, true
	}
	memoryOnly := ss.memoryOnly
	ss.mu.RUnlock()

	if memoryOnly {
		return nil, false
	}

	raw, found, err := ss.store.Get(SnapshotKey)
	if err != nil || !found {
		if err != nil && ss.logger != nil {
			ss.logger.Store().Error("Snapshot read failed", "key", SnapshotKey, "error", err.Error())
		}
		if ss.logger != nil {
			ss.logger.LogCacheOperation("load", SnapshotKey, false, time.Since(start))
		}
		return nil, false
	}

	var snap catalog.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		// Corrupted snapshot: same as no cache present. Remove the key so the
		// next read does not re-parse it.
		if ss.logger != nil {
			ss.logger.Cache().Warn("Discarding corrupted snapshot", "key", SnapshotKey, "error", err.Error())
		}
		if delErr := ss.store.Delete(SnapshotKey); delErr != nil && ss.logger != nil {
			ss.logger.Store().Error("Failed to delete corrupted snapshot", "error", delErr.Error())
		}
		return nil, false
	}

	ss.mu.Lock()
	ss.current = &snap
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.LogCacheOperation("load", SnapshotKey, true, time.Since(start))
	}
	return &snap, true
}

// Save replaces the snapshot wholesale, in memory and in the durable store.
// A rejected write gets exactly one recovery attempt (delete key, retry);
// after a second failure the store degrades to memory-only for the rest of
// the process instead of failing the caller.
func (ss *SnapshotStore) Save(snap *catalog.Snapshot) {
	start := time.Now()

	ss.mu.Lock()
	ss.current = snap
	memoryOnly := ss.memoryOnly
	ss.mu.Unlock()

	if memoryOnly {
		return
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		if ss.logger != nil {
			ss.logger.Alert().Error("Snapshot serialization failed, continuing memory-only", "error", err.Error())
		}
		ss.degrade()
		return
	}

	if err := ss.store.Set(SnapshotKey, string(raw)); err != nil {
		if ss.logger != nil {
			ss.logger.Store().Warn("Snapshot write rejected, clearing key and retrying once", "error", err.Error())
		}
		if delErr := ss.store.Delete(SnapshotKey); delErr != nil && ss.logger != nil {
			ss.logger.Store().Error("Snapshot key delete failed during recovery", "error", delErr.Error())
		}
		if err := ss.store.Set(SnapshotKey, string(raw)); err != nil {
			if ss.logger != nil {
				ss.logger.Alert().Error("Snapshot write failed after recovery, continuing memory-only", "error", err.Error())
			}
			ss.degrade()
			return
		}
	}

	if ss.logger != nil {
		ss.logger.Cache().Info("Snapshot replaced",
			"products", len(snap.Products), "capturedAt", snap.CapturedAt(), "duration", time.Since(start))
	}
}

// Clear removes the snapshot from memory and the durable store.
func (ss *SnapshotStore) Clear() error {
	ss.mu.Lock()
	ss.current = nil
	ss.mu.Unlock()
	return ss.store.Delete(SnapshotKey)
}

// MemoryOnly reports whether the store has degraded to memory-only mode.
func (ss *SnapshotStore) MemoryOnly() bool {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.memoryOnly
}

func (ss *SnapshotStore) degrade() {
	ss.mu.Lock()
	ss.memoryOnly = true
	ss.mu.Unlock()
}
