package stores

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/domain/visitor"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/persistence/kv"
)

// visitorKey builds the store key for one visitor's behavior record.
func visitorKey(userID string) string {
	return "visitor:" + userID
}

// VisitorsStore holds active behavior records in memory and persists every
// mutation wholesale to the durable store. All record mutation goes through
// Update so concurrent requests for the same visitor serialize here. Get
// hands out deep copies taken under the lock, so a tracking POST and a read
// of the same visitor never touch the same slices.
type VisitorsStore struct {
	mu      sync.RWMutex
	records map[string]*visitor.BehaviorRecord
	store   kv.Store
	logger  *logging.ChanneledLogger
}

// NewVisitorsStore creates a visitors store over the given kv store.
func NewVisitorsStore(store kv.Store, logger *logging.ChanneledLogger) *VisitorsStore {
	if logger != nil {
		logger.Cache().Info("Initializing visitors store")
	}
	return &VisitorsStore{
		records: make(map[string]*visitor.BehaviorRecord),
		store:   store,
		logger:  logger,
	}
}

// Get returns a deep copy of the record for userID, reading through to the
// durable store. A stored record that fails to parse is discarded like a
// miss, so bootstrap recreates it.
func (vs *VisitorsStore) Get(userID string) (*visitor.BehaviorRecord, bool) {
	start := time.Now()

	vs.mu.RLock()
	record, found := vs.records[userID]
	if found {
		record = record.Clone()
	}
	vs.mu.RUnlock()
	if found {
		if vs.logger != nil {
			vs.logger.LogCacheOperation("get", visitorKey(userID), true, time.Since(start))
		}
		return record, true
	}

	raw, ok, err := vs.store.Get(visitorKey(userID))
	if err != nil || !ok {
		if err != nil && vs.logger != nil {
			vs.logger.Store().Error("Visitor record read failed", "visitorId", userID, "error", err.Error())
		}
		return nil, false
	}

	var loaded visitor.BehaviorRecord
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		if vs.logger != nil {
			vs.logger.Analytics().Warn("Discarding corrupted visitor record", "visitorId", userID, "error", err.Error())
		}
		vs.store.Delete(visitorKey(userID))
		return nil, false
	}

	vs.mu.Lock()
	// Another request may have loaded it meanwhile; keep the first copy so
	// every caller mutates the same record.
	if existing, dup := vs.records[userID]; dup {
		clone := existing.Clone()
		vs.mu.Unlock()
		return clone, true
	}
	vs.records[userID] = &loaded
	vs.mu.Unlock()

	if vs.logger != nil {
		vs.logger.LogCacheOperation("get", visitorKey(userID), true, time.Since(start))
	}
	return loaded.Clone(), true
}

// Put registers a record and persists it. The store keeps its own copy, so
// the caller's pointer stays detached from later Updates.
func (vs *VisitorsStore) Put(record *visitor.BehaviorRecord) error {
	kept := record.Clone()
	vs.mu.Lock()
	vs.records[record.UserID] = kept
	vs.mu.Unlock()
	return vs.persist(kept)
}

// Update applies fn to the visitor's record under the store lock and then
// persists the whole record, per the persist-on-every-event contract.
func (vs *VisitorsStore) Update(userID string, fn func(*visitor.BehaviorRecord)) error {
	vs.mu.Lock()
	record, found := vs.records[userID]
	if !found {
		vs.mu.Unlock()
		return fmt.Errorf("no behavior record for visitor %s", userID)
	}
	fn(record)
	vs.mu.Unlock()

	return vs.persist(record)
}

// Delete removes the record from memory and from the durable store.
func (vs *VisitorsStore) Delete(userID string) error {
	vs.mu.Lock()
	delete(vs.records, userID)
	vs.mu.Unlock()
	return vs.store.Delete(visitorKey(userID))
}

// Count reports the number of records currently held in memory.
func (vs *VisitorsStore) Count() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.records)
}

func (vs *VisitorsStore) persist(record *visitor.BehaviorRecord) error {
	start := time.Now()

	vs.mu.RLock()
	raw, err := json.Marshal(record)
	vs.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to serialize visitor record: %w", err)
	}

	if err := vs.store.Set(visitorKey(record.UserID), string(raw)); err != nil {
		if vs.logger != nil {
			vs.logger.Store().Error("Visitor record write failed", "visitorId", record.UserID, "error", err.Error())
		}
		return err
	}

	if vs.logger != nil {
		vs.logger.LogCacheOperation("persist", visitorKey(record.UserID), true, time.Since(start))
	}
	return nil
}
