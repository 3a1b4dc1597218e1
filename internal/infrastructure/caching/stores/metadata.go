package stores

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/domain/catalog"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/persistence/kv"
)

// MetadataKey is the store key for the categories/brands metadata copy.
const MetadataKey = "catalog:metadata"

// MetadataStore caches the auxiliary category/brand lists with the same
// read-stale, refresh-in-background discipline as the product snapshot.
type MetadataStore struct {
	store  kv.Store
	logger *logging.ChanneledLogger

	mu      sync.RWMutex
	current *catalog.Metadata
}

// NewMetadataStore creates a metadata store over the given kv store.
func NewMetadataStore(store kv.Store, logger *logging.ChanneledLogger) *MetadataStore {
	return &MetadataStore{store: store, logger: logger}
}

// Load returns the cached metadata copy, reading through to the durable
// store. Corrupted entries are discarded like a miss.
func (ms *MetadataStore) Load() (*catalog.Metadata, bool) {
	ms.mu.RLock()
	if ms.current != nil {
		meta := ms.current
		ms.mu.RUnlock()
		return meta, true
	}
	ms.mu.RUnlock()

	raw, found, err := ms.store.Get(MetadataKey)
	if err != nil || !found {
		return nil, false
	}

	var meta catalog.Metadata
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		if ms.logger != nil {
			ms.logger.Cache().Warn("Discarding corrupted metadata", "key", MetadataKey, "error", err.Error())
		}
		ms.store.Delete(MetadataKey)
		return nil, false
	}

	ms.mu.Lock()
	ms.current = &meta
	ms.mu.Unlock()
	return &meta, true
}

// Save replaces the metadata copy wholesale. Metadata is a convenience
// cache; a failed write is logged and otherwise ignored.
func (ms *MetadataStore) Save(categories []catalog.Category, brands []catalog.Brand, now time.Time) {
	meta := &catalog.Metadata{
		Categories: categories,
		Brands:     brands,
		Timestamp:  now.UnixMilli(),
	}

	ms.mu.Lock()
	ms.current = meta
	ms.mu.Unlock()

	raw, err := json.Marshal(meta)
	if err != nil {
		if ms.logger != nil {
			ms.logger.Store().Error("Metadata serialization failed", "error", err.Error())
		}
		return
	}
	if err := ms.store.Set(MetadataKey, string(raw)); err != nil && ms.logger != nil {
		ms.logger.Store().Warn("Metadata write rejected", "error", err.Error())
	}
}
