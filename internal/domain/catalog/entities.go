// Package catalog defines the product catalog entities consumed from the
// remote catalog API. All fields are read-only from this service's point of
// view; nothing here is computed or mutated locally.
package catalog

import "time"

// Stock status values as returned by the catalog API.
const (
	StockStatusInStock     = "instock"
	StockStatusOutOfStock  = "outofstock"
	StockStatusOnBackorder = "onbackorder"
)

// Product is the opaque immutable product record from the catalog API.
type Product struct {
	ID            string   `json:"_id"`
	Slug          string   `json:"slug"`
	SKU           string   `json:"sku"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Price         float64  `json:"price"`
	SalePrice     *float64 `json:"salePrice,omitempty"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Currency      string   `json:"currency"`
	StockQuantity int      `json:"stockQuantity"`
	StockStatus   string   `json:"stockStatus"`
	Categories    []string `json:"categories"`
	Brand         string   `json:"brand"`
	Tags          []string `json:"tags,omitempty"`
	Images        []string `json:"images,omitempty"`
	Rating        float64  `json:"rating"`
	Reviews       int      `json:"reviews"`
	IsNew         bool     `json:"isNew"`
	IsSale        bool     `json:"isSale"`

	// Descriptive attributes (fabric, occasion, season, sizing, ...) are kept
	// opaque; the storefront renders them, this service never interprets them.
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Category is auxiliary catalog metadata, read-only.
type Category struct {
	ID    string `json:"_id"`
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Brand is auxiliary catalog metadata, read-only.
type Brand struct {
	ID   string `json:"_id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}

// Page is the catalog API's paginated response envelope.
type Page struct {
	Data       []Product `json:"data"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
	HasNext    bool      `json:"hasNext"`
	HasPrev    bool      `json:"hasPrev"`
}

// Snapshot is a full-catalog capture. It is created by one completed fetch
// sequence and replaced wholesale on refresh; it is never partially mutated.
// Timestamp is epoch milliseconds, matching the stored JSON shape.
type Snapshot struct {
	Products  []Product `json:"products"`
	Timestamp int64     `json:"timestamp"`
}

// NewSnapshot captures products with the current time.
func NewSnapshot(products []Product, now time.Time) *Snapshot {
	return &Snapshot{Products: products, Timestamp: now.UnixMilli()}
}

// CapturedAt returns the capture time of the snapshot.
func (s *Snapshot) CapturedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

// Fresh reports whether the snapshot is within its TTL. A stale snapshot is
// still servable; staleness only governs whether a refresh is due.
func (s *Snapshot) Fresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.CapturedAt()) < ttl
}

// Age returns how old the snapshot is.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.CapturedAt())
}

// Metadata is the cached copy of auxiliary catalog metadata, stored with the
// same TTL discipline as the product snapshot.
type Metadata struct {
	Categories []Category `json:"categories"`
	Brands     []Brand    `json:"brands"`
	Timestamp  int64      `json:"timestamp"`
}

// Fresh reports whether the metadata copy is within its TTL.
func (m *Metadata) Fresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(time.UnixMilli(m.Timestamp)) < ttl
}
