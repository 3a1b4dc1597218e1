package upstream

import (
	"context"
	"fmt"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/domain/catalog"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
)

// Paginator assembles the full published catalog by walking pages in
// ascending order, one request at a time. Sequential paging keeps
// termination logic simple and page assembly in order.
type Paginator struct {
	client   *Client
	pageSize int
	maxPages int
	logger   *logging.ChanneledLogger
}

// NewPaginator creates a fetch coordinator. maxPages is a hard stop against
// a pathological upstream; it is far above any real catalog size.
func NewPaginator(client *Client, pageSize, maxPages int, logger *logging.ChanneledLogger) *Paginator {
	return &Paginator{
		client:   client,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// FetchAll requests pages until a short page or an explicit no-more-pages
// signal, concatenating rows in received order. Either signal terminates, so
// inconsistent total-count metadata cannot cause an infinite loop. Rows are
// not deduplicated. Any page failure aborts the whole fetch.
func (p *Paginator) FetchAll(ctx context.Context) ([]catalog.Product, error) {
	start := time.Now()
	var products []catalog.Product

	for page := 1; ; page++ {
		if p.maxPages > 0 && page > p.maxPages {
			return nil, fmt.Errorf("catalog paging exceeded %d pages without terminating", p.maxPages)
		}

		result, err := p.client.FetchPublishedPage(ctx, page, p.pageSize)
		if err != nil {
			return nil, err
		}

		products = append(products, result.Data...)

		if len(result.Data) < p.pageSize || !result.HasNext {
			break
		}
	}

	if p.logger != nil {
		p.logger.Catalog().Info("Full catalog fetch complete",
			"products", len(products), "duration", time.Since(start))
	}
	return products, nil
}
