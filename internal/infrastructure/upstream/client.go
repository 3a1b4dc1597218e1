// Package upstream implements the remote catalog API client and the
// sequential full-catalog fetch coordinator.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/domain/catalog"
	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
)

// Client talks to the remote catalog REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *logging.ChanneledLogger
}

// NewClient creates a catalog API client. timeout bounds each individual
// request; callers cancel the whole sequence through ctx.
func NewClient(baseURL string, timeout time.Duration, logger *logging.ChanneledLogger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     logger,
	}
}

// FetchPublishedPage requests one fixed-size page of published products.
func (c *Client) FetchPublishedPage(ctx context.Context, page, limit int) (*catalog.Page, error) {
	start := time.Now()

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sortBy", "createdAt")
	params.Set("sortOrder", "desc")

	var result catalog.Page
	if err := c.getJSON(ctx, "/products/published?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("failed to fetch catalog page %d: %w", page, err)
	}

	if c.logger != nil {
		c.logger.Catalog().Debug("Fetched catalog page",
			"page", page, "limit", limit, "rows", len(result.Data),
			"hasNext", result.HasNext, "duration", time.Since(start))
	}
	return &result, nil
}

// FetchCategories retrieves the category metadata list.
func (c *Client) FetchCategories(ctx context.Context) ([]catalog.Category, error) {
	var result struct {
		Data []catalog.Category `json:"data"`
	}
	if err := c.getJSON(ctx, "/categories", &result); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return result.Data, nil
}

// FetchBrands retrieves the brand metadata list.
func (c *Client) FetchBrands(ctx context.Context) ([]catalog.Brand, error) {
	var result struct {
		Data []catalog.Brand `json:"data"`
	}
	if err := c.getJSON(ctx, "/brands", &result); err != nil {
		return nil, fmt.Errorf("failed to fetch brands: %w", err)
	}
	return result.Data, nil
}

// Ping checks upstream reachability for the status endpoint.
func (c *Client) Ping(ctx context.Context) error {
	var result catalog.Page
	params := url.Values{}
	params.Set("page", "1")
	params.Set("limit", "1")
	return c.getJSON(ctx, "/products/published?"+params.Encode(), &result)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
