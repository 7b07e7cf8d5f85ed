package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"senetic-sync/models"

	"go.uber.org/zap"
)

const (
	inventoryPath = "/Gateway/ClientApi/InventoryReportGet?UseItemCategoryFilter=true&LangId=IT"
	cataloguePath = "/Gateway/ClientApi/ProductCatalogueGet?UseItemCategoryFilter=true&LangId=IT"

	probeTimeout = 5 * time.Second
)

// SeneticClient reads the supplier's inventory and catalogue feeds. Both
// endpoints are single-page reads authenticated by a static header.
type SeneticClient struct {
	baseURL string
	auth    string
	client  *http.Client
}

// NewSeneticClient creates a feed client for the given gateway base URL.
func NewSeneticClient(baseURL, auth string) *SeneticClient {
	return &SeneticClient{
		baseURL: baseURL,
		auth:    auth,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// FetchInventory downloads the full inventory report.
func (c *SeneticClient) FetchInventory(ctx context.Context) (*models.InventoryFeed, error) {
	var feed models.InventoryFeed
	if err := c.get(ctx, inventoryPath, &feed); err != nil {
		return nil, fmt.Errorf("fetch inventory: %w", err)
	}
	zap.L().Info("Fetched Senetic inventory", zap.Int("lines", len(feed.Lines)))
	return &feed, nil
}

// FetchCatalogue downloads the full product catalogue.
func (c *SeneticClient) FetchCatalogue(ctx context.Context) (*models.CatalogueFeed, error) {
	var feed models.CatalogueFeed
	if err := c.get(ctx, cataloguePath, &feed); err != nil {
		return nil, fmt.Errorf("fetch catalogue: %w", err)
	}
	zap.L().Info("Fetched Senetic catalogue", zap.Int("lines", len(feed.Lines)))
	return &feed, nil
}

// Ping probes the inventory endpoint with a short timeout. Health-check use.
func (c *SeneticClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	var feed models.InventoryFeed
	return c.get(ctx, inventoryPath, &feed)
}

func (c *SeneticClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("senetic request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("senetic returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode senetic response: %w", err)
	}
	return nil
}
