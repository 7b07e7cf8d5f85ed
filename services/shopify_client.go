package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"senetic-sync/models"

	"go.uber.org/zap"
)

// ErrProductNotFound is the handled 404 from product verification: the
// variant index still references a product that was deleted. Callers treat
// it as a recreate signal, not a failure.
var ErrProductNotFound = errors.New("shopify: product not found")

// APIError carries the storefront's error payload so per-product failure
// records keep the remote response, not just a status code.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify returned status %d: %s", e.StatusCode, e.Body)
}

// ShopifyClient talks to the Admin REST API of a single store.
type ShopifyClient struct {
	storeURL   string
	token      string
	apiVersion string
	client     *http.Client
}

// NewShopifyClient creates a client for the given store. apiVersion may be
// empty; it defaults to the version this sync was built against.
func NewShopifyClient(storeURL, token, apiVersion string) *ShopifyClient {
	if apiVersion == "" {
		apiVersion = "2024-04"
	}
	return &ShopifyClient{
		storeURL:   storeURL,
		token:      token,
		apiVersion: apiVersion,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// FindVariantsBySKU runs the variant search. The endpoint may return
// near-matches; callers must filter for exact SKU equality.
func (c *ShopifyClient) FindVariantsBySKU(ctx context.Context, sku string) ([]models.Variant, error) {
	var list models.VariantList
	path := fmt.Sprintf("/variants.json?sku=%s", url.QueryEscape(sku))
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, fmt.Errorf("search variants for sku %q: %w", sku, err)
	}
	return list.Variants, nil
}

// GetProduct verifies a product still exists. A 404 maps to
// ErrProductNotFound.
func (c *ShopifyClient) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var payload models.ProductPayload
	path := fmt.Sprintf("/products/%d.json", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &payload.Product, nil
}

// CreateProduct creates a new product with its variant.
func (c *ShopifyClient) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	var payload models.ProductPayload
	body := models.ProductPayload{Product: product}
	if err := c.do(ctx, http.MethodPost, "/products.json", body, &payload); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	zap.L().Info("Created Shopify product",
		zap.Int64("product_id", payload.Product.ID),
		zap.String("title", payload.Product.Title),
	)
	return &payload.Product, nil
}

// UpdateProduct replaces an existing product in place.
func (c *ShopifyClient) UpdateProduct(ctx context.Context, id int64, product models.Product) (*models.Product, error) {
	var payload models.ProductPayload
	body := models.ProductPayload{Product: product}
	path := fmt.Sprintf("/products/%d.json", id)
	if err := c.do(ctx, http.MethodPut, path, body, &payload); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	zap.L().Info("Updated Shopify product",
		zap.Int64("product_id", id),
		zap.String("title", payload.Product.Title),
	)
	return &payload.Product, nil
}

// AttachImage adds an image to a product by source URL.
func (c *ShopifyClient) AttachImage(ctx context.Context, productID int64, image models.Image) (*models.Image, error) {
	var payload models.ImagePayload
	body := models.ImagePayload{Image: image}
	path := fmt.Sprintf("/products/%d/images.json", productID)
	if err := c.do(ctx, http.MethodPost, path, body, &payload); err != nil {
		return nil, fmt.Errorf("attach image to product %d: %w", productID, err)
	}
	return &payload.Image, nil
}

// ListProducts fetches up to limit products (single page).
func (c *ShopifyClient) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var list models.ProductList
	path := fmt.Sprintf("/products.json?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return list.Products, nil
}

// Ping probes shop.json with a short timeout. Health-check use.
func (c *ShopifyClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	var out map[string]interface{}
	return c.do(ctx, http.MethodGet, "/shop.json", nil, &out)
}

func (c *ShopifyClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := fmt.Sprintf("%s/admin/api/%s%s", c.storeURL, c.apiVersion, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode shopify response: %w", err)
		}
	}
	return nil
}
