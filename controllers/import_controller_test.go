package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"senetic-sync/models"
	"senetic-sync/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubImporter struct {
	report  *models.ImportReport
	err     error
	gotOpts services.ImportOptions
}

func (s *stubImporter) Run(_ context.Context, opts services.ImportOptions) (*models.ImportReport, error) {
	s.gotOpts = opts
	return s.report, s.err
}

type stubSupplier struct {
	inventory *models.InventoryFeed
	catalogue *models.CatalogueFeed
	err       error
	pingErr   error
}

func (s *stubSupplier) FetchInventory(context.Context) (*models.InventoryFeed, error) {
	return s.inventory, s.err
}

func (s *stubSupplier) FetchCatalogue(context.Context) (*models.CatalogueFeed, error) {
	return s.catalogue, s.err
}

func (s *stubSupplier) Ping(context.Context) error { return s.pingErr }

type stubStorefront struct {
	products []models.Product
	err      error
	pingErr  error
}

func (s *stubStorefront) ListProducts(context.Context, int) ([]models.Product, error) {
	return s.products, s.err
}

func (s *stubStorefront) Ping(context.Context) error { return s.pingErr }

func newTestRouter(ic *ImportController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/senetic-inventory", ic.ShowInventory)
	r.POST("/api/import/trigger", ic.TriggerImport)
	r.GET("/api/import/jobs/:id", ic.GetJobStatus)
	r.GET("/api/health", ic.HealthCheck)
	r.GET("/api/products/count", ic.CountProducts)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTriggerImportSuccess(t *testing.T) {
	importer := &stubImporter{report: &models.ImportReport{
		Summary: models.ImportSummary{Imported: 2, Updated: 1, Errors: []models.SKUError{}},
		Results: []models.ProductResult{{SKU: "A", Status: models.StatusCreated}},
	}}
	ic := NewImportController(importer, &stubSupplier{}, &stubStorefront{}, nil, NewRequestValidator())
	r := newTestRouter(ic)

	w := doRequest(r, http.MethodPost, "/api/import/trigger", `{"max_products":2,"categories":["Reti"]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Importazione completata!", resp["message"])
	assert.Contains(t, resp, "summary")
	assert.Contains(t, resp, "risultati")

	assert.Equal(t, 2, importer.gotOpts.MaxProducts)
	assert.Equal(t, []string{"Reti"}, importer.gotOpts.Categories)
}

func TestTriggerImportInvalidBody(t *testing.T) {
	importer := &stubImporter{report: &models.ImportReport{}}
	ic := NewImportController(importer, &stubSupplier{}, &stubStorefront{}, nil, NewRequestValidator())
	r := newTestRouter(ic)

	for _, body := range []string{`{"max_products":-1}`, `{"max_products":99999}`, `{bad json`} {
		w := doRequest(r, http.MethodPost, "/api/import/trigger", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestTriggerImportRunFailure(t *testing.T) {
	importer := &stubImporter{
		report: &models.ImportReport{Summary: models.ImportSummary{Failed: 0, Errors: []models.SKUError{}}},
		err:    errors.New("fetch inventory: senetic returned status 500"),
	}
	ic := NewImportController(importer, &stubSupplier{}, &stubStorefront{}, nil, NewRequestValidator())
	r := newTestRouter(ic)

	w := doRequest(r, http.MethodPost, "/api/import/trigger", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp, "summary")
}

func TestTriggerImportAsyncWithoutRedis(t *testing.T) {
	ic := NewImportController(&stubImporter{report: &models.ImportReport{}}, &stubSupplier{}, &stubStorefront{}, nil, NewRequestValidator())
	r := newTestRouter(ic)

	w := doRequest(r, http.MethodPost, "/api/import/trigger?async=true", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doRequest(r, http.MethodGet, "/api/import/jobs/abc", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestShowInventory(t *testing.T) {
	supplier := &stubSupplier{inventory: &models.InventoryFeed{Lines: []models.InventoryLine{
		{ManufacturerItemCode: "SKU-1"},
		{ManufacturerItemCode: "SKU-2"},
	}}}
	ic := NewImportController(&stubImporter{report: &models.ImportReport{}}, supplier, &stubStorefront{}, nil, NewRequestValidator())
	r := newTestRouter(ic)

	w := doRequest(r, http.MethodGet, "/senetic-inventory", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(2), resp["count"])
}

func TestShowInventoryFeedError(t *testing.T) {
	supplier := &stubSupplier{err: errors.New("senetic returned status 503")}
	ic := NewImportController(&stubImporter{report: &models.ImportReport{}}, supplier, &stubStorefront{}, nil, NewRequestValidator())
	r := newTestRouter(ic)

	w := doRequest(r, http.MethodGet, "/senetic-inventory", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthCheckDegraded(t *testing.T) {
	supplier := &stubSupplier{pingErr: errors.New("connection refused")}
	ic := NewImportController(&stubImporter{report: &models.ImportReport{}}, supplier, &stubStorefront{}, nil, NewRequestValidator())
	r := newTestRouter(ic)

	w := doRequest(r, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])

	svcs := resp["services"].(map[string]interface{})
	senetic := svcs["senetic"].(map[string]interface{})
	assert.Equal(t, "disconnected", senetic["status"])
	shopify := svcs["shopify"].(map[string]interface{})
	assert.Equal(t, "connected", shopify["status"])
}

func TestCountProducts(t *testing.T) {
	storefront := &stubStorefront{products: []models.Product{
		{ID: 1, Title: "A", Vendor: "Ubiquiti", Variants: []models.Variant{{SKU: "A-1"}}},
		{ID: 2, Title: "B", Vendor: "Ubiquiti"},
		{ID: 3, Title: "C"},
	}}
	ic := NewImportController(&stubImporter{report: &models.ImportReport{}}, &stubSupplier{}, storefront, nil, NewRequestValidator())
	r := newTestRouter(ic)

	w := doRequest(r, http.MethodGet, "/api/products/count", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["total_products"])

	counts := resp["vendor_counts"].(map[string]interface{})
	assert.Equal(t, float64(2), counts["Ubiquiti"])
	assert.Equal(t, float64(1), counts["Unknown"])
}
