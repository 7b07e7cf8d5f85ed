package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"senetic-sync/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ImportController exposes the sync pipeline over HTTP: raw feed
// passthrough, import trigger (sync and async), health and product counts.
type ImportController struct {
	importer  ImportRunner
	senetic   SupplierFeedAPI
	shopify   StorefrontAPI
	rdb       *redis.Client
	validator *RequestValidator
}

// NewImportController wires the HTTP surface. rdb may be nil; async
// triggering then responds 503.
func NewImportController(importer ImportRunner, senetic SupplierFeedAPI, shopify StorefrontAPI, rdb *redis.Client, validator *RequestValidator) *ImportController {
	return &ImportController{
		importer:  importer,
		senetic:   senetic,
		shopify:   shopify,
		rdb:       rdb,
		validator: validator,
	}
}

// ShowInventory returns the raw supplier inventory feed.
func (ic *ImportController) ShowInventory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultContextTimeout)
	defer cancel()

	feed, err := ic.senetic.FetchInventory(ctx)
	if err != nil {
		zap.L().Error("Failed to fetch Senetic inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      feed,
		"count":     len(feed.Lines),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ShowCatalogue returns the raw supplier catalogue feed.
func (ic *ImportController) ShowCatalogue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultContextTimeout)
	defer cancel()

	feed, err := ic.senetic.FetchCatalogue(ctx)
	if err != nil {
		zap.L().Error("Failed to fetch Senetic catalogue", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      feed,
		"count":     len(feed.Lines),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// TriggerImport runs an import. ?async=true enqueues a background job
// instead and responds 202 with the job id.
func (ic *ImportController) TriggerImport(c *gin.Context) {
	opts, err := ic.validator.ParseTriggerRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if strings.EqualFold(strings.TrimSpace(c.Query("async")), "true") {
		ic.triggerAsync(c, opts)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ImportTimeout)
	defer cancel()

	report, err := ic.importer.Run(ctx, opts)
	if err != nil {
		zap.L().Error("Import run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     err.Error(),
			"summary":   report.Summary,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Importazione completata!",
		"summary":   report.Summary,
		"duration":  report.Duration,
		"risultati": report.Results,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (ic *ImportController) triggerAsync(c *gin.Context, opts services.ImportOptions) {
	if ic.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "async imports require redis",
		})
		return
	}

	jobID, err := services.EnqueueImportJob(c.Request.Context(), ic.rdb, opts)
	if err != nil {
		zap.L().Error("Failed to enqueue import job", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "failed to queue import job",
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"job_id":  jobID,
		"message": "Import queued for processing",
	})
}

// GetJobStatus returns the async job status/result stored in redis.
func (ic *ImportController) GetJobStatus(c *gin.Context) {
	if ic.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "async imports require redis"})
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "job id required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	val, err := ic.rdb.Get(ctx, services.ImportJobKey(id)).Result()
	if err == redis.Nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "job not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to get job status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to retrieve job status"})
		return
	}

	var status map[string]interface{}
	if err := json.Unmarshal([]byte(val), &status); err != nil {
		zap.L().Error("Failed to parse job status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to parse job result"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// HealthCheck probes both collaborators and reports healthy or degraded.
func (ic *ImportController) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	shopifyStatus, shopifyErr := "connected", ""
	if err := ic.shopify.Ping(ctx); err != nil {
		shopifyStatus, shopifyErr = "disconnected", err.Error()
	}
	seneticStatus, seneticErr := "connected", ""
	if err := ic.senetic.Ping(ctx); err != nil {
		seneticStatus, seneticErr = "disconnected", err.Error()
	}

	overall := "healthy"
	if shopifyStatus != "connected" || seneticStatus != "connected" {
		overall = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  overall,
		"services": gin.H{
			"shopify": gin.H{"status": shopifyStatus, "error": shopifyErr},
			"senetic": gin.H{"status": seneticStatus, "error": seneticErr},
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

// CountProducts breaks the storefront's products down by vendor.
func (ic *ImportController) CountProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultContextTimeout)
	defer cancel()

	products, err := ic.shopify.ListProducts(ctx, 250)
	if err != nil {
		zap.L().Error("Failed to count products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	vendorCounts := make(map[string]int)
	productsByVendor := make(map[string][]gin.H)
	for _, p := range products {
		vendor := p.Vendor
		if vendor == "" {
			vendor = "Unknown"
		}
		vendorCounts[vendor]++

		sku := ""
		if len(p.Variants) > 0 {
			sku = p.Variants[0].SKU
		}
		productsByVendor[vendor] = append(productsByVendor[vendor], gin.H{
			"id":         p.ID,
			"title":      p.Title,
			"sku":        sku,
			"created_at": p.CreatedAt,
			"updated_at": p.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"total_products":     len(products),
		"vendor_counts":      vendorCounts,
		"products_by_vendor": productsByVendor,
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
	})
}
