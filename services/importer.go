package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"senetic-sync/models"

	"go.uber.org/zap"
)

// ImportOptions narrows one run. Zero values mean the configured defaults:
// empty category/brand lists fall back to the service's configured filters
// (an empty brand filter disables brand matching), MaxProducts 0 means the
// whole filtered set.
type ImportOptions struct {
	Categories  []string `json:"categories"`
	Brands      []string `json:"brands"`
	MaxProducts int      `json:"max_products"`
}

// ImportService joins the supplier feeds, reconciles each eligible product
// against the storefront and migrates its images. Runs are independent; no
// state survives a run.
type ImportService struct {
	senetic   *SeneticClient
	shopify   *ShopifyClient
	processor *HTMLProcessor
	relocator *ImageRelocator
	pacer     Pacer

	categories   []string
	brands       []string
	productDelay time.Duration
}

// NewImportService wires the import pipeline. categories is the accepted
// category list; brands may be empty to accept every brand.
func NewImportService(
	senetic *SeneticClient,
	shopify *ShopifyClient,
	processor *HTMLProcessor,
	relocator *ImageRelocator,
	pacer Pacer,
	categories, brands []string,
	productDelay time.Duration,
) *ImportService {
	return &ImportService{
		senetic:      senetic,
		shopify:      shopify,
		processor:    processor,
		relocator:    relocator,
		pacer:        pacer,
		categories:   categories,
		brands:       brands,
		productDelay: productDelay,
	}
}

// Run executes a full import and always returns a report, partial on
// failure. Only a feed fetch error makes the run itself fail.
func (s *ImportService) Run(ctx context.Context, opts ImportOptions) (*models.ImportReport, error) {
	start := time.Now()
	report := &models.ImportReport{
		Summary: models.ImportSummary{Errors: []models.SKUError{}},
		Results: []models.ProductResult{},
	}

	inventory, catalogue, err := s.fetchFeeds(ctx)
	if err != nil {
		report.Duration = time.Since(start).Seconds()
		return report, err
	}

	index := buildInventoryIndex(inventory.Lines)
	zap.L().Info("Built inventory index", zap.Int("items", len(index)))

	candidates := s.filterCatalogue(catalogue.Lines, opts)
	if opts.MaxProducts > 0 && len(candidates) > opts.MaxProducts {
		candidates = candidates[:opts.MaxProducts]
	}
	zap.L().Info("Filtered catalogue",
		zap.Int("total", len(catalogue.Lines)),
		zap.Int("matching", len(candidates)),
	)

	for _, line := range candidates {
		s.processCandidate(ctx, line, index, report)
		s.pacer.Wait(ctx, s.productDelay)
	}

	report.Duration = time.Since(start).Seconds()
	zap.L().Info("Import completed",
		zap.Int("imported", report.Summary.Imported),
		zap.Int("updated", report.Summary.Updated),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Int("failed", report.Summary.Failed),
		zap.Float64("duration_s", report.Duration),
	)
	return report, nil
}

// fetchFeeds issues the two independent feed reads concurrently, the only
// parallel calls in a run.
func (s *ImportService) fetchFeeds(ctx context.Context) (*models.InventoryFeed, *models.CatalogueFeed, error) {
	var (
		wg        sync.WaitGroup
		inventory *models.InventoryFeed
		catalogue *models.CatalogueFeed
		invErr    error
		catErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		inventory, invErr = s.senetic.FetchInventory(ctx)
	}()
	go func() {
		defer wg.Done()
		catalogue, catErr = s.senetic.FetchCatalogue(ctx)
	}()
	wg.Wait()

	if invErr != nil {
		return nil, nil, invErr
	}
	if catErr != nil {
		return nil, nil, catErr
	}
	return inventory, catalogue, nil
}

// buildInventoryIndex maps manufacturer item code to its inventory line,
// last write wins on duplicates.
func buildInventoryIndex(lines []models.InventoryLine) map[string]models.InventoryLine {
	index := make(map[string]models.InventoryLine, len(lines))
	for _, line := range lines {
		if line.ManufacturerItemCode != "" {
			index[line.ManufacturerItemCode] = line
		}
	}
	return index
}

// filterCatalogue keeps records whose normalised category matches, and when
// a brand list is active, whose normalised brand matches too.
func (s *ImportService) filterCatalogue(lines []models.CatalogueLine, opts ImportOptions) []models.CatalogueLine {
	categories := opts.Categories
	if len(categories) == 0 {
		categories = s.categories
	}
	brands := opts.Brands
	if len(brands) == 0 {
		brands = s.brands
	}

	wantCategory := normalizeSet(categories)
	wantBrand := normalizeSet(brands)

	var matched []models.CatalogueLine
	for _, line := range lines {
		if !wantCategory[normalizeToken(line.CategoryName())] {
			continue
		}
		if len(wantBrand) > 0 && !wantBrand[normalizeToken(line.BrandName())] {
			continue
		}
		matched = append(matched, line)
	}
	return matched
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if t := normalizeToken(v); t != "" {
			set[t] = true
		}
	}
	return set
}

// processCandidate runs the per-product state machine and records the
// outcome on the report. Nothing thrown here may abort the run.
func (s *ImportService) processCandidate(ctx context.Context, line models.CatalogueLine, index map[string]models.InventoryLine, report *models.ImportReport) {
	sku := line.ManufacturerItemCode

	inv, ok := index[sku]
	if !ok {
		zap.L().Debug("Skipping product without inventory", zap.String("sku", sku))
		report.Summary.Skipped++
		report.Summary.SkippedNoInventory++
		return
	}

	quantity := inv.AvailableQuantity()
	if quantity <= 0 {
		zap.L().Debug("Skipping product with zero stock", zap.String("sku", sku))
		report.Summary.Skipped++
		report.Summary.SkippedZeroStock++
		return
	}

	result, err := s.syncProduct(ctx, line, quantity, report)
	if err != nil {
		report.Summary.Failed++
		report.Summary.Errors = append(report.Summary.Errors, models.SKUError{
			SKU:   sku,
			Error: err.Error(),
		})
		zap.L().Error("Product sync failed", zap.String("sku", sku), zap.Error(err))
		report.Results = append(report.Results, models.ProductResult{
			Title:  line.ItemDescription,
			SKU:    sku,
			Status: models.StatusError,
			Error:  err.Error(),
		})
		return
	}
	report.Results = append(report.Results, result)
}

// syncProduct builds the draft, decides create vs update vs stale-recreate
// and migrates images. A panic in any step surfaces as a per-product error.
func (s *ImportService) syncProduct(ctx context.Context, line models.CatalogueLine, quantity int, report *models.ImportReport) (result models.ProductResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", line.ManufacturerItemCode, r)
		}
	}()

	sku := line.ManufacturerItemCode
	extraction := s.processor.Process(line.LongItemDescription)
	draft := BuildDraft(line, quantity)
	draft.BodyHTML = extraction.CleanedHTML

	status, productID, err := s.reconcile(ctx, sku, draft, report)
	if err != nil {
		return models.ProductResult{}, err
	}

	result = models.ProductResult{
		Title:  draft.Title,
		SKU:    sku,
		Status: status,
	}

	if len(extraction.ImageURLs) > 0 && productID != 0 {
		imgReport := s.relocator.RelocateAll(ctx, productID, extraction.ImageURLs)
		report.Summary.ImagesProcessed += imgReport.Processed
		report.Summary.ImagesUploaded += imgReport.Uploaded
		report.Summary.ImagesFailed += imgReport.Failed
		result.ImagesUploaded = imgReport.Uploaded
	}
	return result, nil
}

// reconcile looks the SKU up on the storefront and performs the write. The
// variant search may return near-matches; only exact SKU equality counts.
func (s *ImportService) reconcile(ctx context.Context, sku string, draft models.Product, report *models.ImportReport) (string, int64, error) {
	variants, err := s.shopify.FindVariantsBySKU(ctx, sku)
	if err != nil {
		return "", 0, err
	}

	var exact []models.Variant
	for _, v := range variants {
		if v.SKU == sku {
			exact = append(exact, v)
		}
	}

	if len(exact) == 0 {
		created, err := s.shopify.CreateProduct(ctx, draft)
		if err != nil {
			return "", 0, err
		}
		report.Summary.Imported++
		return models.StatusCreated, created.ID, nil
	}

	productID := exact[0].ProductID
	_, err = s.shopify.GetProduct(ctx, productID)
	switch {
	case err == nil:
		updated, err := s.shopify.UpdateProduct(ctx, productID, draft)
		if err != nil {
			return "", 0, err
		}
		report.Summary.Updated++
		return models.StatusUpdated, updated.ID, nil

	case errors.Is(err, ErrProductNotFound):
		// The variant index still points at a deleted product; recreate.
		zap.L().Warn("Stale product reference, recreating",
			zap.String("sku", sku),
			zap.Int64("product_id", productID),
		)
		created, err := s.shopify.CreateProduct(ctx, draft)
		if err != nil {
			return "", 0, err
		}
		report.Summary.Imported++
		return models.StatusCreated, created.ID, nil

	default:
		return "", 0, err
	}
}

// BuildDraft composes the storefront product from a matched catalogue and
// inventory pair. Gross price is retail plus tax, to two decimals; a missing
// retail price maps to "0.00".
func BuildDraft(line models.CatalogueLine, quantity int) models.Product {
	price := "0.00"
	if line.UnitRetailPrice != nil {
		price = strconv.FormatFloat(*line.UnitRetailPrice*(1+line.TaxRate/100), 'f', 2, 64)
	}
	cost := "0.00"
	if line.UnitNetPrice > 0 {
		cost = strconv.FormatFloat(line.UnitNetPrice, 'f', 2, 64)
	}
	barcode := ""
	if line.EAN != 0 {
		barcode = strconv.FormatInt(line.EAN, 10)
	}

	return models.Product{
		Title:       line.ItemDescription,
		Vendor:      line.BrandName(),
		ProductType: line.CategoryName(),
		Variants: []models.Variant{
			{
				Price:               price,
				Cost:                cost,
				SKU:                 line.ManufacturerItemCode,
				Barcode:             barcode,
				InventoryQuantity:   quantity,
				InventoryManagement: "shopify",
				Weight:              line.Weight,
				WeightUnit:          "kg",
			},
		},
	}
}
