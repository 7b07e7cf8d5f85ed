package controllers

import (
	"context"
	"time"

	"senetic-sync/models"
	"senetic-sync/services"
)

const (
	// DefaultContextTimeout bounds the short read endpoints.
	DefaultContextTimeout = 30 * time.Second

	// ImportTimeout bounds a synchronous import run; a run makes one paced
	// remote round-trip per product and image, so it needs room.
	ImportTimeout = 15 * time.Minute
)

// ImportRunner runs one import and returns its report.
type ImportRunner interface {
	Run(ctx context.Context, opts services.ImportOptions) (*models.ImportReport, error)
}

// SupplierFeedAPI is the read surface of the supplier gateway.
type SupplierFeedAPI interface {
	FetchInventory(ctx context.Context) (*models.InventoryFeed, error)
	FetchCatalogue(ctx context.Context) (*models.CatalogueFeed, error)
	Ping(ctx context.Context) error
}

// StorefrontAPI is the slice of the storefront API the HTTP surface needs.
type StorefrontAPI interface {
	ListProducts(ctx context.Context, limit int) ([]models.Product, error)
	Ping(ctx context.Context) error
}
