package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"senetic-sync/models"
	"senetic-sync/storage"

	"go.uber.org/zap"
)

const (
	// MaxImagesPerProduct caps attach attempts no matter how many URLs the
	// description yielded.
	MaxImagesPerProduct = 5

	directAttachDelay = 500 * time.Millisecond
	relayAttachDelay  = time.Second

	downloadTimeout   = 15 * time.Second
	maxRedirects      = 5
	maxImageBytes     = 10 << 20
	downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// RelocationReport counts the image work done for one product.
type RelocationReport struct {
	Processed int `json:"processed"`
	Uploaded  int `json:"uploaded"`
	Failed    int `json:"failed"`
}

// ImageRelocator moves description images onto a product. Direct hosts are
// attached by original URL; relay hosts are downloaded, staged in object
// storage, attached from the staged URL and then cleaned up.
type ImageRelocator struct {
	rules         DomainRules
	store         storage.ObjectStore
	shopify       *ShopifyClient
	pacer         Pacer
	downloader    *http.Client
	stagingPrefix string
}

// NewImageRelocator wires a relocator. stagingPrefix namespaces staged
// objects so leftover keys are recognisable for cleanup.
func NewImageRelocator(rules DomainRules, store storage.ObjectStore, shopify *ShopifyClient, pacer Pacer, stagingPrefix string) *ImageRelocator {
	return &ImageRelocator{
		rules:   rules,
		store:   store,
		shopify: shopify,
		pacer:   pacer,
		downloader: &http.Client{
			Timeout: downloadTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		stagingPrefix: stagingPrefix,
	}
}

// RelocateAll processes up to MaxImagesPerProduct URLs sequentially, pacing
// between attaches. An image failure never fails the product.
func (r *ImageRelocator) RelocateAll(ctx context.Context, productID int64, urls []string) RelocationReport {
	report := RelocationReport{}
	if len(urls) > MaxImagesPerProduct {
		urls = urls[:MaxImagesPerProduct]
	}
	for _, rawURL := range urls {
		report.Processed++
		relayed, err := r.relocateOne(ctx, productID, rawURL)
		if err != nil {
			report.Failed++
			zap.L().Warn("Image relocation failed",
				zap.Int64("product_id", productID),
				zap.String("url", rawURL),
				zap.Error(err),
			)
		} else {
			report.Uploaded++
		}
		if relayed {
			r.pacer.Wait(ctx, relayAttachDelay)
		} else {
			r.pacer.Wait(ctx, directAttachDelay)
		}
	}
	return report
}

// relocateOne handles a single image and reports whether the relay path ran
// (relay attaches need the longer pacing delay).
func (r *ImageRelocator) relocateOne(ctx context.Context, productID int64, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse image url: %w", err)
	}
	filename := UploadFilename(rawURL, productID)

	switch r.rules.Classify(u.Hostname()) {
	case HostDirect:
		_, err := r.shopify.AttachImage(ctx, productID, models.Image{Src: rawURL, Filename: filename})
		return false, err

	case HostRelay:
		data, contentType, err := r.download(ctx, rawURL)
		if err != nil {
			return true, err
		}
		key := fmt.Sprintf("%s%d/%s", r.stagingPrefix, productID, filename)
		stagedURL, err := r.store.Upload(ctx, key, data, contentType)
		if err != nil {
			return true, fmt.Errorf("stage image: %w", err)
		}
		if _, err := r.shopify.AttachImage(ctx, productID, models.Image{Src: stagedURL, Filename: filename}); err != nil {
			r.deleteStaged(ctx, key)
			return true, err
		}
		r.deleteStaged(ctx, key)
		return true, nil

	default:
		// Extraction drops blocked hosts, so reaching this is a caller bug.
		return false, fmt.Errorf("host %q is not allowed", u.Hostname())
	}
}

// download fetches the image bytes with browser-like headers. The relay CDN
// rejects anonymous fetches without a plausible user agent and referer.
func (r *ImageRelocator) download(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}
	req.Header.Set("User-Agent", downloadUserAgent)
	req.Header.Set("Referer", descriptionBaseURL)

	resp, err := r.downloader.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}

// deleteStaged is best effort; a leftover staged object is logged, never
// surfaced.
func (r *ImageRelocator) deleteStaged(ctx context.Context, key string) {
	if err := r.store.Delete(ctx, key); err != nil {
		zap.L().Warn("Failed to delete staged image", zap.String("key", key), zap.Error(err))
	}
}
