package models

// Per-product outcome statuses. "errore" is kept for compatibility with the
// report format consumers already parse.
const (
	StatusCreated = "created"
	StatusUpdated = "updated"
	StatusError   = "errore"
)

// SKUError records a per-product failure with the remote error payload.
type SKUError struct {
	SKU   string `json:"sku"`
	Error string `json:"error"`
}

// ProductResult is one entry of the run's result list.
type ProductResult struct {
	Title          string `json:"title"`
	SKU            string `json:"sku"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	ImagesUploaded int    `json:"images_uploaded,omitempty"`
}

// ImportSummary accumulates counters for a whole run. It lives for the run
// only and is returned to the caller, never persisted.
type ImportSummary struct {
	Imported           int        `json:"imported"`
	Updated            int        `json:"updated"`
	Skipped            int        `json:"skipped"`
	SkippedNoInventory int        `json:"skipped_no_inventory"`
	SkippedZeroStock   int        `json:"skipped_zero_stock"`
	Failed             int        `json:"failed"`
	Errors             []SKUError `json:"errors"`
	ImagesProcessed    int        `json:"images_processed"`
	ImagesUploaded     int        `json:"images_uploaded"`
	ImagesFailed       int        `json:"images_failed"`
}

// ImportReport is the full run output: counters, per-product results and
// wall-clock duration in seconds.
type ImportReport struct {
	Summary  ImportSummary   `json:"summary"`
	Results  []ProductResult `json:"risultati"`
	Duration float64         `json:"duration"`
}
