package services

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"
)

var (
	unsafeFilenameRe  = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	underscoreRunRe   = regexp.MustCompile(`_{2,}`)
	uuidSuffixRe      = regexp.MustCompile(`_[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	hexHashSuffixRe   = regexp.MustCompile(`_[0-9a-f]{16,}$`)
	timestampSuffixRe = regexp.MustCompile(`_\d{10,}$`)
	productIDSuffixRe = regexp.MustCompile(`_\d{1,9}$`)
)

// UploadFilename derives the filename used when attaching an image to a
// product. It is deterministic for the same URL and product, suffixed with
// the product id so two products never share a name, and restricted to
// [A-Za-z0-9._-]. A URL that cannot be parsed falls back to a timestamp
// name; this function never fails.
func UploadFilename(rawURL string, productID int64) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return syntheticFilename(productID)
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return syntheticFilename(productID)
	}
	ext := strings.ToLower(path.Ext(base))
	name := sanitizeFilenamePart(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		return syntheticFilename(productID)
	}
	return fmt.Sprintf("%s_%d%s", name, productID, sanitizeFilenamePart(ext))
}

func syntheticFilename(productID int64) string {
	return fmt.Sprintf("image_%d_%d.jpg", productID, time.Now().UnixNano())
}

func sanitizeFilenamePart(s string) string {
	s = unsafeFilenameRe.ReplaceAllString(s, "_")
	s = underscoreRunRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// ComparisonKey reduces a filename to a stable identity for recognising an
// already-uploaded image: lower-cased, extension dropped, and the suffixes
// Shopify or this sync append (uuid, hex hash, timestamp, product id)
// stripped.
func ComparisonKey(filename string) string {
	name := strings.ToLower(strings.TrimSpace(filename))
	name = strings.TrimSuffix(name, strings.ToLower(path.Ext(name)))
	for {
		stripped := uuidSuffixRe.ReplaceAllString(name, "")
		stripped = hexHashSuffixRe.ReplaceAllString(stripped, "")
		stripped = timestampSuffixRe.ReplaceAllString(stripped, "")
		stripped = productIDSuffixRe.ReplaceAllString(stripped, "")
		if stripped == name {
			return name
		}
		name = stripped
	}
}
