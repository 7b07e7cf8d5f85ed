package services

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

// Base host used to resolve relative image paths found in descriptions.
const descriptionBaseURL = "https://www.senetic.it"

// ExtractionStats counts what the processor found and removed.
type ExtractionStats struct {
	ImagesFound   int `json:"images_found"`
	ImagesRemoved int `json:"images_removed"`
	VideosRemoved int `json:"videos_removed"`
	LengthBefore  int `json:"length_before"`
	LengthAfter   int `json:"length_after"`
}

// ExtractionResult is the output of processing one product description.
type ExtractionResult struct {
	ImageURLs   []string        `json:"image_urls"`
	CleanedHTML string          `json:"cleaned_html"`
	Stats       ExtractionStats `json:"stats"`
}

// HTMLProcessor extracts migratable image URLs from a product's long
// description and produces a cleaned body without embedded media.
type HTMLProcessor struct {
	rules DomainRules
}

func NewHTMLProcessor(rules DomainRules) *HTMLProcessor {
	return &HTMLProcessor{rules: rules}
}

// Supplier descriptions end with a "Confronto" comparison table whose images
// belong to other products. The marker shows up in a handful of tag shapes
// depending on the catalogue revision; matching is case-sensitive.
var comparisonMarkers = []*regexp.Regexp{
	regexp.MustCompile(`<h2[^>]*>\s*Confronto\s*</h2>`),
	regexp.MustCompile(`<h3[^>]*>\s*Confronto\s*</h3>`),
	regexp.MustCompile(`<h2[^>]*>\s*<strong[^>]*>\s*Confronto\s*</strong>\s*</h2>`),
	regexp.MustCompile(`<h3[^>]*>\s*<strong[^>]*>\s*Confronto\s*</strong>\s*</h3>`),
	regexp.MustCompile(`<strong[^>]*>\s*Confronto\s*</strong>`),
	regexp.MustCompile(`<b[^>]*>\s*Confronto\s*</b>`),
}

var (
	imgTagRe    = regexp.MustCompile(`(?i)<img[^>]*>`)
	imgSrcRe    = regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*["']([^"']+)["']`)
	videoRe     = regexp.MustCompile(`(?is)<video[^>]*>.*?</video>`)
	sourceMp4Re = regexp.MustCompile(`(?i)<source[^>]*\.mp4[^>]*/?>`)
	mp4LinkRe   = regexp.MustCompile(`(?is)<a[^>]*href\s*=\s*["'][^"']*\.mp4["'][^>]*>.*?</a>`)
	bareMp4Re   = regexp.MustCompile(`(?i)https?://[^\s"'<>]+\.mp4`)
	brRunRe     = regexp.MustCompile(`(?i)(?:<br\s*/?>\s*){2,}`)
	spaceRunRe  = regexp.MustCompile(`\s{2,}`)

	emptyFigureRe = regexp.MustCompile(`(?i)<figure[^>]*>\s*</figure>`)
	emptyDivRe    = regexp.MustCompile(`(?i)<div[^>]*>\s*</div>`)
	emptyParaRe   = regexp.MustCompile(`(?i)<p[^>]*>\s*</p>`)

	trailingCloseRe = regexp.MustCompile(`</([a-zA-Z][a-zA-Z0-9]*)>\s*$`)

	imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif"}
)

// Process decodes entities, cuts the comparison section, extracts allowed
// image URLs and returns the cleaned body. Never fails: bad input degrades
// to an empty result.
func (p *HTMLProcessor) Process(raw string) ExtractionResult {
	result := ExtractionResult{ImageURLs: []string{}}
	if strings.TrimSpace(raw) == "" {
		return result
	}

	decoded := html.UnescapeString(raw)
	result.Stats.LengthBefore = len(decoded)

	working := decoded
	if idx := earliestMarkerIndex(decoded); idx >= 0 {
		working = decoded[:idx]
	}

	result.ImageURLs = p.extractImageURLs(working)
	result.Stats.ImagesFound = len(imgTagRe.FindAllString(working, -1))

	result.CleanedHTML = cleanBody(working, &result.Stats)
	result.Stats.LengthAfter = len(result.CleanedHTML)
	return result
}

// earliestMarkerIndex returns the byte offset of the first comparison marker
// in any recognised shape, or -1.
func earliestMarkerIndex(s string) int {
	idx := -1
	for _, re := range comparisonMarkers {
		if loc := re.FindStringIndex(s); loc != nil {
			if idx < 0 || loc[0] < idx {
				idx = loc[0]
			}
		}
	}
	return idx
}

// extractImageURLs collects <img src> values with an image extension,
// resolved to absolute https URLs, allow-listed and de-duplicated keeping
// first-seen order.
func (p *HTMLProcessor) extractImageURLs(body string) []string {
	urls := []string{}
	seen := make(map[string]bool)
	for _, m := range imgSrcRe.FindAllStringSubmatch(body, -1) {
		resolved, ok := resolveImageURL(m[1])
		if !ok {
			continue
		}
		u, err := url.Parse(resolved)
		if err != nil || !p.rules.Allowed(u.Hostname()) {
			continue
		}
		if !seen[resolved] {
			seen[resolved] = true
			urls = append(urls, resolved)
		}
	}
	return urls
}

// resolveImageURL normalises an img src: data URIs and non-image paths are
// rejected, protocol-relative URLs are upgraded to https, relative paths are
// resolved against the supplier base host.
func resolveImageURL(src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" || strings.HasPrefix(src, "data:") {
		return "", false
	}
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	u, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if !hasImageExtension(u.Path) {
		return "", false
	}
	if !u.IsAbs() {
		base, _ := url.Parse(descriptionBaseURL)
		u = base.ResolveReference(u)
	}
	return u.String(), true
}

func hasImageExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}

// cleanBody strips embedded media and collapses the leftovers.
func cleanBody(body string, stats *ExtractionStats) string {
	stats.ImagesRemoved = len(imgTagRe.FindAllString(body, -1))
	stats.VideosRemoved = len(videoRe.FindAllString(body, -1)) +
		len(mp4LinkRe.FindAllString(body, -1))

	cleaned := imgTagRe.ReplaceAllString(body, "")
	cleaned = videoRe.ReplaceAllString(cleaned, "")
	cleaned = sourceMp4Re.ReplaceAllString(cleaned, "")
	cleaned = mp4LinkRe.ReplaceAllString(cleaned, "")
	cleaned = bareMp4Re.ReplaceAllString(cleaned, "")

	// Emptied containers can nest, so collapse until stable.
	for {
		next := emptyFigureRe.ReplaceAllString(cleaned, "")
		next = emptyDivRe.ReplaceAllString(next, "")
		next = emptyParaRe.ReplaceAllString(next, "")
		if next == cleaned {
			break
		}
		cleaned = next
	}

	cleaned = brRunRe.ReplaceAllString(cleaned, "<br>")
	cleaned = spaceRunRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = stripDanglingClose(cleaned)
	return strings.TrimSpace(cleaned)
}

// stripDanglingClose removes a single trailing closing tag that has no
// matching opener, a frequent artefact of the comparison-section cut.
func stripDanglingClose(body string) string {
	loc := trailingCloseRe.FindStringSubmatchIndex(body)
	if loc == nil {
		return body
	}
	tag := strings.ToLower(body[loc[2]:loc[3]])
	lower := strings.ToLower(body)
	opens := strings.Count(lower, "<"+tag+">") + strings.Count(lower, "<"+tag+" ")
	closes := strings.Count(lower, "</"+tag+">")
	if closes > opens {
		return body[:loc[0]]
	}
	return body
}
