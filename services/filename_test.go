package services

import (
	"strings"
	"testing"
)

func TestUploadFilename(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		productID int64
		want      string
	}{
		{
			name:      "plain jpg",
			url:       "https://download.senetic.com/media/camera-front.jpg",
			productID: 42,
			want:      "camera-front_42.jpg",
		},
		{
			name:      "query string ignored",
			url:       "https://images.senetic.com/p/switch.png?w=800&h=600",
			productID: 7,
			want:      "switch_7.png",
		},
		{
			name:      "unsafe characters replaced",
			url:       "https://www.senetic.it/img/fotò%20prodotto.jpeg",
			productID: 3,
			want:      "fot_prodotto_3.jpeg",
		},
		{
			name:      "uppercase extension lowered",
			url:       "https://www.senetic.it/img/ROUTER.JPG",
			productID: 9,
			want:      "ROUTER_9.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UploadFilename(tt.url, tt.productID)
			if got != tt.want {
				t.Errorf("UploadFilename(%q, %d) = %q, want %q", tt.url, tt.productID, got, tt.want)
			}
			// Deterministic for the same input.
			if again := UploadFilename(tt.url, tt.productID); again != got {
				t.Errorf("UploadFilename not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestUploadFilenameDistinctProducts(t *testing.T) {
	url := "https://download.senetic.com/media/shared-image.jpg"
	a := UploadFilename(url, 1)
	b := UploadFilename(url, 2)
	if a == b {
		t.Errorf("same filename %q for different products", a)
	}
}

func TestUploadFilenameFallback(t *testing.T) {
	for _, url := range []string{"", "https://host.example.com/", "::::bad"} {
		got := UploadFilename(url, 5)
		if !strings.HasPrefix(got, "image_5_") || !strings.HasSuffix(got, ".jpg") {
			t.Errorf("UploadFilename(%q, 5) = %q, want synthetic image_5_*.jpg", url, got)
		}
	}
}

func TestComparisonKey(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"camera-front.jpg", "camera-front"},
		{"Camera-Front.JPG", "camera-front"},
		{"camera-front_42.jpg", "camera-front"},
		{"camera-front_42_1700000000000.jpg", "camera-front"},
		{"camera-front_a1b2c3d4-e5f6-7890-abcd-ef1234567890.png", "camera-front"},
		{"camera-front_deadbeefdeadbeef.png", "camera-front"},
		{"camera-front_42_deadbeefdeadbeef.png", "camera-front"},
		{"model-ax1800.jpg", "model-ax1800"},
	}
	for _, tt := range tests {
		if got := ComparisonKey(tt.filename); got != tt.want {
			t.Errorf("ComparisonKey(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestComparisonKeyRecognisesReupload(t *testing.T) {
	original := UploadFilename("https://download.senetic.com/media/antenna-kit.jpg", 77)
	// Shopify appends its own uuid suffix on collision.
	shopifyRenamed := strings.TrimSuffix(original, ".jpg") + "_a1b2c3d4-e5f6-7890-abcd-ef1234567890.jpg"
	if ComparisonKey(original) != ComparisonKey(shopifyRenamed) {
		t.Errorf("keys diverge: %q vs %q", ComparisonKey(original), ComparisonKey(shopifyRenamed))
	}
	if ComparisonKey(original) != "antenna-kit" {
		t.Errorf("ComparisonKey = %q, want %q", ComparisonKey(original), "antenna-kit")
	}
}
