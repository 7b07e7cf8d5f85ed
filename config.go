package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all environment-driven settings. Everything remote services
// need is passed in from here at construction, never read deeper down.
type Config struct {
	Port string
	Env  string

	SeneticBaseURL string
	SeneticAuth    string

	ShopifyStoreURL    string
	ShopifyAccessToken string
	ShopifyAPIVersion  string

	Categories []string
	Brands     []string

	ProductDelay time.Duration

	RedisURL string

	S3Bucket   string
	S3Prefix   string
	S3Endpoint string
	S3Region   string
	CDNDomain  string
}

// LoadConfig loads environment variables into a Config and validates the
// required credentials.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:               envOr("PORT", "8080"),
		Env:                envOr("APP_ENV", "production"),
		SeneticBaseURL:     envOr("SENETIC_BASE_URL", "https://b2b.senetic.com"),
		SeneticAuth:        os.Getenv("SENETIC_AUTH"),
		ShopifyStoreURL:    os.Getenv("SHOPIFY_STORE_URL"),
		ShopifyAccessToken: os.Getenv("SHOPIFY_ACCESS_TOKEN"),
		ShopifyAPIVersion:  envOr("SHOPIFY_API_VERSION", "2024-04"),
		Categories:         splitList(envOr("FILTER_CATEGORIES", "Sistemi di sorveglianza,Reti")),
		Brands:             splitList(os.Getenv("FILTER_BRANDS")),
		RedisURL:           os.Getenv("REDIS_URL"),
		S3Bucket:           envOr("AWS_S3_BUCKET", "senetic-sync"),
		S3Prefix:           envOr("AWS_S3_PREFIX", "relay-staging/"),
		S3Endpoint:         os.Getenv("AWS_S3_ENDPOINT"),
		S3Region:           envOr("AWS_REGION", "us-east-1"),
		CDNDomain:          os.Getenv("AWS_CLOUDFRONT_DOMAIN"),
	}

	delayMs, err := strconv.Atoi(envOr("PRODUCT_DELAY_MS", "500"))
	if err != nil || delayMs < 0 {
		return nil, fmt.Errorf("invalid PRODUCT_DELAY_MS")
	}
	cfg.ProductDelay = time.Duration(delayMs) * time.Millisecond

	if cfg.SeneticAuth == "" {
		return nil, fmt.Errorf("SENETIC_AUTH is required")
	}
	if cfg.ShopifyStoreURL == "" {
		return nil, fmt.Errorf("SHOPIFY_STORE_URL is required")
	}
	if cfg.ShopifyAccessToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
