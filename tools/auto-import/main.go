// Command auto-import runs one full Senetic-to-Shopify import from the
// command line and writes a dated JSON report. Intended for cron.
//
// Usage:
//
//	go run ./tools/auto-import -max 50 -categories "Reti" -brands "Ubiquiti"
//
// Exit code 0 on success, 1 on any failure.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"senetic-sync/logger"
	"senetic-sync/services"
	"senetic-sync/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const runTimeout = 30 * time.Minute

func main() {
	maxProducts := flag.Int("max", 0, "cap the number of products processed (0 = no cap)")
	categories := flag.String("categories", "", "comma-separated category filter (overrides FILTER_CATEGORIES)")
	brands := flag.String("brands", "", "comma-separated brand filter (overrides FILTER_BRANDS)")
	flag.Parse()

	_ = godotenv.Load()

	day := time.Now().Format("2006-01-02")
	if err := os.MkdirAll("logs", 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logs dir: %v\n", err)
		os.Exit(1)
	}
	logFile, err := os.OpenFile(filepath.Join("logs", "import-"+day+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger.InitializeWithWriter(envOr("APP_ENV", "production"), logFile)
	defer zap.L().Sync()

	zap.L().Info("=== Avvio importazione automatica ===", zap.String("date", day))

	for _, key := range []string{"SENETIC_AUTH", "SHOPIFY_STORE_URL", "SHOPIFY_ACCESS_TOKEN"} {
		if os.Getenv(key) == "" {
			zap.L().Error("Missing required environment variable", zap.String("key", key))
			writeErrorReport(day, fmt.Sprintf("%s is required", key))
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	importer, senetic, shopify, err := buildPipeline(ctx)
	if err != nil {
		zap.L().Error("Failed to build pipeline", zap.Error(err))
		writeErrorReport(day, err.Error())
		os.Exit(1)
	}

	// Fail fast when either side is unreachable rather than half-running.
	if err := senetic.Ping(ctx); err != nil {
		zap.L().Error("Senetic health check failed", zap.Error(err))
		writeErrorReport(day, "senetic unreachable: "+err.Error())
		os.Exit(1)
	}
	if err := shopify.Ping(ctx); err != nil {
		zap.L().Error("Shopify health check failed", zap.Error(err))
		writeErrorReport(day, "shopify unreachable: "+err.Error())
		os.Exit(1)
	}
	zap.L().Info("Health checks passed")

	opts := services.ImportOptions{
		Categories:  splitList(*categories),
		Brands:      splitList(*brands),
		MaxProducts: *maxProducts,
	}

	report, runErr := importer.Run(ctx, opts)
	if runErr != nil {
		zap.L().Error("Import run failed", zap.Error(runErr))
		writeErrorReport(day, runErr.Error())
		os.Exit(1)
	}

	reportPath := "report-" + day + ".json"
	if err := writeJSON(reportPath, report); err != nil {
		zap.L().Error("Failed to write report", zap.Error(err))
		os.Exit(1)
	}

	zap.L().Info("=== Importazione completata ===",
		zap.Int("imported", report.Summary.Imported),
		zap.Int("updated", report.Summary.Updated),
		zap.Int("skipped", report.Summary.Skipped),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("images_uploaded", report.Summary.ImagesUploaded),
		zap.Float64("duration_s", report.Duration),
		zap.String("report", reportPath),
	)

	if report.Summary.Failed > 0 {
		zap.L().Warn("Run finished with product-level failures", zap.Int("failed", report.Summary.Failed))
	}
}

// buildPipeline wires the same dependency graph as the HTTP server, minus
// redis and the web layer.
func buildPipeline(ctx context.Context) (*services.ImportService, *services.SeneticClient, *services.ShopifyClient, error) {
	region := envOr("AWS_REGION", "us-east-1")
	cfgOpts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if ak, sk := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); ak != "" || sk != "" {
		cfgOpts = append(cfgOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ak, sk, ""),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load AWS config: %w", err)
	}
	s3Endpoint := os.Getenv("AWS_S3_ENDPOINT")
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if s3Endpoint != "" {
			o.BaseEndpoint = aws.String(s3Endpoint)
		}
	})
	store := storage.NewS3Store(s3Client, envOr("AWS_S3_BUCKET", "senetic-sync"), s3Endpoint, os.Getenv("AWS_CLOUDFRONT_DOMAIN"))

	rules := services.DefaultDomainRules()
	senetic := services.NewSeneticClient(envOr("SENETIC_BASE_URL", "https://b2b.senetic.com"), os.Getenv("SENETIC_AUTH"))
	shopify := services.NewShopifyClient(os.Getenv("SHOPIFY_STORE_URL"), os.Getenv("SHOPIFY_ACCESS_TOKEN"), envOr("SHOPIFY_API_VERSION", "2024-04"))
	pacer := services.NewSleepPacer()
	relocator := services.NewImageRelocator(rules, store, shopify, pacer, envOr("AWS_S3_PREFIX", "relay-staging/"))

	delayMs, err := strconv.Atoi(envOr("PRODUCT_DELAY_MS", "500"))
	if err != nil || delayMs < 0 {
		return nil, nil, nil, fmt.Errorf("invalid PRODUCT_DELAY_MS")
	}

	importer := services.NewImportService(
		senetic,
		shopify,
		services.NewHTMLProcessor(rules),
		relocator,
		pacer,
		splitList(envOr("FILTER_CATEGORIES", "Sistemi di sorveglianza,Reti")),
		splitList(os.Getenv("FILTER_BRANDS")),
		time.Duration(delayMs)*time.Millisecond,
	)
	return importer, senetic, shopify, nil
}

func writeErrorReport(day, message string) {
	_ = writeJSON("error-report-"+day+".json", map[string]string{
		"error":     message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
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
