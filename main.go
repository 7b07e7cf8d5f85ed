package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"senetic-sync/controllers"
	"senetic-sync/logger"
	"senetic-sync/routes"
	"senetic-sync/services"
	"senetic-sync/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file (optional, falls back to system env)
	_ = godotenv.Load()

	logger.Initialize(envOr("APP_ENV", "production"))
	defer zap.L().Sync()

	cfg, err := LoadConfig()
	if err != nil {
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	// --- 1. Initialization ---

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			zap.L().Warn("Failed to parse REDIS_URL, async imports disabled", zap.Error(err))
		} else {
			rdb = redis.NewClient(redisOpts)
		}
	}

	awsEndpoint := os.Getenv("AWS_ENDPOINT") // e.g. http://localstack:4566
	cfgOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.S3Region),
	}
	awsAccessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	awsSecret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if awsAccessKey != "" || awsSecret != "" {
		cfgOpts = append(cfgOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecret, ""),
		))
	}
	if awsEndpoint != "" {
		cfgOpts = append(cfgOpts, awscfg.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: awsEndpoint, SigningRegion: cfg.S3Region}, nil
			}),
		))
	}
	awsCfg, err := awscfg.LoadDefaultConfig(context.Background(), cfgOpts...)
	if err != nil {
		zap.L().Fatal("Failed to load AWS config", zap.Error(err))
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
	})

	// --- 2. Dependency Injection (Wiring the layers together) ---

	store := storage.NewS3Store(s3Client, cfg.S3Bucket, cfg.S3Endpoint, cfg.CDNDomain)
	rules := services.DefaultDomainRules()
	processor := services.NewHTMLProcessor(rules)
	senetic := services.NewSeneticClient(cfg.SeneticBaseURL, cfg.SeneticAuth)
	shopify := services.NewShopifyClient(cfg.ShopifyStoreURL, cfg.ShopifyAccessToken, cfg.ShopifyAPIVersion)
	pacer := services.NewSleepPacer()
	relocator := services.NewImageRelocator(rules, store, shopify, pacer, cfg.S3Prefix)
	importer := services.NewImportService(senetic, shopify, processor, relocator, pacer, cfg.Categories, cfg.Brands, cfg.ProductDelay)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if rdb != nil {
		services.StartImportWorker(workerCtx, rdb, importer)
	}

	validator := controllers.NewRequestValidator()
	importController := controllers.NewImportController(importer, senetic, shopify, rdb, validator)

	// --- 3. HTTP Server & Routes ---

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	routes.RegisterRoutes(r, importController)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Senetic-Shopify Import App",
			"version": "1.0.0",
			"endpoints": gin.H{
				"inventory": "/senetic-inventory",
				"catalogue": "/senetic-catalogue",
				"import":    "/import-shopify",
				"health":    "/api/health",
			},
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "healthy"})
	})

	// --- 4. Graceful Shutdown ---

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		zap.L().Info("Senetic sync service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Fatal("Server forced to shutdown", zap.Error(err))
	}

	stopWorker()
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zap.L().Error("Failed to close Redis", zap.Error(err))
		}
	}
	zap.L().Info("Stopped gracefully")
}
