package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/labelsafe/backend/config"
	httpDelivery "github.com/labelsafe/backend/internal/delivery/http"
	"github.com/labelsafe/backend/internal/domain"
	"github.com/labelsafe/backend/internal/infrastructure/advisory"
	"github.com/labelsafe/backend/internal/infrastructure/cache"
	"github.com/labelsafe/backend/internal/infrastructure/history"
	"github.com/labelsafe/backend/internal/infrastructure/openfoodfacts"
	"github.com/labelsafe/backend/internal/platform/logger"
	"github.com/labelsafe/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	zlog.Info("starting labelsafe backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("food_db", cfg.FoodDB.BaseURL))

	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	productClient := openfoodfacts.NewClient(cfg.FoodDB.BaseURL, cfg.FoodDB.UserAgent, zlog)

	var advisoryClient *advisory.Client
	if cfg.Advisory.URL != "" {
		advisoryClient = advisory.NewClient(cfg.Advisory.URL, cfg.Advisory.Timeout, zlog)
		zlog.Info("advisory endpoint configured",
			zap.String("url", cfg.Advisory.URL),
			zap.Duration("timeout", cfg.Advisory.Timeout))
	} else {
		zlog.Warn("advisory endpoint not configured, inconclusive verdicts stay local")
	}

	historyStore, err := history.NewStore(cfg.History.Capacity, cfg.History.File)
	if err != nil {
		zlog.Fatal("failed to open history store", zap.Error(err))
	}
	zlog.Info("history store ready",
		zap.Int("capacity", cfg.History.Capacity),
		zap.Int("entries", historyStore.Len()))

	service := usecase.NewClassificationService(
		memoryCache,
		productClient,
		advisoryClientOrNil(advisoryClient),
		historyStore,
		zlog,
		usecase.ClassificationServiceConfig{
			CacheTTL:          cfg.Cache.TTL,
			DefaultLang:       cfg.Classifier.DefaultLang,
			ConsultOnNotFound: cfg.Advisory.ConsultOnNotFound,
		},
	)

	handler := httpDelivery.NewHandler(service)
	router := httpDelivery.SetupRouter(cfg, handler, zlog)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zlog.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

// advisoryClientOrNil keeps the service's interface field a real nil
// when no advisory endpoint is configured.
func advisoryClientOrNil(c *advisory.Client) domain.AdvisoryClient {
	if c == nil {
		return nil
	}
	return c
}
