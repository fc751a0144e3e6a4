package document

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feichai0017/ai-ready-data/config"
	"github.com/feichai0017/ai-ready-data/internal/billing"
	"github.com/feichai0017/ai-ready-data/internal/extract"
	"github.com/feichai0017/ai-ready-data/internal/partition"
	"github.com/feichai0017/ai-ready-data/internal/partition/htmldoc"
	"github.com/feichai0017/ai-ready-data/internal/partition/ocr"
	"github.com/feichai0017/ai-ready-data/internal/partition/office"
	"github.com/feichai0017/ai-ready-data/internal/partition/pdftext"
	"github.com/feichai0017/ai-ready-data/internal/partition/plaintext"
	"github.com/feichai0017/ai-ready-data/internal/partition/sheet"
	"github.com/feichai0017/ai-ready-data/internal/pipeline"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
	"github.com/feichai0017/ai-ready-data/pkg/queue"
	"github.com/feichai0017/ai-ready-data/pkg/storage"
)

// GetService assembles the full processing stack from environment
// configuration. Both the API server and the batch worker boot through
// here.
func GetService(ctx context.Context, log logger.Logger) (DocumentProcessor, *billing.Meter, error) {
	srvCfg := config.GetServerConfig()

	store, err := storage.NewStorage(storage.StorageType(srvCfg.StorageBackend), log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	redisCfg := config.GetRedisConfig()
	q, err := queue.NewAsynqQueue(&queue.QueueConfig{
		RedisAddr:      redisCfg.Addr,
		RedisPassword:  redisCfg.Password,
		RedisDB:        redisCfg.DB,
		MaxRetries:     3,
		RetryDelay:     time.Minute,
		ProcessTimeout: 30 * time.Minute,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	ocrBackend, err := ocr.NewPartitioner(ctx, ocr.Engine(srvCfg.OCREngine), log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize OCR backend: %w", err)
	}

	registry := partition.NewRegistry(log, ocrBackend, defaultChains(log))

	extCfg := config.GetExtractConfig()
	extractor := extract.New(extract.Config{
		Endpoint:    extCfg.Endpoint,
		Model:       extCfg.Model,
		MaxTokens:   extCfg.MaxTokens,
		Temperature: extCfg.Temperature,
	}, log)

	pipe := pipeline.New(registry, extractor, log)

	meter, err := buildMeter(srvCfg, redisCfg, log)
	if err != nil {
		return nil, nil, err
	}

	svc := NewService(pipe, meter, q, store, log, &ServiceConfig{
		MaxFileSize:     srvCfg.MaxUploadBytes,
		QueuePriority:   2,
		ProcessTimeout:  30 * time.Minute,
		RetentionPeriod: 24 * time.Hour,
	})

	return svc, meter, nil
}

// defaultChains maps each supported extension to its primary partitioner
// plus any degraded fallbacks.
func defaultChains(log logger.Logger) map[string][]partition.Partitioner {
	text := plaintext.New()
	html := htmldoc.New()

	return map[string][]partition.Partitioner{
		".pdf":  {pdftext.New(log), pdftext.NewFallback(log)},
		".txt":  {text},
		".md":   {text},
		".html": {html},
		".htm":  {html},
		".docx": {office.NewDocx()},
		".pptx": {office.NewPptx()},
		".xlsx": {sheet.New()},
	}
}

func buildMeter(srvCfg *config.ServerConfig, redisCfg *config.RedisConfig, log logger.Logger) (*billing.Meter, error) {
	plans := billing.DefaultPlans()
	if srvCfg.PlansPath != "" {
		loaded, err := billing.LoadPlans(srvCfg.PlansPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load plan table: %w", err)
		}
		plans = loaded
	}

	var acctStore billing.Store
	switch srvCfg.AccountStore {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
		acctStore = billing.NewRedisStore(client)
	default:
		acctStore = billing.NewMemoryStore()
	}

	return billing.NewMeter(acctStore, plans, log), nil
}
