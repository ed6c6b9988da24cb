package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"ragserve/internal/app"
	"ragserve/internal/cache"
	"ragserve/internal/chunker"
	"ragserve/internal/config"
	"ragserve/internal/embedding"
	"ragserve/internal/model"
	mysqlClient "ragserve/internal/platform/mysql"
	rabbitmqClient "ragserve/internal/platform/rabbitmq"
	redisClient "ragserve/internal/platform/redis"
	"ragserve/internal/repository"
	"ragserve/internal/worker"
)

// App owns every shared resource: connections, the embedding engine, the
// wired services, and the background ingest worker.
type App struct {
	Config *config.Config
	MySQL  *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	Embedder        *embedding.Engine
	Ingest          *app.IngestService
	Retrieval       *app.RetrievalService
	Documents       *repository.DocumentRepository
	Settings        *repository.SettingsRepository
	SettingsCache   *cache.SettingsCache
	IngestPublisher *rabbitmqClient.IngestPublisher
	IngestWorker    *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.Document{},
		&model.DocumentChunk{},
		&model.Chat{},
		&model.RAGSettings{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	embedder := embedding.NewEngine(embedding.Options{
		ModelPath:         cfg.Embedding.ModelPath,
		VocabPath:         cfg.Embedding.VocabPath,
		ONNXSharedLibPath: cfg.Embedding.ONNXSharedLibPath,
		Dimensions:        cfg.Embedding.Dimensions,
		MaxSequenceLength: cfg.Embedding.MaxSequenceLength,
		BatchSize:         cfg.Embedding.BatchSize,
	})

	docRepo := repository.NewDocumentRepository(mysqlDB)
	chunkRepo := repository.NewChunkRepository(mysqlDB)
	chatRepo := repository.NewChatRepository(mysqlDB)
	settingsRepo := repository.NewSettingsRepository(mysqlDB)
	settingsCache := cache.NewSettingsCache(
		redisCli,
		settingsRepo,
		time.Duration(cfg.Redis.SettingsTTLSeconds)*time.Second,
	)

	policy := app.NewSettingsPolicy(settingsCache, chatRepo)
	splitter := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	ingestService := app.NewIngestService(docRepo, chunkRepo, embedder, splitter, policy)
	retrievalService := app.NewRetrievalService(docRepo, chunkRepo, embedder, policy, cfg.RAG.TopK)

	publisher := rabbitmqClient.NewIngestPublisher(mqConn, cfg.RabbitMQ.IngestQueue)
	ingestWorker := worker.NewIngestWorker(mqConn, ingestService, cfg.RabbitMQ.IngestQueue)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:          cfg,
		MySQL:           mysqlDB,
		Redis:           redisCli,
		MQConn:          mqConn,
		Embedder:        embedder,
		Ingest:          ingestService,
		Retrieval:       retrievalService,
		Documents:       docRepo,
		Settings:        settingsRepo,
		SettingsCache:   settingsCache,
		IngestPublisher: publisher,
		IngestWorker:    ingestWorker,
		StartedAt:       time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.Embedder != nil {
		if err := a.Embedder.Unload(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
