package main

import (
	"context"
	"log"

	"github.com/pitchai/pitchai-backend/config"
	"github.com/pitchai/pitchai-backend/internal/bootstrap"
	"github.com/pitchai/pitchai-backend/internal/ingest/extract"
	"github.com/pitchai/pitchai-backend/internal/ingest/storage"
	"github.com/pitchai/pitchai-backend/internal/review/rubric"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, &cfg.Database, bootstrap.DBOptions{})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		// Ingestion progress degrades to logs only; the API stays up.
		log.Printf("redis unavailable, progress tracking disabled: %v", err)
		rdb = nil
	}

	files, err := storage.New(cfg.Storage.UploadDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "pitchai-backend",
		Version:     cfg.App.Version,
		DB:          pool,
		Redis:       rdb,
		Files:       files,
		UploadDir:   cfg.Storage.UploadDir,
		Extractor:   extract.NewPDF(),
		Evaluator:   bootstrap.NewEvaluator(cfg.AI.Enabled, cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model),
		Rubric:      rubric.Default(),
		IngestTO:    cfg.AI.IngestTimeout,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
