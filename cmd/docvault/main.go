package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/seonho/docvault/internal/api"
	"github.com/seonho/docvault/internal/config"
	"github.com/seonho/docvault/internal/db"
	"github.com/seonho/docvault/internal/extract"
	"github.com/seonho/docvault/internal/llm"
	"github.com/seonho/docvault/internal/ocr"
	"github.com/seonho/docvault/internal/pipeline"
	"github.com/seonho/docvault/internal/repository"
	"github.com/seonho/docvault/internal/storage"
	"github.com/seonho/docvault/internal/summarize"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		serve()
		return
	}
	fmt.Println("docvault v0.1.0")
	fmt.Println("Usage: docvault serve")
}

func serve() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadDefault()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	repo := buildRepository(ctx, cfg)
	store := buildStorage(ctx, cfg)

	var summarizerClient llm.Client
	if cfg.LLM.APIKey != "" {
		summarizerClient = llm.NewOpenAIClient(cfg.LLM.APIKey)
	} else {
		slog.Warn("no LLM API key configured, summaries disabled")
	}
	summarizer := summarize.New(summarizerClient, cfg.LLM.Model)

	var ocrPool *ocr.Pool
	if cfg.OCR.APIKey != "" {
		engine := ocr.NewGeminiEngine(cfg.OCR.APIKey, cfg.OCR.Model)
		ocrPool = ocr.NewPool(engine, int64(cfg.OCR.Workers))
	} else {
		slog.Warn("no OCR API key configured, image extraction disabled")
	}
	extractor := extract.New(ocrPool)

	pl := pipeline.New(store, repo, extractor, summarizer,
		pipeline.WithRunTimeout(cfg.Pipeline.RunTimeout))

	reaper := pipeline.NewReaper(repo, cfg.Pipeline.StaleAfter)
	if err := reaper.Start(cfg.Pipeline.ReapSchedule); err != nil {
		slog.Error("reaper error", "err", err)
		os.Exit(1)
	}
	defer reaper.Stop()

	srv := api.NewServer(store, repo, pl)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting docvault server", "addr", addr, "storage", cfg.Storage.Backend)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// buildRepository returns a Postgres-backed repository when a database
// URL is configured, otherwise a purely in-memory one.
func buildRepository(ctx context.Context, cfg *config.Config) repository.FileRepository {
	mem := repository.NewMemoryFileRepository()
	if cfg.Database.URL == "" {
		slog.Warn("no database configured, file records are in-memory only")
		return mem
	}

	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("database connection error", "err", err)
		os.Exit(1)
	}
	if err := database.Migrate(ctx); err != nil {
		slog.Error("database migration error", "err", err)
		os.Exit(1)
	}
	slog.Info("database connected")
	return repository.NewPersistentFileRepository(mem, database)
}

func buildStorage(ctx context.Context, cfg *config.Config) storage.ObjectStorage {
	switch cfg.Storage.Backend {
	case "minio":
		store, err := storage.NewMinIOStorage(ctx, storage.MinIOConfig{
			Endpoint:  cfg.Storage.MinIO.Endpoint,
			AccessKey: cfg.Storage.MinIO.AccessKey,
			SecretKey: cfg.Storage.MinIO.SecretKey,
			Bucket:    cfg.Storage.MinIO.Bucket,
			UseSSL:    cfg.Storage.MinIO.UseSSL,
		})
		if err != nil {
			slog.Error("minio storage error", "err", err)
			os.Exit(1)
		}
		return store
	case "local", "":
		store, err := storage.NewLocalStorage(cfg.Storage.Local.Root)
		if err != nil {
			slog.Error("local storage error", "err", err)
			os.Exit(1)
		}
		return store
	default:
		slog.Error("unknown storage backend", "backend", cfg.Storage.Backend)
		os.Exit(1)
		return nil
	}
}
