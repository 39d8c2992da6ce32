package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arkclose/netsheet-tracker/internal/async"
	"github.com/arkclose/netsheet-tracker/internal/common"
	"github.com/arkclose/netsheet-tracker/internal/export"
	"github.com/arkclose/netsheet-tracker/internal/listings"
	"github.com/arkclose/netsheet-tracker/internal/llm"
	"github.com/arkclose/netsheet-tracker/internal/llm/openai"
	"github.com/arkclose/netsheet-tracker/internal/pipeline"
	"github.com/arkclose/netsheet-tracker/internal/repository"
	"github.com/arkclose/netsheet-tracker/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.OpenDB(ctx, cfg.Database.Path, logger)
	if err != nil {
		logger.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	jobs := repository.NewJobRepository(db, logger)

	table, err := listings.LoadCSV(cfg.NetSheet.ListingsCSV)
	if err != nil {
		logger.Warn("listings table unavailable, lookups will use defaults",
			"path", cfg.NetSheet.ListingsCSV, "error", err)
		table = listings.NewTable(nil)
	}
	listingSvc := listings.NewService(table, logger)

	renderer := pipeline.NewRenderer(pipeline.RenderConfig{
		Pdftoppm: cfg.Render.Pdftoppm,
		DPI:      cfg.Render.DPI,
		MaxPages: cfg.Render.MaxPages,
		WorkDir:  cfg.Render.WorkDir,
	}, nil)

	extractors := buildExtractors(cfg, logger)

	proc := pipeline.NewProcessor(logger, pipeline.Config{
		PageTimeout:        cfg.LLM.PageTimeout,
		DefaultAnnualTaxes: cfg.NetSheet.DefaultAnnualTaxes,
	}, renderer, extractors, listingSvc)

	queue := async.NewProcessorQueue(proc, jobs, logger)

	uploadDir, err := os.MkdirTemp(cfg.Render.WorkDir, "netsheet-uploads-*")
	if err != nil {
		logger.Error("upload dir create failed", "error", err)
		os.Exit(1)
	}

	svc := server.NewService(logger, jobs, queue, export.NewService(logger), uploadDir, cfg.Server.MaxUploadSize)
	httpSrv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      svc.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("goodbye")
}

// buildExtractors returns the primary vision client plus a cheaper fallback
// when one is configured.
func buildExtractors(cfg *common.Config, logger *slog.Logger) []llm.PageExtractor {
	primary := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.PageTimeout,
	}, logger)
	extractors := []llm.PageExtractor{primary}

	if cfg.LLM.FallbackModel != "" && cfg.LLM.FallbackModel != cfg.LLM.Model {
		fallback := openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.FallbackModel,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.PageTimeout,
		}, logger)
		extractors = append(extractors, fallback)
	}
	return extractors
}
