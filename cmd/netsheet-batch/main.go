package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arkclose/netsheet-tracker/internal/common"
	"github.com/arkclose/netsheet-tracker/internal/export"
	"github.com/arkclose/netsheet-tracker/internal/listings"
	"github.com/arkclose/netsheet-tracker/internal/llm"
	"github.com/arkclose/netsheet-tracker/internal/llm/openai"
	"github.com/arkclose/netsheet-tracker/internal/pipeline"
)

func main() {
	var (
		dir      = flag.String("dir", ".", "directory containing contract PDFs")
		out      = flag.String("out", "netsheets.csv", "CSV summary output path")
		xlsxDir  = flag.String("xlsx-dir", "", "write one XLSX net sheet per contract into this directory (optional)")
		workers  = flag.Int("workers", 2, "documents processed in parallel")
		listCSV  = flag.String("listings", "", "listings CSV path (overrides LISTINGS_CSV)")
		timeout  = flag.Duration("timeout", 30*time.Minute, "overall batch deadline")
		logLevel = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *listCSV != "" {
		cfg.NetSheet.ListingsCSV = *listCSV
	}

	pdfs, err := findPDFs(*dir)
	if err != nil {
		logger.Error("scan failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(pdfs) == 0 {
		logger.Error("no PDF files found", "dir", *dir)
		os.Exit(1)
	}
	logger.Info("batch starting", "dir", *dir, "documents", len(pdfs), "workers", *workers)

	proc := buildProcessor(cfg, logger)
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results := make([]*pipeline.DocumentResult, len(pdfs))
	var (
		mu     sync.Mutex
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*workers)
	for i, pdf := range pdfs {
		i, pdf := i, pdf
		g.Go(func() error {
			res, err := proc.ProcessDocument(gctx, pdf)
			if err != nil {
				logger.Error("document failed", "file", filepath.Base(pdf), "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil // one bad document never kills the batch
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var ok []*pipeline.DocumentResult
	for _, res := range results {
		if res != nil {
			ok = append(ok, res)
		}
	}
	if len(ok) == 0 {
		logger.Error("every document failed")
		os.Exit(1)
	}

	exporter := export.NewService(logger)
	csvBytes, err := exporter.NetSheetsCSV(ok)
	if err != nil {
		logger.Error("csv export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, csvBytes, 0o644); err != nil {
		logger.Error("csv write failed", "path", *out, "error", err)
		os.Exit(1)
	}

	if *xlsxDir != "" {
		if err := writeWorkbooks(exporter, ok, *xlsxDir, logger); err != nil {
			logger.Error("xlsx export failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch complete",
		"processed", len(ok), "failed", failed, "csv", *out,
	)
}

func buildProcessor(cfg *common.Config, logger *slog.Logger) *pipeline.Processor {
	table, err := listings.LoadCSV(cfg.NetSheet.ListingsCSV)
	if err != nil {
		logger.Warn("listings table unavailable, lookups will use defaults",
			"path", cfg.NetSheet.ListingsCSV, "error", err)
		table = listings.NewTable(nil)
	}

	renderer := pipeline.NewRenderer(pipeline.RenderConfig{
		Pdftoppm: cfg.Render.Pdftoppm,
		DPI:      cfg.Render.DPI,
		MaxPages: cfg.Render.MaxPages,
		WorkDir:  cfg.Render.WorkDir,
	}, nil)

	extractors := []llm.PageExtractor{
		openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.PageTimeout,
		}, logger),
	}
	if cfg.LLM.FallbackModel != "" && cfg.LLM.FallbackModel != cfg.LLM.Model {
		extractors = append(extractors, openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.FallbackModel,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.PageTimeout,
		}, logger))
	}

	return pipeline.NewProcessor(logger, pipeline.Config{
		PageTimeout:        cfg.LLM.PageTimeout,
		DefaultAnnualTaxes: cfg.NetSheet.DefaultAnnualTaxes,
	}, renderer, extractors, listings.NewService(table, logger))
}

func findPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var pdfs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			pdfs = append(pdfs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(pdfs)
	return pdfs, nil
}

func writeWorkbooks(exporter *export.Service, results []*pipeline.DocumentResult, dir string, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, res := range results {
		if res.NetSheet == nil {
			logger.Warn("skipping workbook, no net sheet", "file", res.SourceFile)
			continue
		}
		b, err := exporter.NetSheetXLSX(res)
		if err != nil {
			return fmt.Errorf("workbook for %s: %w", res.SourceFile, err)
		}
		name := strings.TrimSuffix(res.SourceFile, filepath.Ext(res.SourceFile)) + ".xlsx"
		if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
