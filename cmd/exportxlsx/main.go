package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/docstack/invoice-extractor/internal/common"
	"github.com/docstack/invoice-extractor/internal/export"
	"github.com/docstack/invoice-extractor/internal/history"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 || len(os.Args) > 3 {
		logger.Error("usage: exportxlsx <out.xlsx> [limit]")
		os.Exit(2)
	}
	outPath := os.Args[1]
	limit := 0
	if len(os.Args) == 3 {
		n, err := strconv.Atoi(os.Args[2])
		if err != nil || n < 0 {
			logger.Error("invalid limit", "arg", os.Args[2])
			os.Exit(2)
		}
		limit = n
	}

	cfg := common.LoadConfig()
	if cfg.History.Path == "" {
		logger.Error("HISTORY_DB env var is required")
		os.Exit(2)
	}

	store, err := history.Open(cfg.History.Path, logger)
	if err != nil {
		logger.Error("open history db", "path", cfg.History.Path, "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("close history db", "error", cerr)
		}
	}()

	svc := export.NewService(store, logger)
	data, err := svc.ExportRunsXLSX(context.Background(), limit)
	if err != nil {
		logger.Error("export runs", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Error("write workbook", "path", outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("export ok", "path", outPath, "bytes", len(data))
}
