package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/docstack/invoice-extractor/internal/common"
	"github.com/docstack/invoice-extractor/internal/extract"
	"github.com/docstack/invoice-extractor/internal/history"
	"github.com/docstack/invoice-extractor/internal/llm"
	"github.com/docstack/invoice-extractor/internal/llm/ollama"
	"github.com/docstack/invoice-extractor/internal/pipeline"
)

func main() {
	_ = godotenv.Load()

	cfg := common.LoadConfig()
	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: invoicex <invoice.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	schema := llm.DefaultInvoiceSchema()
	if len(cfg.Extract.Fields) > 0 {
		schema = llm.SchemaFromKeys(cfg.Extract.Fields)
	}

	client := ollama.NewClient(ollama.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	}, logger)

	pipeCfg := pipeline.Config{
		Strategy: llm.PromptStrategy(cfg.Extract.Strategy),
		Strict:   cfg.Extract.StrictKeys,
	}
	if cfg.Extract.TraceStages {
		pipeCfg.Hooks = append(pipeCfg.Hooks, pipeline.SlogHook(logger))
	}

	p := pipeline.New(logger, pipeCfg, extract.NewPDFExtractor(logger), client, schema)

	ctx := context.Background()
	fields, runErr := p.Run(ctx, path)

	if cfg.History.Path != "" {
		recordRun(ctx, logger, cfg, path, fields, runErr)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "extraction failed: %v\n", runErr)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func recordRun(ctx context.Context, logger *slog.Logger, cfg *common.Config, path string, fields llm.Fields, runErr error) {
	store, err := history.Open(cfg.History.Path, logger)
	if err != nil {
		logger.Error("history.open_failed", "path", cfg.History.Path, "error", err)
		return
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("history.close_error", "error", cerr)
		}
	}()

	run := history.Run{
		SourcePath: path,
		Model:      cfg.LLM.Model,
		Strategy:   cfg.Extract.Strategy,
		Status:     history.StatusOK,
	}
	if runErr != nil {
		run.Status = string(common.CodeOf(runErr))
		if run.Status == "" {
			run.Status = "ERROR"
		}
		run.ErrorText = runErr.Error()
	} else if b, err := json.Marshal(fields); err == nil {
		run.FieldsJSON = string(b)
	}
	if err := store.Record(ctx, run); err != nil {
		logger.Error("history.record_failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
