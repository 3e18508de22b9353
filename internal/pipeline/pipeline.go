package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docstack/invoice-extractor/internal/extract"
	"github.com/docstack/invoice-extractor/internal/llm"
)

// Config holds behavior flags for one pipeline instance. Endpoint and model
// choices live in the injected ChatClient; nothing here is process-global.
type Config struct {
	Strategy llm.PromptStrategy
	Strict   bool
	Hooks    []Hook
}

// Pipeline composes text extraction, prompt construction, the model call,
// and response parsing into a single run. It holds no mutable state between
// runs: repeated calls re-extract and re-invoke the model every time.
type Pipeline struct {
	logger    *slog.Logger
	cfg       Config
	extractor extract.TextExtractor
	client    llm.ChatClient
	schema    llm.FieldSchema
}

func New(logger *slog.Logger, cfg Config, extractor extract.TextExtractor, client llm.ChatClient, schema llm.FieldSchema) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Strategy == "" {
		cfg.Strategy = llm.StrategySynonymGuided
	}
	return &Pipeline{
		logger:    logger,
		cfg:       cfg,
		extractor: extractor,
		client:    client,
		schema:    schema,
	}
}

// Run executes extract → prompt → complete → parse for one document.
// Any stage failure aborts the run and is surfaced unchanged; there are no
// partial results and no silent fallbacks between stages.
func (p *Pipeline) Run(ctx context.Context, path string) (llm.Fields, error) {
	rid := uuid.New().String()
	start := time.Now()
	p.logger.Info("pipeline.run.start", "req_id", rid, "path", path, "strategy", string(p.cfg.Strategy))

	var text extract.TextExtractionResult
	err := p.runStage(ctx, StageExtract, func() error {
		var err error
		text, err = p.extractor.Extract(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("pipeline.extract.ok", "req_id", rid, "pages", text.Pages, "bytes", len(text.Text), "warnings", len(text.Warnings))

	var prompt string
	err = p.runStage(ctx, StagePrompt, func() error {
		var err error
		prompt, err = llm.BuildPrompt(text.Text, p.schema, p.cfg.Strategy)
		return err
	})
	if err != nil {
		return nil, err
	}

	var raw string
	err = p.runStage(ctx, StageComplete, func() error {
		var err error
		raw, err = p.client.Complete(ctx, prompt)
		return err
	})
	if err != nil {
		return nil, err
	}

	var fields llm.Fields
	err = p.runStage(ctx, StageParse, func() error {
		var err error
		fields, err = llm.ParseFields(raw, p.schema, llm.ParseOptions{Strict: p.cfg.Strict, Logger: p.logger})
		return err
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("pipeline.run.ok", "req_id", rid, "keys", p.schema.Len(), "elapsed_ms", time.Since(start).Milliseconds())
	return fields, nil
}

func (p *Pipeline) runStage(ctx context.Context, stage Stage, fn func() error) error {
	start := time.Now()
	err := fn()
	for _, hook := range p.cfg.Hooks {
		hook(ctx, stage, err, time.Since(start))
	}
	return err
}
