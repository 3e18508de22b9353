package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Stage names one step of the pipeline as seen by hooks.
type Stage string

const (
	StageExtract  Stage = "extract_text"
	StagePrompt   Stage = "build_prompt"
	StageComplete Stage = "complete"
	StageParse    Stage = "parse_fields"
)

// Hook observes one stage run after it finishes. Hooks are supplied by
// configuration and wrap each stage from the outside; stage logic never
// calls them directly. A nil error means the stage succeeded.
type Hook func(ctx context.Context, stage Stage, err error, elapsed time.Duration)

// SlogHook returns a Hook that reports every stage outcome to logger.
func SlogHook(logger *slog.Logger) Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, stage Stage, err error, elapsed time.Duration) {
		if err != nil {
			logger.Error("pipeline.stage.error", "stage", string(stage), "error", err, "elapsed_ms", elapsed.Milliseconds())
			return
		}
		logger.Info("pipeline.stage.ok", "stage", string(stage), "elapsed_ms", elapsed.Milliseconds())
	}
}
