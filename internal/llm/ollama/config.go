package ollama

import (
	"log/slog"
	"net/http"
	"time"
)

// Config for the Ollama chat client.
type Config struct {
	BaseURL string        // default http://localhost:11434
	Model   string        // e.g. "llama3.2"
	Timeout time.Duration // 0 = no client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}
