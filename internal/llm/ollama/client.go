package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docstack/invoice-extractor/internal/common"
	"github.com/docstack/invoice-extractor/internal/llm"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Complete implements llm.ChatClient against the Ollama /api/chat endpoint:
// one non-streaming request with a fixed system message and the prompt as
// the single user turn.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream: false,
	}
	bs, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("llm.chat.request",
		"req_id", rid,
		"url", endpoint,
		"model", c.cfg.Model,
		"prompt_bytes", len(prompt),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("llm.chat.send_error",
			"req_id", rid, "error", err,
			"timeout", common.IsTimeout(err),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		if common.IsTimeout(err) {
			return "", common.TransportError("chat request timed out", err)
		}
		return "", common.TransportError("chat request failed", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("llm.chat.body_close_error", "req_id", rid, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("llm.chat.response",
		"req_id", rid,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", common.UpstreamError(resp.StatusCode, string(raw))
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.chat.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return "", &common.AppError{
			Code:    common.CodeUpstream,
			Message: "cannot decode chat response body",
			Cause:   err,
			Status:  resp.StatusCode,
			Raw:     string(raw),
		}
	}
	return strings.TrimSpace(cc.Message.Content), nil
}
