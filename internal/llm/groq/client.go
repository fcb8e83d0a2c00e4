// Package groq implements the LLM pipeline against Groq's
// OpenAI-compatible chat/completions endpoint.
package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradedocs/termsheet-extractor/constants"
	"github.com/tradedocs/termsheet-extractor/internal/common"
	"github.com/tradedocs/termsheet-extractor/internal/llm"
)

// Config for the Groq client. The API key is per-request and therefore
// intentionally not part of the config.
type Config struct {
	BaseURL     string        // default https://api.groq.com/openai/v1
	Model       string        // e.g. "llama3-8b-8192"
	Temperature float32       // 0..2
	MaxTokens   int           // completion budget
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3-8b-8192"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 6000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
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

// Run implements llm.Pipeline over text-only chat/completions.
func (c *Client) Run(ctx context.Context, req llm.Request) (llm.Result, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return llm.Result{}, fmt.Errorf("%w: llm_api_key is required", common.ErrInvalidInput)
	}

	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.run.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"operation", string(req.Operation),
		"text_len", len(req.Text),
		"has_question", strings.TrimSpace(req.Question) != "",
	)

	prompt := llm.BuildPrompt(req.Operation, req.Text, req.Question)
	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{
		"Authorization": "Bearer " + req.APIKey,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.run.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{}, fmt.Errorf("%w: %v", common.ErrModelUnavailable, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.run.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{}, fmt.Errorf("decode groq response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.run.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{}, fmt.Errorf("no choices in groq response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	// Entity extraction promises JSON; validate it, but malformed output
	// is a warning and the text still goes back to the caller verbatim.
	if req.Operation == constants.OperationEntityExtraction {
		if err := llm.ValidateJSONAgainstSchema(llm.BuildEntityJSONSchema(), []byte(content)); err != nil {
			c.logger.Warn("llm.run.schema_validation_failed",
				"req_id", rid, "error", err, "content_len", len(content),
			)
		}
	}

	c.logger.Info("llm.run.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Result{Text: content, Model: c.cfg.Model}, nil
}
