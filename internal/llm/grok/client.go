package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"propdoc/internal/entity"
	"propdoc/internal/llm"
)

// Extract implements llm.Extractor against the x.ai chat/completions API.
// The instruction template is fixed (llm.BuildSystemPrompt); this method only
// does transport, usage accounting and a minimal structural check. It never
// retries — retry policy belongs to the caller.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (*entity.RawModelResponse, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"document", req.DocumentLabel,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		reason := "http"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "timeout"
			err = fmt.Errorf("model call timeout after %s: %w", time.Since(start).Round(time.Millisecond), err)
		}
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "reason", reason, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &llm.ExtractionError{Reason: reason, Err: err}
	}

	var cc struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &llm.ExtractionError{Reason: "decode", Err: fmt.Errorf("decode completion envelope: %w", err)}
	}
	if len(cc.Choices) == 0 {
		c.log.Error("llm.extract.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, &llm.ExtractionError{Reason: "empty", Err: fmt.Errorf("no choices in completion response")}
	}

	content := stripCodeFences(strings.TrimSpace(cc.Choices[0].Message.Content))
	parsed := json.RawMessage(content)
	if err := llm.ValidateJSONAgainstSchema(llm.BuildResponseSchema(), parsed); err != nil {
		c.log.Error("llm.extract.bad_json",
			"req_id", rid, "error", err, "content_len", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, &llm.ExtractionError{Reason: "decode", Err: fmt.Errorf("model answer is not a JSON object: %w", err)}
	}
	if isEmptyObject(parsed) {
		c.log.Error("llm.extract.empty_object", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, &llm.ExtractionError{Reason: "empty", Err: fmt.Errorf("model returned an empty object")}
	}

	model := cc.Model
	if model == "" {
		model = c.cfg.Model
	}
	resp := &entity.RawModelResponse{
		Model:            model,
		PromptTokens:     cc.Usage.PromptTokens,
		CompletionTokens: cc.Usage.CompletionTokens,
		TotalTokens:      cc.Usage.TotalTokens,
		DurationMs:       time.Since(start).Milliseconds(),
		Content:          content,
		ParsedResult:     parsed,
		Timestamp:        time.Now().UTC(),
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"model", resp.Model,
		"total_tokens", resp.TotalTokens,
		"elapsed_ms", resp.DurationMs,
	)
	return resp, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = fmt.Errorf("%v: %w", err, ctx.Err())
		}
		return nil, fmt.Errorf("grok http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("grok response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("grok status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

// stripCodeFences unwraps ```json ... ``` fenced answers some models emit even
// in JSON mode.
func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isEmptyObject(raw json.RawMessage) bool {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return false
	}
	return len(m) == 0
}
