package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arkclose/netsheet-tracker/internal/llm"
)

// ExtractPage implements llm.PageExtractor using vision chat/completions:
// the rendered page PNG rides along as a base64 data URL.
func (c *Client) ExtractPage(ctx context.Context, req llm.PageRequest) (map[string]any, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.page.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"page", req.PageNumber,
		"role", string(req.Role),
		"file", req.FilenameHint,
	)

	dataURL, err := c.imageDataURL(req.ImagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("load page image: %w", err)
	}

	schema := llm.BuildContractJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req.Role)},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
				{"type": "image_url", "image_url": map[string]any{"url": dataURL, "detail": "high"}},
			}},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.logger.Error("llm.extract.page.http_error",
			"req_id", rid, "page", req.PageNumber, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return nil, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return nil, raw, fmt.Errorf("no choices in openai response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	rawContent := []byte(content)

	// Validate strictly, then retry once through the sanitize pass: the
	// model's formatting drifts (stringly money, loose dates) more often
	// than its reading does.
	if err := llm.ValidatePage(schema, rawContent); err != nil {
		cleaned, dropped, sErr := llm.NormalizeAndSanitizePage(rawContent, c.logger)
		if sErr != nil {
			return nil, rawContent, fmt.Errorf("sanitize page json: %w", sErr)
		}
		if vErr := llm.ValidatePage(schema, cleaned); vErr != nil {
			c.logger.Error("llm.extract.page.schema_failed",
				"req_id", rid, "page", req.PageNumber, "error", vErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return nil, rawContent, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.logger.Warn("llm.extract.page.sanitized",
			"req_id", rid, "page", req.PageNumber, "dropped", dropped,
		)
		rawContent = cleaned
	}

	var fields map[string]any
	if err := json.Unmarshal(rawContent, &fields); err != nil {
		return nil, rawContent, fmt.Errorf("unmarshal fields: %w", err)
	}

	c.logger.Info("llm.extract.page.ok",
		"req_id", rid,
		"page", req.PageNumber,
		"fields", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, rawContent, nil
}

func (c *Client) imageDataURL(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if st.Size() > int64(c.cfg.MaxImageMB)<<20 {
		return "", fmt.Errorf("page image %s exceeds %dMB", filepath.Base(path), c.cfg.MaxImageMB)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	mimeType := "image/png"
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".jpg" || ext == ".jpeg" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(b), nil
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
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.logger.Warn("openai response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
