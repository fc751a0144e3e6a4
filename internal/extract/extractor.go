// Package extract performs optional model-driven structured extraction: the
// document's combined text is sent to an LLM endpoint and the JSON object it
// returns is attached to the output envelope.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

// maxPromptChars bounds how much document text is sent to the model.
const maxPromptChars = 4000

const promptTemplate = `Analyze this document and extract structured, meaningful data.

Document filename: %s

Document content:
%s

Based on the content, intelligently extract relevant structured information:
document type, key entities (people, companies, dates), main topics, action
items and important numbers. Return ONLY valid JSON with the extracted
structured data.`

// Config for the LLM endpoint (ollama-compatible generate API).
type Config struct {
	Endpoint    string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Extractor is the LLM client. A nil *Extractor is a valid disabled
// extractor.
type Extractor struct {
	config     Config
	httpClient *http.Client
	logger     logger.Logger
}

type generateResponse struct {
	Response string `json:"response"`
	Model    string `json:"model"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func New(config Config, log logger.Logger) *Extractor {
	if config.Endpoint == "" {
		return nil
	}
	return &Extractor{
		config: config,
		// The request deadline comes from the caller's context.
		httpClient: &http.Client{},
		logger:     log,
	}
}

// Enabled reports whether an endpoint is configured.
func (e *Extractor) Enabled() bool { return e != nil }

// Extract sends the document text to the model and decodes the JSON object
// in its reply. The call is bounded by ctx; failure means the whole
// processing request fails.
func (e *Extractor) Extract(ctx context.Context, text, filename string) (map[string]any, error) {
	if e == nil {
		return nil, fmt.Errorf("semantic extraction is not configured")
	}

	text = truncateRuneSafe(text, maxPromptChars)

	reqBody := map[string]any{
		"model":       e.config.Model,
		"prompt":      fmt.Sprintf(promptTemplate, filename, text),
		"stream":      false,
		"max_tokens":  e.config.MaxTokens,
		"temperature": e.config.Temperature,
	}
	reqData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.Endpoint+"/api/generate", bytes.NewReader(reqData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("model error: %s", result.Error)
	}

	structured, err := parseJSONObject(result.Response)
	if err != nil {
		e.logger.Warn("Model reply was not parseable JSON",
			logger.String("filename", filename),
			logger.Error(err),
		)
		return nil, err
	}
	return structured, nil
}

// truncateRuneSafe cuts text to at most limit bytes without splitting a
// UTF-8 sequence, so the prompt stays valid JSON.
func truncateRuneSafe(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// parseJSONObject pulls the outermost JSON object out of a model reply that
// may surround it with prose.
func parseJSONObject(reply string) (map[string]any, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(reply[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON in model reply: %w", err)
	}
	return out, nil
}
