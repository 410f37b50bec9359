package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/customHttpClient"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/rag/llm"
	"github.com/avanth/docuquery/pkg/logger_i"
)

type client struct {
	baseURL string
	model   string
	http    *http.Client
	logger  *logger_i.Logger
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// NewClient talks to a local inference server over its REST API.
func NewClient(baseURL string, model string) llm.Provider {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    customHttpClient.Pooled,
		logger:  logger_i.NewLogger("llm_ollama"),
	}
}

func (c *client) Name() string { return "ollama" }

// Available probes the tags endpoint; anything but a 200 within the probe
// timeout counts as down.
func (c *client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("local inference server not reachable", "error", err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func (c *client) Generate(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: llm.BuildPrompt(question, contextChunks),
		System: config.SystemPrompt,
		Stream: false,
		Options: generateOptions{
			Temperature: config.ModelTemperature,
			TopP:        0.9,
			MaxTokens:   config.MaxAnswerTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, config.LocalCallTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("local generation call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("local generation returned %d: %s", resp.StatusCode, msg)
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding local generation response: %w", err)
	}
	return strings.TrimSpace(result.Response), nil
}
