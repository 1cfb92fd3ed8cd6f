package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/floofbot/floofbridge/internal/provider"
)

// Ollama wire types for JSON serialization.

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	NumCtx      int      `json:"num_ctx"`
	NumPredict  int      `json:"num_predict"`
	Stop        []string `json:"stop,omitempty"`
}

type chatResponse struct {
	Message    chatMessage `json:"message"`
	Done       bool        `json:"done"`
	DoneReason string      `json:"done_reason,omitempty"`
}

// buildRequest converts a provider.CompletionRequest into the Ollama wire
// format. Per-request sampling parameters override the configured defaults.
func buildRequest(cfg Config, req provider.CompletionRequest) chatRequest {
	messages := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = chatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}

	opts := chatOptions{
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		NumCtx:      cfg.ContextWindow,
		NumPredict:  cfg.MaxPredict,
		Stop:        cfg.Stop,
	}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		opts.TopP = *req.TopP
	}
	if req.MaxTokens > 0 {
		opts.NumPredict = req.MaxTokens
	}
	if len(req.Stop) > 0 {
		opts.Stop = req.Stop
	}

	return chatRequest{
		Model:    cfg.Model,
		Messages: messages,
		Stream:   false,
		Options:  opts,
	}
}

// doRequest executes an HTTP POST to the /api/chat endpoint.
func (p *Provider) doRequest(ctx context.Context, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := p.config.Host + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", provider.ErrBackendDown, err)
	}

	return resp, nil
}

// maxErrorBodySize caps how much of an error response body is read.
const maxErrorBodySize = 4096

// handleErrorResponse maps HTTP error status codes to sentinel errors.
// Any server-side failure is ErrBackendDown: the orchestrator treats it
// as a degraded outcome, not a fault.
func handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: HTTP %d: %s", provider.ErrBackendDown, resp.StatusCode, body)
	}
	return fmt.Errorf("%w: HTTP %d: %s", provider.ErrMalformedReply, resp.StatusCode, body)
}
