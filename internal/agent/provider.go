package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/config"
	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/logger"
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx answer from the chat completions endpoint.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("chat completions error (status=%d): %s", e.StatusCode, msg)
}

// Retryable reports whether the request may succeed when repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint, either
// the public API (Bearer auth) or an Azure OpenAI deployment (api-key header).
type OpenAIProvider struct {
	client     *http.Client
	endpoint   string
	model      string
	apiKey     string
	azure      bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// ProviderOption customizes an OpenAIProvider.
type ProviderOption func(*OpenAIProvider)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) ProviderOption {
	return func(p *OpenAIProvider) {
		p.client = c
	}
}

// WithBackoff sets the first retry delay; later retries double it.
func WithBackoff(d time.Duration) ProviderOption {
	return func(p *OpenAIProvider) {
		p.backoff = d
	}
}

// WithProviderLogger reports retries to log.
func WithProviderLogger(log logger.Logger) ProviderOption {
	return func(p *OpenAIProvider) {
		p.log = logger.OrNoOp(log)
	}
}

// NewOpenAIProvider builds a provider from the llm section of the config.
func NewOpenAIProvider(cfg config.LLMConfig, opts ...ProviderOption) (*OpenAIProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("no API key configured: set FILEAGENT_API_KEY, OPENAI_API_KEY or AZURE_OPENAI_API_KEY")
	}

	p := &OpenAIProvider{
		client:     &http.Client{Timeout: cfg.RequestTimeout.Std()},
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxRetries: cfg.MaxRetries,
		backoff:    500 * time.Millisecond,
		log:        logger.NewNoOpLogger(),
		sleep:      sleepContext,
	}

	switch cfg.Provider {
	case "azure":
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.AzureEndpoint), "/")
		if endpoint == "" || cfg.AzureDeployment == "" {
			return nil, fmt.Errorf("azure provider needs an endpoint and a deployment")
		}
		p.azure = true
		p.endpoint = fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
			endpoint, url.PathEscape(cfg.AzureDeployment), url.QueryEscape(cfg.AzureAPIVersion))
	default:
		base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
		if base == "" {
			return nil, fmt.Errorf("openai provider needs a base URL")
		}
		p.endpoint = base + "/chat/completions"
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Endpoint returns the URL requests are posted to.
func (p *OpenAIProvider) Endpoint() string {
	return p.endpoint
}

// Complete sends the conversation and returns the assistant message. Rate
// limits and server errors are retried with exponential backoff.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	body, err := json.Marshal(p.requestBody(req))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	delay := p.backoff
	for attempt := 0; ; attempt++ {
		completion, err := p.do(ctx, body)
		if err == nil {
			return completion, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() || attempt >= p.maxRetries {
			return nil, err
		}

		wait := delay
		if apiErr.RetryAfter > 0 {
			wait = apiErr.RetryAfter
		}
		p.log.LogWarn(fmt.Sprintf("model request failed (status %d), retrying in %s (%d/%d)",
			apiErr.StatusCode, wait, attempt+1, p.maxRetries))
		if err := p.sleep(ctx, wait); err != nil {
			return nil, err
		}
		delay *= 2
	}
}

func (p *OpenAIProvider) do(ctx context.Context, body []byte) (*Completion, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.azure {
		httpReq.Header.Set("api-key", p.apiKey)
	} else {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}
	return decoded.completion(), nil
}

// wire types for the chat completions API

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    *string        `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function chatFunctionCall `json:"function"`
}

type chatFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatTool struct {
	Type     string          `json:"type"`
	Function chatFunctionDef `json:"function"`
}

type chatFunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *OpenAIProvider) requestBody(req CompletionRequest) chatRequest {
	body := chatRequest{Temperature: req.Temperature}
	// Azure selects the model through the deployment in the URL
	if !p.azure {
		body.Model = p.model
	}

	for _, msg := range req.Messages {
		wire := chatMessage{
			Role:       string(msg.Role),
			ToolCallID: msg.ToolCallID,
		}
		content := msg.Content
		if msg.Role != RoleAssistant || content != "" || len(msg.ToolCalls) == 0 {
			wire.Content = &content
		}
		for _, call := range msg.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, chatToolCall{
				ID:       call.ID,
				Type:     "function",
				Function: chatFunctionCall{Name: call.Name, Arguments: call.Arguments},
			})
		}
		body.Messages = append(body.Messages, wire)
	}

	for _, spec := range req.Tools {
		body.Tools = append(body.Tools, chatTool{
			Type:     "function",
			Function: chatFunctionDef{Name: spec.Name, Description: spec.Description, Parameters: spec.Parameters},
		})
	}
	return body
}

func (r *chatResponse) completion() *Completion {
	choice := r.Choices[0]
	msg := Message{Role: RoleAssistant}
	if choice.Message.Content != nil {
		msg.Content = *choice.Message.Content
	}
	for _, call := range choice.Message.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return &Completion{
		Message:      msg,
		FinishReason: choice.FinishReason,
		Usage: Usage{
			PromptTokens:     r.Usage.PromptTokens,
			CompletionTokens: r.Usage.CompletionTokens,
			TotalTokens:      r.Usage.TotalTokens,
		},
	}
}

// errorMessage extracts error.message from an API error body.
func errorMessage(raw []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// parseRetryAfter reads integer seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
