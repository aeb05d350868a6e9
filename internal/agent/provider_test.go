package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahulagowda004/FIle-Explorer-Agent/internal/config"
)

func openAIConfig(baseURL string) config.LLMConfig {
	cfg := config.DefaultConfig().LLM
	cfg.BaseURL = baseURL
	cfg.APIKey = "sk-test"
	cfg.MaxRetries = 2
	return cfg
}

func noSleep(p *OpenAIProvider) {
	p.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
}

const toolCallResponse = `{
  "choices": [{
    "finish_reason": "tool_calls",
    "message": {
      "role": "assistant",
      "content": null,
      "tool_calls": [{"id": "call_1", "type": "function", "function": {"name": "quick_search", "arguments": "{\"filename\":\"*.pdf\"}"}}]
    }
  }],
  "usage": {"prompt_tokens": 120, "completion_tokens": 8, "total_tokens": 128}
}`

func TestOpenAIProviderComplete(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("api-key"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, toolCallResponse)
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(openAIConfig(srv.URL + "/v1/"))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/v1/chat/completions", p.Endpoint())

	completion, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "sys"},
			{Role: RoleUser, Content: "find pdfs"},
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_0", Name: "quick_search", Arguments: `{}`}}},
			{Role: RoleTool, ToolCallID: "call_0", Name: "quick_search", Content: `{"success":true}`},
		},
		Tools: []ToolSpec{{Name: "quick_search", Description: "search", Parameters: json.RawMessage(`{"type":"object"}`)}},
	})
	require.NoError(t, err)

	assert.Equal(t, "tool_calls", completion.FinishReason)
	assert.Equal(t, "", completion.Message.Content)
	require.Len(t, completion.Message.ToolCalls, 1)
	assert.Equal(t, ToolCall{ID: "call_1", Name: "quick_search", Arguments: `{"filename":"*.pdf"}`}, completion.Message.ToolCalls[0])
	assert.Equal(t, 128, completion.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	messages := captured["messages"].([]any)
	require.Len(t, messages, 4)

	assistant := messages[2].(map[string]any)
	assert.Nil(t, assistant["content"], "assistant tool request should send null content")
	assert.Len(t, assistant["tool_calls"], 1)

	tool := messages[3].(map[string]any)
	assert.Equal(t, "tool", tool["role"])
	assert.Equal(t, "call_0", tool["tool_call_id"])

	tools := captured["tools"].([]any)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "quick_search", fn["name"])
	assert.Equal(t, map[string]any{"type": "object"}, fn["parameters"])
}

func TestOpenAIProviderAzure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt4o/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-06-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "azure-key", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasModel := body["model"]
		assert.False(t, hasModel, "azure requests select the model by deployment")

		io.WriteString(w, `{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"hi there"}}]}`)
	}))
	defer srv.Close()

	cfg := config.DefaultConfig().LLM
	cfg.Provider = "azure"
	cfg.AzureEndpoint = srv.URL + "/"
	cfg.AzureDeployment = "gpt4o"
	cfg.AzureAPIVersion = "2024-06-01"
	cfg.APIKey = "azure-key"

	p, err := NewOpenAIProvider(cfg)
	require.NoError(t, err)

	completion, err := p.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "hi there", completion.Message.Content)
	assert.Empty(t, completion.Message.ToolCalls)
}

func TestOpenAIProviderRetries(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   bool
		wantCode  int
	}{
		{name: "rate limit then success", statuses: []int{429, 200}, wantCalls: 2},
		{name: "server errors then success", statuses: []int{500, 503, 200}, wantCalls: 3},
		{name: "retries exhausted", statuses: []int{502, 502, 502, 502}, wantCalls: 3, wantErr: true, wantCode: 502},
		{name: "client error not retried", statuses: []int{400, 200}, wantCalls: 1, wantErr: true, wantCode: 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				status := tt.statuses[n-1]
				if status != http.StatusOK {
					w.Header().Set("Retry-After", "0")
					w.WriteHeader(status)
					io.WriteString(w, `{"error":{"message":"try later"}}`)
					return
				}
				io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"done"}}]}`)
			}))
			defer srv.Close()

			p, err := NewOpenAIProvider(openAIConfig(srv.URL), noSleep)
			require.NoError(t, err)

			completion, err := p.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "done", completion.Message.Content)
				return
			}

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantCode, apiErr.StatusCode)
			assert.Equal(t, "try later", apiErr.Message)
		})
	}
}

func TestOpenAIProviderBackoffDoubles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var waits []time.Duration
	p, err := NewOpenAIProvider(openAIConfig(srv.URL), WithBackoff(10*time.Millisecond), func(p *OpenAIProvider) {
		p.sleep = func(_ context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}
	})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, waits)
}

func TestNewOpenAIProviderErrors(t *testing.T) {
	cfg := config.DefaultConfig().LLM
	_, err := NewOpenAIProvider(cfg)
	assert.ErrorContains(t, err, "no API key")

	cfg.APIKey = "k"
	cfg.Provider = "azure"
	_, err = NewOpenAIProvider(cfg)
	assert.ErrorContains(t, err, "endpoint and a deployment")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	assert.Greater(t, parseRetryAfter(future), 59*time.Minute)
}
