package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sworddut/myclaw/internal/logging"
	"github.com/sworddut/myclaw/internal/tool"
)

// HTTPConfig configures an HTTP chat client against an OpenAI-compatible
// or Ollama-compatible endpoint (spec.md §4.2, SPEC_FULL §6).
type HTTPConfig struct {
	BaseURL         string
	Model           string
	APIKey          string
	ModelTimeoutMs  int
	ModelRetryCount int
}

// HTTP is the real, network-backed Chat implementation. A single attempt
// is bounded by ModelTimeoutMs; transport errors and timeouts are retried
// up to ModelRetryCount times before falling back to a safe textual
// response rather than propagating into the turn engine (spec.md §4.2).
//
// Grounded on the teacher's OllamaClient request/response loop
// (_teacher_ref/old_internal/llm/ollama_client.go), generalized from a
// streaming NDJSON loop to a single non-streaming response body (spec.md
// §1 Non-goals: no streaming model output).
type HTTP struct {
	cfg        HTTPConfig
	httpClient *http.Client
	log        *logging.Logger
}

func NewHTTP(cfg HTTPConfig, log *logging.Logger) *HTTP {
	if cfg.ModelTimeoutMs <= 0 {
		cfg.ModelTimeoutMs = 30_000
	}
	if log == nil {
		log = logging.New("provider.http", nil, logging.Info)
	}
	return &HTTP{
		cfg:        cfg,
		httpClient: &http.Client{},
		log:        log,
	}
}

type chatRequestBody struct {
	Model    string            `json:"model"`
	Messages []wireMessage     `json:"messages"`
	Tools    []tool.Definition `json:"tools,omitempty"`
	Stream   bool              `json:"stream"`
}

type wireMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	Name       string `json:"name,omitempty"`
}

type chatResponseBody struct {
	Choices []struct {
		Message struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

func toWireMessages(messages []Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		// Tool-role messages carry both tool_call_id (required by
		// stricter gateways) and name (required by some compatible
		// adapters) per spec.md §4.2.
		out = append(out, wireMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.ToolName,
		})
	}
	return out
}

func (h *HTTP) Chat(ctx context.Context, messages []Message, toolDefs []tool.Definition) (Response, error) {
	body := chatRequestBody{
		Model:    h.cfg.Model,
		Messages: toWireMessages(messages),
		Tools:    toolDefs,
	}

	attempts := h.cfg.ModelRetryCount + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := h.attempt(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		h.log.Warn("chat attempt %d/%d failed: %v", attempt+1, attempts, err)
	}

	h.log.Error("all chat attempts exhausted, returning fallback: %v", lastErr)
	return Response{Text: EmptyResponseSentinel}, nil
}

// chatURL joins the configured base URL with the chat-completions path.
// BaseURL is expected to already carry an API version segment (e.g.
// "https://api.openai.com/v1"); a trailing slash is tolerated so
// "https://x/v1/" and "https://x/v1" both resolve to
// ".../v1/chat/completions".
func (h *HTTP) chatURL() string {
	return strings.TrimRight(h.cfg.BaseURL, "/") + "/chat/completions"
}

func (h *HTTP) attempt(ctx context.Context, body chatRequestBody) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(h.cfg.ModelTimeoutMs)*time.Millisecond)
	defer cancel()

	encoded, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.chatURL(), bytes.NewReader(encoded))
	if err != nil {
		return Response{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("chat transport error: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("chat endpoint returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponseBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Response{}, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Response{Text: EmptyResponseSentinel}, nil
	}

	choice := parsed.Choices[0].Message
	if len(choice.ToolCalls) > 0 {
		calls := make([]tool.Call, 0, len(choice.ToolCalls))
		for _, tc := range choice.ToolCalls {
			var input map[string]any
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				continue
			}
			calls = append(calls, tool.Call{ID: tc.ID, Tool: tc.Function.Name, Input: input})
		}
		if len(calls) > 0 {
			return Response{ToolCalls: calls}, nil
		}
	}

	if call, ok := ParseFallbackToolCall(choice.Content); ok {
		return Response{ToolCalls: []tool.Call{call}}, nil
	}

	if choice.Content == "" {
		return Response{Text: EmptyResponseSentinel}, nil
	}
	return Response{Text: choice.Content}, nil
}
