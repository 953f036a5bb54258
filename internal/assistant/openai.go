// Package assistant provides the AI chat assistant: an OpenAI
// chat-completions client plus the prompt composer that grounds replies in
// the user's portfolio data.
package assistant

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Assistant answers chat messages with portfolio context.
type Assistant interface {
	Chat(ctx context.Context, system string, messages []Message) (string, error)
	ModelName() string
}

// Compile-time interface check
var _ Assistant = (*OpenAI)(nil)

// CompletionsService defines the interface for making chat completion API
// calls. This abstraction enables testing without calling the real OpenAI
// API.
type CompletionsService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// OpenAI implements the assistant using OpenAI's chat completions API.
type OpenAI struct {
	completions CompletionsService
	model       openai.ChatModel
}

// NewOpenAI creates a new OpenAI-backed assistant.
func NewOpenAI(apiKey, model string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		completions: client.Chat.Completions,
		model:       openai.ChatModel(model),
	}
}

// Chat sends the grounding system prompt plus the conversation and returns
// the assistant's reply.
func (o *OpenAI) Chat(ctx context.Context, system string, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if system != "" {
		params = append(params, openai.SystemMessage(system))
	}
	for _, m := range messages {
		switch m.Role {
		case "assistant":
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F(params),
		Model:    openai.F(o.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion failed: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// ModelName returns the chat model name.
func (o *OpenAI) ModelName() string {
	return string(o.model)
}
