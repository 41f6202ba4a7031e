package gymbro

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/samber/oops"
)

// Mistral exposes an OpenAI compatible chat completions API.
const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-small-latest"
)

// Completer turns an ordered conversation into one assistant reply.
type Completer interface {
	Complete(ctx context.Context, msgs []Message) (string, error)
}

// ClientOptions configure the OpenAI compatible client.
type ClientOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	// SafePrompt asks Mistral to prepend its own guardrail prompt.
	SafePrompt bool
}

// OpenAICompleter calls a chat completions endpoint through openai-go.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter builds a completer for opts, filling in Mistral defaults.
func NewOpenAICompleter(opts ClientOptions) *OpenAICompleter {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(base),
	}
	if opts.SafePrompt {
		reqOpts = append(reqOpts, option.WithJSONSet("safe_prompt", true))
	}
	return &OpenAICompleter{client: openai.NewClient(reqOpts...), model: model}
}

// Model returns the configured model name.
func (c *OpenAICompleter) Model() string { return c.model }

func (c *OpenAICompleter) Complete(ctx context.Context, msgs []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: toParams(msgs),
	}
	chat, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", oops.In("gymbro").Code("llm_request").With("model", c.model).Wrapf(err, "chat completion")
	}
	if len(chat.Choices) == 0 {
		return "", nil
	}
	return chat.Choices[0].Message.Content, nil
}

func toParams(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
