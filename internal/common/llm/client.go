// Package llm wraps the OpenAI SDK with the three calls the pipeline needs:
// a forced tool call, a plain completion and embeddings.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"culturis/internal/common/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

var (
	ErrNoToolCall     = errors.New("NO_TOOL_CALL")
	ErrEmptyResponse  = errors.New("EMPTY_MODEL_RESPONSE")
	ErrEmbeddingShape = errors.New("EMBEDDING_SHAPE_MISMATCH")
)

// Tool describes a function the model is forced to call.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// ToolCall is the function name and raw JSON arguments the model returned.
type ToolCall struct {
	Name      string
	Arguments string
}

// Client is safe for concurrent use and is meant to be built once per process.
type Client struct {
	client         openai.Client
	chatModel      string
	embeddingModel string
}

// New builds a client with SDK retries disabled; the pipeline does not retry.
func New(cfg config.OpenAIConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Millisecond}
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:         openai.NewClient(opts...),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
	}
}

// ForcedToolCall sends prompt as a single user message and requires the
// model to answer by calling tool. The first tool call across all choices is
// returned; none at all yields ErrNoToolCall.
func (c *Client) ForcedToolCall(ctx context.Context, prompt string, tool Tool) (*ToolCall, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Tools: []openai.ChatCompletionToolParam{{
			Function: shared.FunctionDefinitionParam{
				Name:        tool.Name,
				Description: openai.String(tool.Description),
				Parameters:  openai.FunctionParameters(tool.Parameters),
			},
		}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: tool.Name},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	for _, choice := range resp.Choices {
		if len(choice.Message.ToolCalls) == 0 {
			continue
		}
		call := choice.Message.ToolCalls[0]
		return &ToolCall{Name: call.Function.Name, Arguments: call.Function.Arguments}, nil
	}
	return nil, ErrNoToolCall
}

// Complete runs a system+user exchange and returns the first choice's text.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector of a single input.
func (c *Client) Embed(ctx context.Context, input string) ([]float64, error) {
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: c.embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(input)},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(resp.Data) != 1 {
		return nil, fmt.Errorf("%w: got %d vectors for 1 input", ErrEmbeddingShape, len(resp.Data))
	}
	return resp.Data[0].Embedding, nil
}

// EmbedBatch embeds inputs in one request, returning vectors in input order.
func (c *Client) EmbedBatch(ctx context.Context, inputs []string) ([][]float64, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: c.embeddingModel,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding batch: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrEmbeddingShape, len(resp.Data), len(inputs))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	vectors := make([][]float64, len(data))
	for i, d := range data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}
