// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/script-engine/internal/httputil"
	"github.com/pdiddy/script-engine/pkg/types"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOllamaModel = "llama3.1"
)

// OpenAI calls an OpenAI-compatible chat completions endpoint through the
// official SDK. The same type serves hosted OpenAI and local hosts such as
// Ollama that speak the same protocol.
type OpenAI struct {
	name   string
	model  string
	max    int
	client openai.Client
}

// NewOpenAI builds an adapter for cfg. baseURL may be empty for the hosted
// API. The SDK's own retries are disabled; LLM owns the retry policy.
func NewOpenAI(cfg types.LLMConfig, httpClient *http.Client) *OpenAI {
	name := cfg.Provider
	if name == "" {
		name = "openai"
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
		if name == "ollama" {
			model = defaultOllamaModel
		}
	}

	key := cfg.APIKey
	if key == "" {
		// Local hosts ignore the key but the SDK requires one.
		key = "ollama"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if cfg.APIURL != "" {
		base := cfg.APIURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &OpenAI{
		name:   name,
		model:  model,
		max:    cfg.MaxTokens,
		client: openai.NewClient(opts...),
	}
}

func (o *OpenAI) Name() string { return o.name }

// Complete sends a single user message and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	}
	if o.max > 0 {
		params.MaxTokens = openai.Int(int64(o.max))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &Error{
				Provider: o.name,
				Kind:     httputil.KindForStatus(apiErr.StatusCode),
				Status:   apiErr.StatusCode,
				Err:      err,
			}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Provider: o.name, Kind: types.ErrUpstream, Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}
