package openaiLLM

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/rag/llm"
	"github.com/avanth/docuquery/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var chatClient *client

type client struct {
	api        openai.Client
	configured bool
}

func GetOpenAIClient(apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		chatClient = &client{configured: apikey != ""}
		if chatClient.configured {
			chatClient.api = openai.NewClient(option.WithAPIKey(apikey))
			logger.Info("OpenAI chat client created", "model", config.OpenAIChatModel)
		} else {
			logger.Warn("OpenAI chat client not configured, OPENAI_API_KEY missing")
		}
	})
	return chatClient
}

func (c *client) Name() string { return "openai" }

// Available only checks for a configured credential; the real failure mode
// surfaces in Generate and triggers the chain's fallback there.
func (c *client) Available(ctx context.Context) bool { return c.configured }

func (c *client) Generate(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.CloudCallTimeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.SystemPrompt),
			openai.UserMessage(llm.BuildPrompt(question, contextChunks)),
		},
		Model:       config.OpenAIChatModel,
		MaxTokens:   openai.Int(config.MaxAnswerTokens),
		Temperature: openai.Float(config.ModelTemperature),
	})
	if err != nil {
		logger.Error("Error generating answer with OpenAI", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
