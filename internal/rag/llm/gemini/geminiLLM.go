package gemini

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/rag/llm"
	"github.com/avanth/docuquery/pkg/logger_i"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {
	if apikey == "" {
		logger.Warn("Gemini chat client not configured, GEMINI_API_KEY missing")
		return
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}
}

func (c *llmClient) Name() string { return "gemini" }

func (c *llmClient) Available(ctx context.Context) bool { return c.client != nil }

func (c *llmClient) Generate(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.CloudCallTimeout)
	defer cancel()

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: config.SystemPrompt},
		},
	}
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
	}

	result, err := c.client.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(llm.BuildPrompt(question, contextChunks)),
		contentConfig,
	)
	if err != nil {
		logger.Error("Error generating answer with Gemini", "error", err)
		return "", err
	}
	answer := result.Text()
	if answer == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return answer, nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
