package openaiEmbedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/rag/embedding"
	"github.com/avanth/docuquery/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	api   openai.Client
	model openai.EmbeddingModel
}

func GetOpenAIEmbeddingClient(apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		if apikey == "" {
			logger.Error("OpenAI embedding client needs OPENAI_API_KEY")
			return
		}
		embeddingClient = &client{
			api:   openai.NewClient(option.WithAPIKey(apikey)),
			model: config.OpenAIEmbeddingModel,
		}
		logger.Info("OpenAI embedding client created", "model", config.OpenAIEmbeddingModel)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func (c *client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if vectors[0] == nil {
		return nil, fmt.Errorf("query text is empty")
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	kept, keptIdx := embedding.FilterBlank(texts)
	if len(kept) == 0 {
		return make([][]float32, len(texts)), nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.CloudCallTimeout)
	defer cancel()

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: kept},
		Model: c.model,
	})
	if err != nil {
		logger.Error("Error getting embeddings from OpenAI", "error", err)
		return nil, err
	}
	if len(resp.Data) != len(kept) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(kept), len(resp.Data))
	}

	vectors := make([][]float32, len(kept))
	for i, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vec[j] = float32(v)
		}
		vectors[i] = vec
	}
	return embedding.Realign(len(texts), keptIdx, vectors), nil
}

func (c *client) Dimension() int { return config.EmbeddingDimOpenAI }
