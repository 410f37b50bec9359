package googleEmbedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/rag/embedding"
	"github.com/avanth/docuquery/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension int32 = config.EmbeddingDimGemini

type client struct {
	genAi *genai.Client
	model string
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google embedding client", "error", err)
	}
	if c != nil {
		embeddingClient = &client{
			genAi: c,
			model: modelName,
		}
		logger.Info("Google embedding client created", "model", modelName)
		go closeClient(ctx, embeddingClient)
	}
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google embedding client")
	embeddingClient.genAi = nil
	embeddingClient.model = ""
}

func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model}
}

func (c *client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, config.CloudCallTimeout)
	defer cancel()

	result, err := c.doCall(ctx, genai.Text(text), "RETRIEVAL_QUERY")
	if err != nil {
		logger.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return result.Embeddings[0].Values, nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	kept, keptIdx := embedding.FilterBlank(texts)
	if len(kept) == 0 {
		return make([][]float32, len(texts)), nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.CloudCallTimeout)
	defer cancel()

	res, err := c.doCall(ctx, getContent(kept), "RETRIEVAL_DOCUMENT")
	if err != nil && doRetry(err, logger) {
		time.Sleep(5 * time.Second)
		logger.Debug("Retrying after rate limit")
		res, err = c.doCall(ctx, getContent(kept), "RETRIEVAL_DOCUMENT")
	}
	if err != nil {
		logger.Error("Error getting embeddings from Google", "error", err)
		return nil, err
	}
	if len(res.Embeddings) != len(kept) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(kept), len(res.Embeddings))
	}

	vectors := make([][]float32, len(kept))
	for i, r := range res.Embeddings {
		vectors[i] = r.Values
	}
	return embedding.Realign(len(texts), keptIdx, vectors), nil
}

func (c *client) Dimension() int { return int(dimension) }

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &dimension, TaskType: taskType})
}
