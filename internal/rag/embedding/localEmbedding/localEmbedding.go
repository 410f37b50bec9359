package localEmbedding

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/rag/embedding"
	"github.com/avanth/docuquery/pkg/logger_i"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
}

// GetLocalEmbeddingClient loads the sentence transformer model, downloading
// it on first run. Returns nil when the model cannot be prepared.
func GetLocalEmbeddingClient(ctx context.Context) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("local_embedding")
		newLocalEmbedder(ctx)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func newLocalEmbedder(ctx context.Context) {
	modelPath, err := prepareModel(config.LocalEmbeddingModel)
	if err != nil {
		logger.Error("Error preparing local embedding model", "error", err)
		return
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		logger.Error("Error creating hugot session", "error", err)
		return
	}

	pipelineConfig := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, pipelineConfig)
	if err != nil {
		logger.Error("Error creating sentence pipeline", "error", err)
		if destroyErr := session.Destroy(); destroyErr != nil {
			logger.Error("Error destroying hugot session", "error", destroyErr)
		}
		return
	}

	embeddingClient = &client{session: session, pipeline: sentencePipeline}
	logger.Info("Local embedding model loaded", "model", config.LocalEmbeddingModel)
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, c *client) {
	<-ctx.Done()
	logger.Info("Closing local embedding session")
	if err := c.session.Destroy(); err != nil {
		logger.Error("Error destroying hugot session", "error", err)
	}
}

// prepareModel downloads the model on first use and returns its local path.
func prepareModel(modelName string) (string, error) {
	modelDir := config.LocalEmbeddingDir
	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		if err := os.MkdirAll(modelDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create model directory: %w", err)
		}
		downloadOptions := hugot.NewDownloadOptions()
		downloadOptions.OnnxFilePath = "onnx/model.onnx"
		downloadedPath, err := hugot.DownloadModel(modelName, modelDir, downloadOptions)
		if err != nil {
			return "", fmt.Errorf("failed to download model: %w", err)
		}
		modelPath = downloadedPath
	}

	return modelPath, nil
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

	result, err := c.pipeline.RunPipeline(kept)
	if err != nil {
		logger.Error("Error running local embedding pipeline", "error", err)
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(result.Embeddings) != len(kept) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, got %d", len(kept), len(result.Embeddings))
	}

	return embedding.Realign(len(texts), keptIdx, result.Embeddings), nil
}

func (c *client) Dimension() int { return config.EmbeddingDimLocal }
