package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/metrics"
	"github.com/avanth/docuquery/internal/rag/chunker"
	"github.com/avanth/docuquery/pkg/logger_i"
)

func logOutput(job jobModel.Job, status jobModel.InternalStatus, log *logger_i.Logger) jobModel.Job {
	job.CurrentStep = status
	log.Debug("ProcessDocument", "Current Status", job.CurrentStep)
	return job
}

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err)

	job.Error = jobModel.JobError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	job.EndTime = time.Now()
	return job
}

func (s *service) executeExtractionStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, doc docModel.Document) (string, error) {
	*job = logOutput(*job, jobModel.ExtractionStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extraction", time.Since(start)) }()

	return s.extractor.ExtractText(ctx, s.blobs.Path(doc.StoragePath), doc.ContentType)
}

func (s *service) executeChunkingStep(log *logger_i.Logger, job *jobModel.Job, text string) []string {
	*job = logOutput(*job, jobModel.ChunkingStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chunking", time.Since(start)) }()

	return chunker.Split(text, config.ChunkSize, config.ChunkOverlap)
}

// executeEmbeddingStep returns nil on provider failure; the chunks are then
// stored without vectors and stay out of similarity search.
func (s *service) executeEmbeddingStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, chunkTexts []string) [][]float32 {
	*job = logOutput(*job, jobModel.EmbeddingStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	if len(chunkTexts) == 0 {
		return nil
	}
	vectors, err := s.embedder.EmbedBatch(ctx, chunkTexts)
	if err != nil {
		log.Error("embedding batch failed, storing chunks without vectors", "error", err)
		return nil
	}
	return vectors
}

func (s *service) executeIndexStep(ctx context.Context, log *logger_i.Logger, job *jobModel.Job, documentId string, chunks []docModel.Chunk) error {
	*job = logOutput(*job, jobModel.IndexStep, log)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_swap", time.Since(start)) }()

	return s.index.ReplaceChunks(ctx, documentId, chunks)
}

func uniqueDocumentIds(results []docModel.RetrievalResult) []string {
	seen := make(map[string]bool, len(results))
	var ids []string
	for _, r := range results {
		if seen[r.DocumentId] {
			continue
		}
		seen[r.DocumentId] = true
		ids = append(ids, r.DocumentId)
	}
	return ids
}
