package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/metrics"
	"github.com/avanth/docuquery/internal/rag/extract"
	"github.com/avanth/docuquery/internal/rag/rank"
	"github.com/avanth/docuquery/pkg/logger_i"
)

// noTextPlaceholder is stored in place of extracted text when a readable
// document held nothing usable.
const noTextPlaceholder = "No text could be extracted from this document."

// Service is all the worker and handlers see of the pipeline; the stores,
// providers and extraction engine stay private to this package.
type Service interface {
	ProcessDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	AnswerQuestion(ctx context.Context, ownerId string, question string, topK int) docModel.Answer
}

// TextExtractor is satisfied by *extract.Engine; tests swap in fakes.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string, contentType docModel.DocType) (string, error)
}

// Generator is satisfied by *llm.Chain.
type Generator interface {
	Answer(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) string
}

// Embedder mirrors embedding.Embedder; redeclared here so mocks don't need
// the provider packages.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

type service struct {
	docs      docModel.DocumentStore
	index     docModel.VectorIndex
	blobs     docModel.BlobStore
	extractor TextExtractor
	embedder  Embedder
	generator Generator
	logger    *logger_i.Logger
}

// NewService constructor
func NewService(docs docModel.DocumentStore, index docModel.VectorIndex, blobs docModel.BlobStore,
	extractor TextExtractor, embedder Embedder, generator Generator) Service {
	return &service{
		docs:      docs,
		index:     index,
		blobs:     blobs,
		extractor: extractor,
		embedder:  embedder,
		generator: generator,
		logger:    logger_i.NewLogger("RAG Service :"),
	}
}

// ProcessDocument drives one extraction job: claim the document, extract,
// chunk, embed, swap the chunk set, record terminal status. Anything that
// panics mid-job still marks the document failed before the job returns.
func (s *service) ProcessDocument(ctx context.Context, jobt jobModel.Job) (out jobModel.Job) {
	inMethodLogger := s.logger.With("traceId", jobt.TraceId, "JobId", jobt.Id)
	documentId := jobt.JobPayload.DocumentId

	start := time.Now()
	defer func() { metrics.CaptureJobMetrics(string(out.Status), time.Since(start)) }()

	jobt.Status = jobModel.JobStatusRunning
	jobt = logOutput(jobt, jobModel.ProcessInit, inMethodLogger)

	defer func() {
		if r := recover(); r != nil {
			inMethodLogger.Error("panic during document processing", "panic", r)
			s.markFailed(ctx, inMethodLogger, documentId, fmt.Sprintf("Processing failed: %v", r))
			out = s.jobError(jobt, fmt.Errorf("panic: %v", r), "PROCESSING_PANIC", false)
		}
	}()

	doc, err := s.docs.ClaimForProcessing(ctx, documentId)
	if err != nil {
		canRetry := errors.Is(err, docModel.ErrAlreadyProcessing)
		return s.jobError(jobt, err, "CLAIM_FAILURE", canRetry)
	}
	jobt.JobPayload.DocumentName = doc.Name

	// Extraction
	text, err := s.executeExtractionStep(ctx, inMethodLogger, &jobt, doc)
	if err != nil {
		cause := "Text extraction failed: " + err.Error()
		if errors.Is(err, extract.ErrNoText) {
			cause = noTextPlaceholder
		}
		s.markFailed(ctx, inMethodLogger, doc.Id, cause)
		return s.jobError(jobt, err, "EXTRACTION_FAILURE", false)
	}

	// Chunking
	chunkTexts := s.executeChunkingStep(inMethodLogger, &jobt, text)

	// Embedding; a provider failure stores the chunks without vectors, it
	// does not fail the document.
	vectors := s.executeEmbeddingStep(ctx, inMethodLogger, &jobt, chunkTexts)

	chunks := make([]docModel.Chunk, len(chunkTexts))
	for i, chunkText := range chunkTexts {
		chunks[i] = docModel.Chunk{
			DocumentId: doc.Id,
			Index:      i,
			Text:       chunkText,
		}
		if vectors != nil {
			chunks[i].Embedding = vectors[i]
		}
	}

	// Index swap
	if err := s.executeIndexStep(ctx, inMethodLogger, &jobt, doc.Id, chunks); err != nil {
		s.markFailed(ctx, inMethodLogger, doc.Id, "Storing chunks failed: "+err.Error())
		return s.jobError(jobt, err, "INDEX_FAILURE", true)
	}

	if err := s.docs.MarkCompleted(ctx, doc.Id, text); err != nil {
		inMethodLogger.Error("failed to mark document completed", "error", err)
		return s.jobError(jobt, err, "STATUS_UPDATE_FAILURE", true)
	}

	jobt.JobPayload.ChunkCount = len(chunks)
	jobt.Status = jobModel.JobStatusComplete
	jobt.CurrentStep = jobModel.Complete
	jobt.EndTime = time.Now()
	inMethodLogger.Info("document processed", "documentId", doc.Id, "chunks", len(chunks))
	return jobt
}

// AnswerQuestion never raises: retrieval problems degrade to generation
// with no context, and the provider chain supplies its own fallback text.
func (s *service) AnswerQuestion(ctx context.Context, ownerId string, question string, topK int) docModel.Answer {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "ownerId", ownerId)
	if topK <= 0 {
		topK = config.TopKDefault
	}

	results := s.retrieveContext(ctx, log, ownerId, question, topK)

	llmStart := time.Now()
	answerText := s.generator.Answer(ctx, question, results)
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(llmStart))

	return docModel.Answer{
		Text:                  answerText,
		ReferencedDocumentIds: uniqueDocumentIds(results),
		ContextChunkCount:     len(results),
	}
}

func (s *service) retrieveContext(ctx context.Context, log *logger_i.Logger, ownerId string, question string, topK int) []docModel.RetrievalResult {
	embedStart := time.Now()
	queryVec, err := s.embedder.EmbedQuery(ctx, question)
	metrics.CaptureExecutionMetrics("query_embedding", time.Since(embedStart))
	if err != nil {
		log.Error("query embedding failed, answering without context", "error", err)
		return nil
	}

	searchStart := time.Now()
	candidates, err := s.index.CandidatesByOwner(ctx, ownerId, config.MaxSearchCandidates)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(searchStart))
	if err != nil {
		log.Error("candidate scan failed, answering without context", "error", err)
		return nil
	}

	ranker := rank.Ranker{Threshold: config.SimilarityThreshold, TopK: topK}
	results, err := ranker.Rank(queryVec, question, candidates)
	if err != nil {
		log.Error("ranking failed, answering without context", "error", err)
		return nil
	}
	log.Debug("context retrieved", "candidates", len(candidates), "results", len(results))
	return results
}

func (s *service) markFailed(ctx context.Context, log *logger_i.Logger, documentId string, cause string) {
	if err := s.docs.MarkFailed(ctx, documentId, cause); err != nil {
		// best effort only, not retried
		log.Error("failed to mark document failed", "documentId", documentId, "error", err)
	}
}
