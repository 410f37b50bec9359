package rag_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/rag"
	"github.com/avanth/docuquery/internal/rag/extract"
)

func newTestService(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor, g *MockGenerator) rag.Service {
	return rag.NewService(d, i, &MockBlobStore{}, x, e, g)
}

func newTestJob() jobModel.Job {
	return jobModel.Job{
		Id:      "job-1",
		TraceId: "test-trace",
		JobPayload: jobModel.JobPayload{
			DocumentId: "doc-1",
		},
		Status: jobModel.JobStatusQueued,
	}
}

func TestProcessDocument_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		setupMocks     func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor)
		expectedStep   jobModel.InternalStatus
		expectedStatus jobModel.JobStatus
		expectedRetry  bool
		expectedCause  string
	}{
		{
			name:           "Success_Full_Flow",
			setupMocks:     func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor) {},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusComplete,
		},
		{
			name: "Failure_Claim_Conflict_Is_Retryable",
			setupMocks: func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor) {
				d.OnClaim = func(ctx context.Context, id string) (docModel.Document, error) {
					return docModel.Document{}, docModel.ErrAlreadyProcessing
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedRetry:  true,
		},
		{
			name: "Failure_Unknown_Document",
			setupMocks: func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor) {
				d.OnClaim = func(ctx context.Context, id string) (docModel.Document, error) {
					return docModel.Document{}, docModel.ErrDocumentNotFound
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
		},
		{
			name: "Failure_No_Text_Uses_Placeholder_Cause",
			setupMocks: func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor) {
				x.OnExtract = func(ctx context.Context, path string, contentType docModel.DocType) (string, error) {
					return "", extract.ErrNoText
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCause:  "No text could be extracted from this document.",
		},
		{
			name: "Failure_Extraction_Error_Prefixes_Cause",
			setupMocks: func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor) {
				x.OnExtract = func(ctx context.Context, path string, contentType docModel.DocType) (string, error) {
					return "", errors.New("file is corrupt")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCause:  "Text extraction failed: file is corrupt",
		},
		{
			name: "Embedding_Failure_Still_Completes",
			setupMocks: func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor) {
				e.OnEmbedBatch = func(ctx context.Context, texts []string) ([][]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStep:   jobModel.Complete,
			expectedStatus: jobModel.JobStatusComplete,
		},
		{
			name: "Failure_Index_Swap_Is_Retryable",
			setupMocks: func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor) {
				i.OnReplaceChunks = func(ctx context.Context, documentId string, chunks []docModel.Chunk) error {
					return errors.New("db timeout")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedRetry:  true,
			expectedCause:  "Storing chunks failed: db timeout",
		},
		{
			name: "Panic_Is_Recovered_And_Document_Marked_Failed",
			setupMocks: func(d *MockDocStore, i *MockIndex, e *MockEmbedder, x *MockExtractor) {
				x.OnExtract = func(ctx context.Context, path string, contentType docModel.DocType) (string, error) {
					panic("boom")
				}
			},
			expectedStep:   jobModel.Error,
			expectedStatus: jobModel.JobStatusError,
			expectedCause:  "Processing failed: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mDocs := &MockDocStore{}
			mIndex := &MockIndex{}
			mEmbed := &MockEmbedder{}
			mExtract := &MockExtractor{}

			tt.setupMocks(mDocs, mIndex, mEmbed, mExtract)

			s := newTestService(mDocs, mIndex, mEmbed, mExtract, &MockGenerator{})

			result := s.ProcessDocument(context.Background(), newTestJob())

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}
			if result.Status == jobModel.JobStatusError {
				if result.Error.Code != http.StatusInternalServerError {
					t.Errorf("Error Code got %d, want %d", result.Error.Code, http.StatusInternalServerError)
				}
				if result.Error.Retry != tt.expectedRetry {
					t.Errorf("Retry got %v, want %v", result.Error.Retry, tt.expectedRetry)
				}
			}
			if tt.expectedCause != "" && mDocs.FailedCause != tt.expectedCause {
				t.Errorf("Failure cause got %q, want %q", mDocs.FailedCause, tt.expectedCause)
			}
			if result.EndTime.IsZero() {
				t.Error("EndTime not set on terminal job")
			}
		})
	}
}

func TestProcessDocument_StoresChunksAndText(t *testing.T) {
	mDocs := &MockDocStore{}
	mIndex := &MockIndex{}
	mExtract := &MockExtractor{
		OnExtract: func(ctx context.Context, path string, contentType docModel.DocType) (string, error) {
			return "Invoice total due is $125.00 payable immediately.", nil
		},
	}

	s := newTestService(mDocs, mIndex, &MockEmbedder{}, mExtract, &MockGenerator{})
	result := s.ProcessDocument(context.Background(), newTestJob())

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want %v", result.Status, jobModel.JobStatusComplete)
	}
	if len(mIndex.ReplacedChunks) == 0 {
		t.Fatal("no chunks reached the index")
	}
	for i, c := range mIndex.ReplacedChunks {
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.DocumentId != "doc-1" {
			t.Errorf("chunk %d has document id %s", i, c.DocumentId)
		}
		if c.Embedding == nil {
			t.Errorf("chunk %d stored without vector", i)
		}
	}
	if result.JobPayload.ChunkCount != len(mIndex.ReplacedChunks) {
		t.Errorf("ChunkCount got %d, want %d", result.JobPayload.ChunkCount, len(mIndex.ReplacedChunks))
	}
	if !strings.Contains(mDocs.CompletedText, "$125.00") {
		t.Errorf("completed text missing extracted content: %q", mDocs.CompletedText)
	}
}

func TestProcessDocument_EmbeddingFailureStoresNilVectors(t *testing.T) {
	mIndex := &MockIndex{}
	mEmbed := &MockEmbedder{
		OnEmbedBatch: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("provider down")
		},
	}

	s := newTestService(&MockDocStore{}, mIndex, mEmbed, &MockExtractor{}, &MockGenerator{})
	result := s.ProcessDocument(context.Background(), newTestJob())

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("Status got %v, want %v", result.Status, jobModel.JobStatusComplete)
	}
	for i, c := range mIndex.ReplacedChunks {
		if c.Embedding != nil {
			t.Errorf("chunk %d should have no vector after embedding failure", i)
		}
	}
}

func TestAnswerQuestion_Scenarios(t *testing.T) {
	twoDocsCandidates := func(ctx context.Context, ownerId string, limit int) ([]docModel.ChunkCandidate, error) {
		return []docModel.ChunkCandidate{
			{DocumentId: "doc-a", DocumentName: "a.pdf", ChunkIndex: 0, Text: "totally unrelated text", Embedding: []float32{0, 1}},
			{DocumentId: "doc-a", DocumentName: "a.pdf", ChunkIndex: 1, Text: "invoice total due $125.00", Embedding: []float32{1, 0}},
			{DocumentId: "doc-b", DocumentName: "b.pdf", ChunkIndex: 0, Text: "invoice amount payable", Embedding: []float32{0.9, 0.1}},
		}, nil
	}

	t.Run("Retrieval_Feeds_Generator", func(t *testing.T) {
		mIndex := &MockIndex{OnCandidates: twoDocsCandidates}
		mGen := &MockGenerator{}

		s := newTestService(&MockDocStore{}, mIndex, &MockEmbedder{}, &MockExtractor{}, mGen)
		answer := s.AnswerQuestion(context.Background(), "owner-1", "what is the invoice amount", 5)

		if answer.Text != "mocked llm response" {
			t.Errorf("Answer got %q", answer.Text)
		}
		if answer.ContextChunkCount == 0 {
			t.Error("no context chunks survived ranking")
		}
		if len(mGen.SeenContext) != answer.ContextChunkCount {
			t.Errorf("generator saw %d chunks, answer reports %d", len(mGen.SeenContext), answer.ContextChunkCount)
		}
		if len(answer.ReferencedDocumentIds) != 2 {
			t.Errorf("ReferencedDocumentIds got %v, want both documents once each", answer.ReferencedDocumentIds)
		}
	})

	t.Run("Embedding_Failure_Degrades_To_No_Context", func(t *testing.T) {
		mEmbed := &MockEmbedder{
			OnEmbedQuery: func(ctx context.Context, text string) ([]float32, error) {
				return nil, errors.New("api limit")
			},
		}
		mGen := &MockGenerator{
			OnAnswer: func(ctx context.Context, q string, chunks []docModel.RetrievalResult) string {
				if len(chunks) != 0 {
					t.Errorf("generator should get no context, got %d chunks", len(chunks))
				}
				return "degraded answer"
			},
		}

		s := newTestService(&MockDocStore{}, &MockIndex{}, mEmbed, &MockExtractor{}, mGen)
		answer := s.AnswerQuestion(context.Background(), "owner-1", "anything", 5)

		if answer.Text != "degraded answer" {
			t.Errorf("Answer got %q", answer.Text)
		}
		if answer.ContextChunkCount != 0 || len(answer.ReferencedDocumentIds) != 0 {
			t.Errorf("degraded answer should carry no references, got %+v", answer)
		}
	})

	t.Run("Search_Failure_Degrades_To_No_Context", func(t *testing.T) {
		mIndex := &MockIndex{
			OnCandidates: func(ctx context.Context, ownerId string, limit int) ([]docModel.ChunkCandidate, error) {
				return nil, errors.New("db timeout")
			},
		}
		mGen := &MockGenerator{}

		s := newTestService(&MockDocStore{}, mIndex, &MockEmbedder{}, &MockExtractor{}, mGen)
		answer := s.AnswerQuestion(context.Background(), "owner-1", "anything", 5)

		if answer.Text != "mocked llm response" {
			t.Errorf("Answer got %q", answer.Text)
		}
		if answer.ContextChunkCount != 0 {
			t.Errorf("ContextChunkCount got %d, want 0", answer.ContextChunkCount)
		}
	})

	t.Run("TopK_Bounds_Context", func(t *testing.T) {
		mIndex := &MockIndex{OnCandidates: twoDocsCandidates}
		mGen := &MockGenerator{}

		s := newTestService(&MockDocStore{}, mIndex, &MockEmbedder{}, &MockExtractor{}, mGen)
		answer := s.AnswerQuestion(context.Background(), "owner-1", "invoice amount", 1)

		if answer.ContextChunkCount > 1 {
			t.Errorf("ContextChunkCount got %d, want at most 1", answer.ContextChunkCount)
		}
	})
}
