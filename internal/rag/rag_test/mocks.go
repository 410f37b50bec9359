package rag_test

import (
	"context"

	"github.com/avanth/docuquery/internal/domain/docModel"
)

// MockDocStore implements docModel.DocumentStore
type MockDocStore struct {
	// Control fields to simulate different behaviors
	OnClaim         func(ctx context.Context, id string) (docModel.Document, error)
	OnMarkCompleted func(ctx context.Context, id string, extractedText string) error
	OnMarkFailed    func(ctx context.Context, id string, cause string) error

	CompletedText string
	FailedCause   string
}

func (m *MockDocStore) CreateDocument(ctx context.Context, doc docModel.Document) error { return nil }

func (m *MockDocStore) GetDocument(ctx context.Context, id string) (docModel.Document, bool) {
	return docModel.Document{}, false
}

func (m *MockDocStore) ClaimForProcessing(ctx context.Context, id string) (docModel.Document, error) {
	if m.OnClaim != nil {
		return m.OnClaim(ctx, id)
	}
	return docModel.Document{
		Id:          id,
		OwnerId:     "owner-1",
		Name:        "invoice.pdf",
		StoragePath: "invoice.pdf",
		ContentType: docModel.PDF,
		Status:      docModel.StatusProcessing,
	}, nil
}

func (m *MockDocStore) ResetToPending(ctx context.Context, id string) error { return nil }

func (m *MockDocStore) MarkCompleted(ctx context.Context, id string, extractedText string) error {
	m.CompletedText = extractedText
	if m.OnMarkCompleted != nil {
		return m.OnMarkCompleted(ctx, id, extractedText)
	}
	return nil
}

func (m *MockDocStore) MarkFailed(ctx context.Context, id string, cause string) error {
	m.FailedCause = cause
	if m.OnMarkFailed != nil {
		return m.OnMarkFailed(ctx, id, cause)
	}
	return nil
}

// MockIndex implements docModel.VectorIndex
type MockIndex struct {
	OnReplaceChunks func(ctx context.Context, documentId string, chunks []docModel.Chunk) error
	OnCandidates    func(ctx context.Context, ownerId string, limit int) ([]docModel.ChunkCandidate, error)

	ReplacedChunks []docModel.Chunk
}

func (m *MockIndex) ReplaceChunks(ctx context.Context, documentId string, chunks []docModel.Chunk) error {
	m.ReplacedChunks = chunks
	if m.OnReplaceChunks != nil {
		return m.OnReplaceChunks(ctx, documentId, chunks)
	}
	return nil
}

func (m *MockIndex) CandidatesByOwner(ctx context.Context, ownerId string, limit int) ([]docModel.ChunkCandidate, error) {
	if m.OnCandidates != nil {
		return m.OnCandidates(ctx, ownerId, limit)
	}
	return nil, nil
}

// MockBlobStore implements docModel.BlobStore
type MockBlobStore struct{}

func (m *MockBlobStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	return name, nil
}

func (m *MockBlobStore) Path(locator string) string { return "/tmp/" + locator }

// MockExtractor implements rag.TextExtractor
type MockExtractor struct {
	OnExtract func(ctx context.Context, path string, contentType docModel.DocType) (string, error)
}

func (m *MockExtractor) ExtractText(ctx context.Context, path string, contentType docModel.DocType) (string, error) {
	if m.OnExtract != nil {
		return m.OnExtract(ctx, path, contentType)
	}
	return "--- Page 1 ---\nextracted text body.", nil
}

// MockEmbedder implements rag.Embedder
type MockEmbedder struct {
	OnEmbedQuery func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, text)
	}
	return []float32{1, 0}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

func (m *MockEmbedder) Dimension() int { return 2 }

// MockGenerator implements rag.Generator
type MockGenerator struct {
	OnAnswer func(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) string

	SeenContext []docModel.RetrievalResult
}

func (m *MockGenerator) Answer(ctx context.Context, question string, contextChunks []docModel.RetrievalResult) string {
	m.SeenContext = contextChunks
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, question, contextChunks)
	}
	return "mocked llm response"
}
