package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/avanth/docuquery/internal/domain/docModel"
)

// InMemoryDocStore backs the document and chunk tables when Postgres is not
// configured. Claim semantics match the SQL compare-and-swap.
type InMemoryDocStore struct {
	mu     sync.RWMutex
	docs   map[string]docModel.Document
	chunks map[string][]docModel.Chunk
}

func InitInMemoryDocStore() *InMemoryDocStore {
	return &InMemoryDocStore{
		docs:   make(map[string]docModel.Document),
		chunks: make(map[string][]docModel.Chunk),
	}
}

func (s *InMemoryDocStore) CreateDocument(ctx context.Context, doc docModel.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.Id] = doc
	return nil
}

func (s *InMemoryDocStore) GetDocument(ctx context.Context, id string) (docModel.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

func (s *InMemoryDocStore) ClaimForProcessing(ctx context.Context, id string) (docModel.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return docModel.Document{}, docModel.ErrDocumentNotFound
	}
	if doc.Status == docModel.StatusProcessing {
		return docModel.Document{}, docModel.ErrAlreadyProcessing
	}
	doc.Status = docModel.StatusProcessing
	s.docs[id] = doc
	return doc, nil
}

func (s *InMemoryDocStore) ResetToPending(ctx context.Context, id string) error {
	return s.update(id, func(doc *docModel.Document) {
		doc.Status = docModel.StatusPending
		doc.ExtractedText = ""
		doc.ProcessedAt = nil
	})
}

func (s *InMemoryDocStore) MarkCompleted(ctx context.Context, id string, extractedText string) error {
	return s.update(id, func(doc *docModel.Document) {
		doc.Status = docModel.StatusCompleted
		doc.ExtractedText = extractedText
		now := time.Now()
		doc.ProcessedAt = &now
	})
}

func (s *InMemoryDocStore) MarkFailed(ctx context.Context, id string, cause string) error {
	return s.update(id, func(doc *docModel.Document) {
		doc.Status = docModel.StatusFailed
		doc.ExtractedText = cause
		now := time.Now()
		doc.ProcessedAt = &now
	})
}

func (s *InMemoryDocStore) update(id string, apply func(*docModel.Document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return docModel.ErrDocumentNotFound
	}
	apply(&doc)
	s.docs[id] = doc
	return nil
}

func (s *InMemoryDocStore) ReplaceChunks(ctx context.Context, documentId string, chunks []docModel.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[documentId] = append([]docModel.Chunk(nil), chunks...)
	return nil
}

func (s *InMemoryDocStore) CandidatesByOwner(ctx context.Context, ownerId string, limit int) ([]docModel.ChunkCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docIds []string
	for id, doc := range s.docs {
		if doc.OwnerId == ownerId {
			docIds = append(docIds, id)
		}
	}
	sort.Strings(docIds)

	var candidates []docModel.ChunkCandidate
	for _, id := range docIds {
		for _, chunk := range s.chunks[id] {
			if chunk.Embedding == nil {
				continue
			}
			if len(candidates) >= limit {
				return candidates, nil
			}
			candidates = append(candidates, docModel.ChunkCandidate{
				DocumentId:   id,
				DocumentName: s.docs[id].Name,
				ChunkIndex:   chunk.Index,
				Text:         chunk.Text,
				Embedding:    chunk.Embedding,
			})
		}
	}
	return candidates, nil
}

var _ docModel.DocumentStore = (*InMemoryDocStore)(nil)
var _ docModel.VectorIndex = (*InMemoryDocStore)(nil)
