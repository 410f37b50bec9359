package docModel

import (
	"context"
	"errors"
	"time"
)

type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

type DocType string

const (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)

// Document is the persisted record for one uploaded file. Status is mutated
// only by the processing pipeline; transitions are monotonic except for a
// caller-triggered reset back to pending.
type Document struct {
	Id            string           `json:"id"`
	OwnerId       string           `json:"owner_id"`
	Name          string           `json:"name"`
	StoragePath   string           `json:"storage_path"`
	ContentType   DocType          `json:"content_type"`
	Status        ProcessingStatus `json:"status"`
	ExtractedText string           `json:"extracted_text,omitempty"`
	UploadedAt    time.Time        `json:"uploaded_at"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
}

// Chunk is the unit of embedding and retrieval. Index values for one document
// are contiguous from 0. Embedding is nil when the provider failed; such
// chunks are stored but excluded from similarity search.
type Chunk struct {
	DocumentId string
	Index      int
	Text       string
	Embedding  []float32
}

// ChunkCandidate is one row returned by the vector index scan, already
// hydrated with the owning document's display name.
type ChunkCandidate struct {
	DocumentId   string
	DocumentName string
	ChunkIndex   int
	Text         string
	Embedding    []float32
}

// RetrievalResult is a ranked candidate above the similarity threshold.
type RetrievalResult struct {
	DocumentId   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkText    string  `json:"chunk_text"`
	ChunkIndex   int     `json:"chunk_index"`
	Similarity   float64 `json:"similarity"`
	KeywordBoost float64 `json:"keyword_boost"`
	BoostedScore float64 `json:"boosted_score"`
}

// Answer is the outcome of the question path.
type Answer struct {
	Text                  string   `json:"answer"`
	ReferencedDocumentIds []string `json:"referenced_document_ids"`
	ContextChunkCount     int      `json:"context_chunk_count"`
}

var (
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAlreadyProcessing is returned by ClaimForProcessing when another job
	// holds the document's processing slot.
	ErrAlreadyProcessing = errors.New("document already processing")
)

type DocumentStore interface {
	CreateDocument(ctx context.Context, doc Document) error
	GetDocument(ctx context.Context, id string) (Document, bool)

	// ClaimForProcessing moves the document to processing if and only if no
	// other job holds it (compare-and-swap on status).
	ClaimForProcessing(ctx context.Context, id string) (Document, error)

	ResetToPending(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, extractedText string) error
	MarkFailed(ctx context.Context, id string, cause string) error
}

type VectorIndex interface {
	// ReplaceChunks deletes all existing chunks for the document and inserts
	// the new set as one atomic unit.
	ReplaceChunks(ctx context.Context, documentId string, chunks []Chunk) error

	// CandidatesByOwner returns chunks with a present embedding for the
	// owner's documents, capped at limit to bound brute-force search cost.
	CandidatesByOwner(ctx context.Context, ownerId string, limit int) ([]ChunkCandidate, error)
}

// BlobStore is the storage collaborator holding raw document bytes.
type BlobStore interface {
	Save(ctx context.Context, name string, data []byte) (locator string, err error)
	Path(locator string) string
}
