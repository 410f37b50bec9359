package jobModel

import (
	"context"
	"time"
)

type JobStatus string
type InternalStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	ProcessInit    InternalStatus = "Init"
	ExtractionStep InternalStatus = "Extraction"
	ChunkingStep   InternalStatus = "Chunking"
	EmbeddingStep  InternalStatus = "Embedding"
	IndexStep      InternalStatus = "VectorIndex"
	Error          InternalStatus = "Error"
	Complete       InternalStatus = "Complete"
)

// Job tracks one asynchronous document extraction run. One job handles
// exactly one document; jobs for different documents run in parallel.
type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"can_retry"`
}

type JobPayload struct {
	DocumentId   string `json:"document_id"`
	DocumentName string `json:"document_name,omitempty"`
	ChunkCount   int    `json:"chunk_count,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// ChatMessage is one entry in a question/answer session, appended by the
// ask path after generation completes.
type ChatMessage struct {
	Role                  string   `json:"role"`
	Content               string   `json:"content"`
	ReferencedDocumentIds []string `json:"referenced_document_ids,omitempty"`
}

type MessageStore interface {
	ValidateSessionId(ctx context.Context, id string) bool
	InitNewSession(ctx context.Context, id string) error
	AppendMessage(ctx context.Context, sessionId string, msg ChatMessage) error
	GetMessageHistory(ctx context.Context, sessionId string) ([]string, error)
}
