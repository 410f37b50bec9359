package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type ExtractionResponse struct {
	DocumentId   string `json:"document_id"`
	DocumentName string `json:"document_name"`
	ChunkCount   int    `json:"chunk_count"`
}

type Result struct {
	Status     string              `json:"status"`
	Extraction *ExtractionResponse `json:"extraction,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type UploadDocumentResponse struct {
	DocumentId string `json:"document_id"`
	JobId      string `json:"job_id"`
	StatusURL  string `json:"status_url"`
}

type DocumentResponse struct {
	Id           string     `json:"id" example:"doc_81f2"`
	Name         string     `json:"name" example:"invoice.pdf"`
	ContentType  string     `json:"content_type" example:"PDF"`
	Status       string     `json:"status" example:"completed"`
	UploadedAt   time.Time  `json:"uploaded_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	FailureCause string     `json:"failure_cause,omitempty"`
}

type AskResponse struct {
	SessionId             string   `json:"session_id"`
	Question              string   `json:"question"`
	Answer                string   `json:"answer"`
	ReferencedDocumentIds []string `json:"referenced_document_ids,omitempty"`
	ContextChunkCount     int      `json:"context_chunk_count"`
}

// requests---------------------

type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionId string `json:"session_id,omitempty"`
	TopK      int    `json:"top_k,omitempty"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
