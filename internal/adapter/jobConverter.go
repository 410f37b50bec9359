package adapter

import (
	"fmt"
	"time"

	"github.com/avanth/docuquery/internal/api"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToUploadResponse(documentId string, jobId string) api.UploadDocumentResponse {
	return api.UploadDocumentResponse{
		DocumentId: documentId,
		JobId:      jobId,
		StatusURL:  fmt.Sprintf("status/%s", jobId),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:     string(job.Status),
		Extraction: ToExtractionResponse(job),
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToExtractionResponse(job jobModel.Job) *api.ExtractionResponse {
	if job.JobPayload.DocumentId == "" {
		return nil
	}

	return &api.ExtractionResponse{
		DocumentId:   job.JobPayload.DocumentId,
		DocumentName: job.JobPayload.DocumentName,
		ChunkCount:   job.JobPayload.ChunkCount,
	}
}

func ToDocumentResponse(doc docModel.Document) api.DocumentResponse {
	res := api.DocumentResponse{
		Id:          doc.Id,
		Name:        doc.Name,
		ContentType: string(doc.ContentType),
		Status:      string(doc.Status),
		UploadedAt:  doc.UploadedAt,
		ProcessedAt: doc.ProcessedAt,
	}
	// a failed document carries its cause where extracted text would go
	if doc.Status == docModel.StatusFailed {
		res.FailureCause = doc.ExtractedText
	}
	return res
}

func ToAskResponse(sessionId string, question string, answer docModel.Answer) api.AskResponse {
	return api.AskResponse{
		SessionId:             sessionId,
		Question:              question,
		Answer:                answer.Text,
		ReferencedDocumentIds: answer.ReferencedDocumentIds,
		ContextChunkCount:     answer.ContextChunkCount,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
