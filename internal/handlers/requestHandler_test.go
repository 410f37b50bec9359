package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/avanth/docuquery/internal/api"
	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/data/blobStore"
	"github.com/avanth/docuquery/internal/data/store"
	"github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/job"
)

// initTestHandlers wires the singleton once for the whole package; the
// channels are buffered so uploads never block on a missing worker pool.
func initTestHandlers(t *testing.T) {
	t.Helper()

	dir, err := os.MkdirTemp("", "uploads")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	blobs, err := blobStore.NewLocalBlobStore(dir)
	if err != nil {
		t.Fatalf("blob store: %v", err)
	}

	svc := job.InitJobService(job.ServiceConfig{
		JobChannel:        make(chan jobModel.Job, 16),
		DispatcherChannel: make(chan bool, 16),
		JobStore:          store.InitInMemoryJobStore(),
		MessageStore:      store.InitMessageStore(),
	})
	InitJobHandler(Services{
		JobService: svc,
		DocStore:   store.InitInMemoryDocStore(),
		BlobStore:  blobs,
		RagService: nil,
	})
}

func newUploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("document", filename)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form: %v", err)
	}
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/documents", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, "trace-test")
	return req.WithContext(ctx)
}

func TestUploadDocument_AcceptsSmallFile(t *testing.T) {
	initTestHandlers(t)

	rec := httptest.NewRecorder()
	UploadDocumentHandler(rec, newUploadRequest(t, "report.txt", []byte("quarterly numbers")))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	var resp api.UploadDocumentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DocumentId == "" || resp.JobId == "" {
		t.Errorf("response missing ids: %+v", resp)
	}
	if queued, found := handlerInstance.service.JobStore.GetJob(context.Background(), resp.JobId); !found {
		t.Error("queued job was not saved")
	} else if queued.Status != jobModel.JobStatusQueued {
		t.Errorf("queued job status = %v, want %v", queued.Status, jobModel.JobStatusQueued)
	}
}

func TestUploadDocument_RejectsOversizedFile(t *testing.T) {
	initTestHandlers(t)

	// one byte over the cap must be rejected outright, never stored truncated
	oversized := bytes.Repeat([]byte{'a'}, maxUploadSize+1)
	rec := httptest.NewRecorder()
	UploadDocumentHandler(rec, newUploadRequest(t, "huge.txt", oversized))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
}

func TestUploadDocument_RejectsUnsupportedType(t *testing.T) {
	initTestHandlers(t)

	rec := httptest.NewRecorder()
	UploadDocumentHandler(rec, newUploadRequest(t, "payload.exe", []byte("MZ")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
