package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avanth/docuquery/internal/adapter/utils"
	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/job"
	"github.com/avanth/docuquery/internal/metrics"
	"github.com/avanth/docuquery/internal/rag"
	"github.com/avanth/docuquery/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

// JobHandler owns everything the HTTP layer touches: the job submission
// path plus the document, blob and answer services.
type JobHandler struct {
	service    *job.Service
	docs       docModel.DocumentStore
	blobs      docModel.BlobStore
	ragService rag.Service
}

type Services struct {
	JobService *job.Service
	DocStore   docModel.DocumentStore
	BlobStore  docModel.BlobStore
	RagService rag.Service
}

func InitJobHandler(services Services) {
	once.Do(func() {
		handlerInstance = &JobHandler{
			service:    services.JobService,
			docs:       services.DocStore,
			blobs:      services.BlobStore,
			ragService: services.RagService,
		}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

// CreateNewJob queues one extraction job for the document and returns its
// job id. The channel send blocks when the buffer is full; that back
// pressure is what keeps bulk uploads from overwhelming the pool.
func CreateNewJob(documentId string, documentName string, traceId string) string {
	jobId := utils.GetNewUUID()
	logJH.Info("To create new job", "traceId", traceId, "job id", jobId, "documentId", documentId)
	handlerInstance.pushToJobChannel(jobModel.Job{
		Id:          jobId,
		TraceId:     traceId,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.ProcessInit,
		JobPayload: jobModel.JobPayload{
			DocumentId:   documentId,
			DocumentName: documentName,
		},
	})
	return jobId
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob jobModel.Job) {

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.TraceId)
	if err := h.service.JobStore.SaveJob(ctx, newJob); err != nil {
		logJH.Error("Failed to save queued job", "err", err)
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- newJob //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a new worker is started every N requests; workers retire on idle
	//timeout so the pool shrinks back to one between bursts
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}
