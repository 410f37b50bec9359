package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/avanth/docuquery/internal/config"
	jobmodel "github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/metrics"
)

// executeJob runs one extraction job to its terminal state. The pipeline
// handles its own panics and failure marking; the worker owns the timeout
// and job store bookkeeping.
func executeJob(job jobmodel.Job) {
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobTimeout)
	defer cancel()
	logger.Debug("Processing job:", "job Id:", job.Id, "trace Id", job.TraceId)

	job.Status = jobmodel.JobStatusRunning
	saveJobState(ctx, job)

	job = _ragService.ProcessDocument(ctx, job)

	if job.EndTime.IsZero() {
		job.EndTime = time.Now()
	}
	saveJobState(ctx, job)
}

func removeWorker(reason string) {

	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()

}

// retireIdleWorker shrinks the pool by one unless it is already at the
// minimum. The compare-and-swap keeps two idle workers from racing past
// the floor together.
func retireIdleWorker() bool {
	for {
		count := atomic.LoadInt64(&currentWorkerCount)
		if count <= atomic.LoadInt64(&minWorkerCount) {
			return false
		}
		if atomic.CompareAndSwapInt64(&currentWorkerCount, count, count-1) {
			workerWaitGroup.Done()
			metrics.DecrementActiveWorkerCount()
			logger.Info("Removed worker ", "reason", "Idle worker timeout", "workerCount", count-1)
			return true
		}
	}
}

func saveJobState(ctx context.Context, job jobmodel.Job) {
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update job status", "err", err)
	}
}
