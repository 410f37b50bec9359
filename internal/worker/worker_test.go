package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/job"
	"github.com/avanth/docuquery/pkg/logger_i"
)

// MockRagService to track if jobs are executed
type MockRagService struct {
	ProcessedCount int32
}

func (m *MockRagService) ProcessDocument(ctx context.Context, j jobModel.Job) jobModel.Job {
	atomic.AddInt32(&m.ProcessedCount, 1)
	j.Status = jobModel.JobStatusComplete
	j.EndTime = time.Now()
	return j
}

func (m *MockRagService) AnswerQuestion(ctx context.Context, ownerId string, question string, topK int) docModel.Answer {
	return docModel.Answer{}
}

type MockJobStore struct {
	OnSaveJob func(ctx context.Context, job jobModel.Job) error
}

func (m *MockJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	return jobModel.Job{}, false
}

func (m *MockJobStore) DeleteJob(ctx context.Context, jobID string) {}

func (m *MockJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	if m.OnSaveJob != nil {
		return m.OnSaveJob(ctx, j)
	}
	return nil
}

func TestWorkerPool_Flow(t *testing.T) {
	// 1. Setup
	var lastSaved atomic.Value
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 10),
		DispatcherChannel: make(chan bool, 10),
		JobStore: &MockJobStore{
			OnSaveJob: func(ctx context.Context, j jobModel.Job) error {
				lastSaved.Store(j)
				return nil
			},
		},
	}
	mockRag := &MockRagService{}
	stopChan := make(chan bool)
	wg := &sync.WaitGroup{}

	InitServices(jobSvc, mockRag)
	InitWorkerPool(stopChan, wg)

	// Reset global state for test
	atomic.StoreInt64(&currentWorkerCount, 0)

	t.Run("Dispatcher creates worker on signal", func(t *testing.T) {
		// Signal dispatcher to create a worker
		jobSvc.DispatcherChannel <- true

		// Give it a millisecond to spawn
		time.Sleep(50 * time.Millisecond)

		count := atomic.LoadInt64(&currentWorkerCount)
		if count < 1 {
			t.Errorf("Expected at least 1 worker, got %d", count)
		}
	})

	t.Run("Worker processes a job", func(t *testing.T) {
		testJob := jobModel.Job{Id: "test-1", JobPayload: jobModel.JobPayload{DocumentId: "doc-1"}}
		jobSvc.JobChannel <- testJob

		// Wait for worker to pick up and process
		time.Sleep(50 * time.Millisecond)

		processed := atomic.LoadInt32(&mockRag.ProcessedCount)
		if processed != 1 {
			t.Errorf("Expected 1 job processed, got %d", processed)
		}
	})

	t.Run("Terminal job state reaches the store", func(t *testing.T) {
		jobSvc.JobChannel <- jobModel.Job{Id: "test-2", JobPayload: jobModel.JobPayload{DocumentId: "doc-2"}}
		time.Sleep(50 * time.Millisecond)

		saved, ok := lastSaved.Load().(jobModel.Job)
		if !ok {
			t.Fatal("No job state was saved")
		}
		if saved.Status != jobModel.JobStatusComplete {
			t.Errorf("Final saved status got %v, want %v", saved.Status, jobModel.JobStatusComplete)
		}
		if saved.EndTime.IsZero() {
			t.Error("Final saved job has no end time")
		}
	})

	t.Run("Stop signal retires workers", func(t *testing.T) {
		// Send stop signal
		close(stopChan)

		// Wait for workers to exit
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(2 * time.Second):
			t.Error("Workers did not stop within timeout")
		}
	})
}

func TestWorker_IdleTimeoutShrinksToFloor(t *testing.T) {
	// Temporarily override config/globals for test
	atomic.StoreInt64(&currentWorkerCount, 0)
	atomic.StoreInt64(&minWorkerCount, config.MinWorkerCount)
	prevTimeout := idleWorkerTimeout
	idleWorkerTimeout = 50 * time.Millisecond
	defer func() { idleWorkerTimeout = prevTimeout }()
	logger = logger_i.NewLogger("TestWorkerPool")
	jobSvc := &job.Service{
		JobChannel: make(chan jobModel.Job),
	}
	InitServices(jobSvc, &MockRagService{})

	wg := &sync.WaitGroup{}
	stopChan := make(chan bool)
	workerWaitGroup = wg
	stopWorkerChannel = stopChan

	// Grow above the floor, then let both workers idle out
	createWorker()
	createWorker()
	time.Sleep(5 * idleWorkerTimeout)

	count := atomic.LoadInt64(&currentWorkerCount)
	if count != config.MinWorkerCount {
		t.Errorf("Pool should shrink to the %d-worker floor, but count is %d", config.MinWorkerCount, count)
	}

	// The floor worker keeps idling without retiring
	time.Sleep(3 * idleWorkerTimeout)
	if count := atomic.LoadInt64(&currentWorkerCount); count != config.MinWorkerCount {
		t.Errorf("Floor worker retired: count is %d, want %d", count, config.MinWorkerCount)
	}

	close(stopChan)
	wg.Wait()
}
