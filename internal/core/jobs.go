// ABOUTME: JobQueue runs ingestion requests one at a time on a single worker
// ABOUTME: Every request gets a persisted status record that callers can poll
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage/sqlite"
	"github.com/harper/medrag/internal/util"
)

const (
	waitPollBase = 10 * time.Millisecond
	waitPollMax  = 250 * time.Millisecond
)

// DefaultQueueSize bounds how many jobs may wait behind the running one
const DefaultQueueSize = 16

// Runner executes one ingestion request
type Runner interface {
	Run(ctx context.Context, req models.IngestRequest) (*IngestResult, error)
}

// JobQueue serialises ingestion so only one run writes the index at a time
type JobQueue struct {
	store  *sqlite.JobStore
	runner Runner
	jobs   chan string
	logger *log.Logger

	mu     sync.Mutex // guards closed and the dedup check in Submit
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewJobQueue fails any job a previous process left unfinished, then starts
// the worker
func NewJobQueue(store *sqlite.JobStore, runner Runner, size int, logger *log.Logger) (*JobQueue, error) {
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger = logging.Component(logger, "jobs")

	n, err := store.MarkInterrupted()
	if err != nil {
		return nil, fmt.Errorf("failed to recover job records: %w", err)
	}
	if n > 0 {
		logger.Warn("marked unfinished jobs as failed", "count", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &JobQueue{
		store:  store,
		runner: runner,
		jobs:   make(chan string, size),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	q.wg.Add(1)
	go q.work()
	return q, nil
}

// Submission is the job a Submit call resolved to
type Submission struct {
	models.IngestJob
	// Duplicate is set when an active job for the same path was returned
	Duplicate bool
}

// Message describes the submission for API and tool responses
func (s Submission) Message() string {
	switch {
	case !s.Duplicate:
		return "Ingestion started"
	case s.Status == models.JobRunning:
		return "Ingestion already running"
	default:
		return "Ingestion already queued"
	}
}

// Submit records a pending job and queues it. If the same path already has
// a pending or running job, that job is returned with Duplicate set.
func (q *JobQueue) Submit(req models.IngestRequest) (Submission, error) {
	if err := ValidateRequest(req); err != nil {
		return Submission{}, err
	}
	req.Path = filepath.Clean(req.Path)

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Submission{}, ErrQueueClosed
	}

	existing, err := q.store.FindActiveByPath(req.Path)
	if err != nil {
		return Submission{}, fmt.Errorf("failed to check active jobs: %w", err)
	}
	if existing != nil {
		q.logger.Info("ingestion already queued", "job", existing.ID, "path", req.Path)
		return Submission{IngestJob: *existing, Duplicate: true}, nil
	}

	if len(q.jobs) >= cap(q.jobs) {
		return Submission{}, ErrQueueFull
	}

	job := models.IngestJob{
		ID:      uuid.New().String(),
		Request: req,
		Status:  models.JobPending,
	}
	if err := q.store.Create(&job); err != nil {
		return Submission{}, fmt.Errorf("failed to record job: %w", err)
	}

	// only Submit sends and it holds mu, so the capacity check above holds
	q.jobs <- job.ID
	q.logger.Info("ingestion queued", "job", job.ID, "path", req.Path)
	return Submission{IngestJob: job}, nil
}

// Get returns a job by ID
func (q *JobQueue) Get(id string) (models.IngestJob, error) {
	job, err := q.store.Get(id)
	if err != nil {
		return models.IngestJob{}, err
	}
	if job == nil {
		return models.IngestJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *job, nil
}

// List returns recent jobs, newest first
func (q *JobQueue) List(limit int) ([]models.IngestJob, error) {
	return q.store.List(limit)
}

// Wait polls until the job reaches a terminal state or ctx ends
func (q *JobQueue) Wait(ctx context.Context, id string) (models.IngestJob, error) {
	for attempt := 0; ; attempt++ {
		job, err := q.Get(id)
		if err != nil {
			return job, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
		timer := time.NewTimer(util.PollDelay(waitPollBase, waitPollMax, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return job, ctx.Err()
		case <-timer.C:
		}
	}
}

// Close stops intake and waits for the running job to finish. Jobs still
// queued are marked failed.
func (q *JobQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
	return nil
}

func (q *JobQueue) work() {
	defer q.wg.Done()

	for id := range q.jobs {
		q.mu.Lock()
		closing := q.closed
		q.mu.Unlock()

		if closing {
			q.fail(id, "", "queue closed before the job started")
			continue
		}
		q.process(id)
	}
}

func (q *JobQueue) process(id string) {
	job, err := q.store.Get(id)
	if err != nil || job == nil {
		q.logger.Error("queued job vanished", "job", id, "err", err)
		return
	}

	job.Status = models.JobRunning
	if err := q.store.Update(job); err != nil {
		q.logger.Error("failed to mark job running", "job", id, "err", err)
	}

	result, err := q.run(job.Request)
	if err != nil {
		job.Status = models.JobFailed
		job.Stage = string(StageOf(err))
		job.Message = err.Error()
		q.logger.Error("ingestion failed", "job", id, "path", job.Request.Path, "stage", job.Stage, "err", err)
	} else {
		job.Status = models.JobSucceeded
		job.Stage = ""
		job.Chunks = result.Chunks
		job.Message = completionMessage(result)
	}

	if err := q.store.Update(job); err != nil {
		q.logger.Error("failed to record job outcome", "job", id, "err", err)
	}
}

// run converts a panic in the pipeline into a job failure
func (q *JobQueue) run(req models.IngestRequest) (result *IngestResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ingestion panicked: %v", r)
		}
	}()
	return q.runner.Run(q.ctx, req)
}

func (q *JobQueue) fail(id string, stage Stage, message string) {
	job, err := q.store.Get(id)
	if err != nil || job == nil {
		return
	}
	job.Status = models.JobFailed
	job.Stage = string(stage)
	job.Message = message
	if err := q.store.Update(job); err != nil {
		q.logger.Error("failed to record job outcome", "job", id, "err", err)
	}
}

func completionMessage(r *IngestResult) string {
	if r.Chunks == 0 {
		return fmt.Sprintf("No text extracted from %s; nothing indexed.", r.Source)
	}
	msg := fmt.Sprintf("Ingested %d chunks from %s (%d pages); index holds %d chunks.", r.Chunks, r.Source, r.Pages, r.Total)
	if r.Replaced > 0 {
		msg += fmt.Sprintf(" Replaced %d earlier chunks.", r.Replaced)
	}
	return msg
}

// IsClientError reports whether err was caused by the request itself
func IsClientError(err error) bool {
	return errors.Is(err, ErrFileNotFound) || errors.Is(err, ErrInvalidChunking)
}
