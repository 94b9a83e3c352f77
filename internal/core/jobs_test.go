// ABOUTME: Tests for the ingestion job queue
// ABOUTME: Verifies status transitions, dedup, capacity, and restart recovery

package core

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/medrag/internal/llm"
	"github.com/harper/medrag/internal/logging"
	"github.com/harper/medrag/internal/models"
	"github.com/harper/medrag/internal/storage/sqlite"
)

// blockingRunner holds every run until release is closed
type blockingRunner struct {
	release chan struct{}
	started chan string
	mu      sync.Mutex
	runs    int
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{release: make(chan struct{}), started: make(chan string, 16)}
}

func (b *blockingRunner) Run(_ context.Context, req models.IngestRequest) (*IngestResult, error) {
	b.mu.Lock()
	b.runs++
	b.mu.Unlock()
	b.started <- req.Path
	<-b.release
	return &IngestResult{Source: filepath.Base(req.Path), Chunks: 1, Total: 1}, nil
}

func newJobStore(t *testing.T) *sqlite.JobStore {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewJobStore(db)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestJobQueue_Succeeds(t *testing.T) {
	in, s := newTestIngestor(t, llm.NewHashEmbedder(64))
	q, err := NewJobQueue(newJobStore(t), in, 4, logging.Discard())
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	job, err := q.Submit(request(writeDoc(t, "guide.txt", "Drink water and rest.")))
	require.NoError(t, err)
	assert.Equal(t, models.JobPending, job.Status)
	assert.NotEmpty(t, job.ID)

	done, err := q.Wait(waitCtx(t), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobSucceeded, done.Status)
	assert.Equal(t, 1, done.Chunks)
	assert.Contains(t, done.Message, "guide.txt")
	assert.True(t, s.Ready())
}

func TestJobQueue_FailureRecordsStage(t *testing.T) {
	emb := &countingEmbedder{Embedder: llm.NewHashEmbedder(64), err: errors.New("upstream down")}
	in, _ := newTestIngestor(t, emb)
	q, err := NewJobQueue(newJobStore(t), in, 4, logging.Discard())
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	job, err := q.Submit(request(writeDoc(t, "guide.txt", "Drink water and rest.")))
	require.NoError(t, err)

	done, err := q.Wait(waitCtx(t), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, done.Status)
	assert.Equal(t, string(StageEmbed), done.Stage)
	assert.Contains(t, done.Message, "upstream down")
}

func TestJobQueue_RejectsBadRequests(t *testing.T) {
	q, err := NewJobQueue(newJobStore(t), newBlockingRunner(), 4, logging.Discard())
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	_, err = q.Submit(request(filepath.Join(t.TempDir(), "missing.pdf")))
	assert.True(t, errors.Is(err, ErrFileNotFound))
	assert.True(t, IsClientError(err))

	req := request(writeDoc(t, "a.txt", "x"))
	req.ChunkSize = 0
	_, err = q.Submit(req)
	assert.True(t, errors.Is(err, ErrInvalidChunking))

	jobs, err := q.List(0)
	require.NoError(t, err)
	assert.Empty(t, jobs, "rejected requests must not create records")
}

func TestJobQueue_DedupAndCapacity(t *testing.T) {
	runner := newBlockingRunner()
	q, err := NewJobQueue(newJobStore(t), runner, 1, logging.Discard())
	require.NoError(t, err)

	first, err := q.Submit(request(writeDoc(t, "a.txt", "a")))
	require.NoError(t, err)
	<-runner.started // a.txt is now running, the buffer is empty

	assert.False(t, first.Duplicate)
	assert.Equal(t, "Ingestion started", first.Message())

	again, err := q.Submit(first.Request)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "running path should dedup")
	assert.True(t, again.Duplicate)
	assert.Equal(t, "Ingestion already running", again.Message())

	second, err := q.Submit(request(writeDoc(t, "b.txt", "b")))
	require.NoError(t, err)

	waiting, err := q.Submit(second.Request)
	require.NoError(t, err)
	assert.Equal(t, second.ID, waiting.ID, "pending path should dedup")
	assert.Equal(t, models.JobPending, waiting.Status)
	assert.Equal(t, "Ingestion already queued", waiting.Message())

	_, err = q.Submit(request(writeDoc(t, "c.txt", "c")))
	assert.True(t, errors.Is(err, ErrQueueFull))

	running, err := q.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobRunning, running.Status)

	close(runner.release)
	done, err := q.Wait(waitCtx(t), second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobSucceeded, done.Status)

	require.NoError(t, q.Close())
	_, err = q.Submit(request(writeDoc(t, "d.txt", "d")))
	assert.True(t, errors.Is(err, ErrQueueClosed))
}

func TestJobQueue_CloseFailsQueuedJobs(t *testing.T) {
	runner := newBlockingRunner()
	q, err := NewJobQueue(newJobStore(t), runner, 4, logging.Discard())
	require.NoError(t, err)

	first, err := q.Submit(request(writeDoc(t, "a.txt", "a")))
	require.NoError(t, err)
	<-runner.started

	second, err := q.Submit(request(writeDoc(t, "b.txt", "b")))
	require.NoError(t, err)

	closed := make(chan error, 1)
	go func() { closed <- q.Close() }()

	// release the running job only once Close has stopped intake
	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return q.closed
	}, 5*time.Second, 5*time.Millisecond)
	close(runner.release)
	require.NoError(t, <-closed)

	done, err := q.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobSucceeded, done.Status)

	dropped, err := q.Get(second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, dropped.Status)
	assert.Equal(t, "queue closed before the job started", dropped.Message)

	runner.mu.Lock()
	assert.Equal(t, 1, runner.runs, "queued job must not reach the runner")
	runner.mu.Unlock()
}

func TestJobQueue_GetMissing(t *testing.T) {
	q, err := NewJobQueue(newJobStore(t), newBlockingRunner(), 1, logging.Discard())
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	_, err = q.Get("does-not-exist")
	assert.True(t, errors.Is(err, ErrJobNotFound))
}

func TestJobQueue_MarksInterruptedOnStart(t *testing.T) {
	store := newJobStore(t)
	stale := &models.IngestJob{ID: "stale", Request: models.IngestRequest{Path: "x.pdf", ChunkSize: 10}, Status: models.JobRunning}
	require.NoError(t, store.Create(stale))

	q, err := NewJobQueue(store, newBlockingRunner(), 1, logging.Discard())
	require.NoError(t, err)
	defer func() { _ = q.Close() }()

	job, err := q.Get("stale")
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, sqlite.InterruptedMessage, job.Message)
}

func TestSubmission_Message(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
		want string
	}{
		{"new job", Submission{IngestJob: models.IngestJob{Status: models.JobPending}}, "Ingestion started"},
		{"duplicate pending", Submission{IngestJob: models.IngestJob{Status: models.JobPending}, Duplicate: true}, "Ingestion already queued"},
		{"duplicate running", Submission{IngestJob: models.IngestJob{Status: models.JobRunning}, Duplicate: true}, "Ingestion already running"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Message())
		})
	}
}

func TestCompletionMessage(t *testing.T) {
	assert.Equal(t, "No text extracted from a.pdf; nothing indexed.", completionMessage(&IngestResult{Source: "a.pdf"}))
	assert.Equal(t,
		"Ingested 3 chunks from a.pdf (2 pages); index holds 9 chunks. Replaced 4 earlier chunks.",
		completionMessage(&IngestResult{Source: "a.pdf", Pages: 2, Chunks: 3, Total: 9, Replaced: 4}))
}
