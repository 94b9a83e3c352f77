// ABOUTME: Tests for ingestion job storage operations
// ABOUTME: Verifies CRUD, ordering, active lookup, and restart recovery
package sqlite

import (
	"testing"
	"time"

	"github.com/harper/medrag/internal/models"
)

func newTestJobStore(t *testing.T) *JobStore {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewJobStore(db)
}

func TestJobCRUD(t *testing.T) {
	store := newTestJobStore(t)

	job := &models.IngestJob{
		ID: "job_1",
		Request: models.IngestRequest{
			Path:      "data/raw/guide.pdf",
			ChunkSize: 1000,
			Overlap:   200,
			Rebuild:   true,
		},
	}
	if err := store.Create(job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if job.Status != models.JobPending {
		t.Errorf("Status = %v, want pending", job.Status)
	}
	if job.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.Get("job_1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil")
	}
	if got.Request != job.Request {
		t.Errorf("Request = %+v, want %+v", got.Request, job.Request)
	}

	job.Status = models.JobSucceeded
	job.Stage = ""
	job.Message = "Ingestion complete: 12 chunks."
	job.Chunks = 12
	if err := store.Update(job); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err = store.Get("job_1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != models.JobSucceeded {
		t.Errorf("Status = %v, want succeeded", got.Status)
	}
	if got.Chunks != 12 {
		t.Errorf("Chunks = %d, want 12", got.Chunks)
	}
	if got.Message != job.Message {
		t.Errorf("Message = %q, want %q", got.Message, job.Message)
	}
}

func TestJobRejectsUnknownStatus(t *testing.T) {
	store := newTestJobStore(t)

	bad := &models.IngestJob{ID: "job_bad", Request: models.IngestRequest{Path: "a.pdf", ChunkSize: 10}, Status: "cancelled"}
	if err := store.Create(bad); err == nil {
		t.Error("Create() with unknown status should fail")
	}

	job := &models.IngestJob{ID: "job_ok", Request: models.IngestRequest{Path: "a.pdf", ChunkSize: 10}}
	if err := store.Create(job); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	job.Status = "PENDING"
	if err := store.Update(job); err == nil {
		t.Error("Update() with unknown status should fail")
	}

	got, err := store.Get("job_ok")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != models.JobPending {
		t.Errorf("Status = %v, want pending after rejected update", got.Status)
	}
}

func TestJobGetMissing(t *testing.T) {
	store := newTestJobStore(t)

	got, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestJobListNewestFirst(t *testing.T) {
	store := newTestJobStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		job := &models.IngestJob{
			ID:        id,
			Request:   models.IngestRequest{Path: id + ".pdf", ChunkSize: 1000, Overlap: 200},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Create(job); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}

	jobs, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("List() returned %d jobs, want 3", len(jobs))
	}
	if jobs[0].ID != "c" || jobs[2].ID != "a" {
		t.Errorf("order = %s,%s,%s, want c,b,a", jobs[0].ID, jobs[1].ID, jobs[2].ID)
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d jobs", len(limited))
	}
}

func TestFindActiveByPath(t *testing.T) {
	store := newTestJobStore(t)

	done := &models.IngestJob{ID: "done", Request: models.IngestRequest{Path: "x.pdf", ChunkSize: 10, Overlap: 0}, Status: models.JobSucceeded}
	if err := store.Create(done); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.FindActiveByPath("x.pdf")
	if err != nil {
		t.Fatalf("FindActiveByPath() error = %v", err)
	}
	if got != nil {
		t.Errorf("finished job should not be active, got %s", got.ID)
	}

	running := &models.IngestJob{ID: "run", Request: models.IngestRequest{Path: "x.pdf", ChunkSize: 10, Overlap: 0}, Status: models.JobRunning}
	if err := store.Create(running); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err = store.FindActiveByPath("x.pdf")
	if err != nil {
		t.Fatalf("FindActiveByPath() error = %v", err)
	}
	if got == nil || got.ID != "run" {
		t.Errorf("FindActiveByPath() = %+v, want run", got)
	}

	other, err := store.FindActiveByPath("y.pdf")
	if err != nil {
		t.Fatalf("FindActiveByPath() error = %v", err)
	}
	if other != nil {
		t.Errorf("unexpected active job for y.pdf: %s", other.ID)
	}
}

func TestMarkInterrupted(t *testing.T) {
	store := newTestJobStore(t)

	statuses := map[string]models.JobStatus{
		"p": models.JobPending,
		"r": models.JobRunning,
		"s": models.JobSucceeded,
	}
	for id, status := range statuses {
		job := &models.IngestJob{ID: id, Request: models.IngestRequest{Path: id, ChunkSize: 10}, Status: status}
		if err := store.Create(job); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}

	n, err := store.MarkInterrupted()
	if err != nil {
		t.Fatalf("MarkInterrupted() error = %v", err)
	}
	if n != 2 {
		t.Errorf("MarkInterrupted() = %d, want 2", n)
	}

	for _, id := range []string{"p", "r"} {
		job, _ := store.Get(id)
		if job.Status != models.JobFailed {
			t.Errorf("%s status = %v, want failed", id, job.Status)
		}
		if job.Message != InterruptedMessage {
			t.Errorf("%s message = %q", id, job.Message)
		}
	}

	kept, _ := store.Get("s")
	if kept.Status != models.JobSucceeded {
		t.Errorf("succeeded job changed to %v", kept.Status)
	}
}
