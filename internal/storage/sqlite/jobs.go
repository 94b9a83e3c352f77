// ABOUTME: Ingestion job persistence for SQLite
// ABOUTME: Create, update, and list job records; recover jobs cut off by a restart
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harper/medrag/internal/models"
)

// InterruptedMessage is recorded on jobs that were in flight when the process stopped
const InterruptedMessage = "interrupted by restart"

const jobColumns = `id, path, chunk_size, overlap, rebuild, status, stage, message, chunks, created_at, updated_at`

// JobStore handles ingestion job persistence
type JobStore struct {
	db *DB
}

// NewJobStore creates a new JobStore
func NewJobStore(db *DB) *JobStore {
	return &JobStore{db: db}
}

// Create inserts a new job record
func (s *JobStore) Create(job *models.IngestJob) error {
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.CreatedAt
	}
	if job.Status == "" {
		job.Status = models.JobPending
	}
	if !job.Status.IsValid() {
		return fmt.Errorf("invalid job status %q", job.Status)
	}

	_, err := s.db.Exec(`
		INSERT INTO ingest_jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.Request.Path, job.Request.ChunkSize, job.Request.Overlap,
		boolToInt(job.Request.Rebuild), string(job.Status), job.Stage, job.Message,
		job.Chunks, job.CreatedAt, job.UpdatedAt)

	return err
}

// Update writes the mutable fields of a job: status, stage, message, chunks
func (s *JobStore) Update(job *models.IngestJob) error {
	if !job.Status.IsValid() {
		return fmt.Errorf("invalid job status %q", job.Status)
	}
	job.UpdatedAt = time.Now().UTC()

	_, err := s.db.Exec(`
		UPDATE ingest_jobs
		SET status = ?, stage = ?, message = ?, chunks = ?, updated_at = ?
		WHERE id = ?
	`, string(job.Status), job.Stage, job.Message, job.Chunks, job.UpdatedAt, job.ID)

	return err
}

// Get retrieves a job by ID. Returns nil, nil if no such job exists.
func (s *JobStore) Get(id string) (*models.IngestJob, error) {
	job, err := scanJob(s.db.QueryRow(`
		SELECT `+jobColumns+`
		FROM ingest_jobs
		WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// List returns the most recent jobs first. limit <= 0 means no limit.
func (s *JobStore) List(limit int) ([]models.IngestJob, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT `+jobColumns+`
		FROM ingest_jobs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var jobs []models.IngestJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	return jobs, rows.Err()
}

// FindActiveByPath returns the pending or running job for path, or nil
func (s *JobStore) FindActiveByPath(path string) (*models.IngestJob, error) {
	job, err := scanJob(s.db.QueryRow(`
		SELECT `+jobColumns+`
		FROM ingest_jobs
		WHERE path = ? AND status IN (?, ?)
		ORDER BY created_at ASC
		LIMIT 1
	`, path, string(models.JobPending), string(models.JobRunning)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// MarkInterrupted fails every job left pending or running and returns how many changed
func (s *JobStore) MarkInterrupted() (int64, error) {
	result, err := s.db.Exec(`
		UPDATE ingest_jobs
		SET status = ?, message = ?, updated_at = ?
		WHERE status IN (?, ?)
	`, string(models.JobFailed), InterruptedMessage, time.Now().UTC(),
		string(models.JobPending), string(models.JobRunning))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.IngestJob, error) {
	var (
		job     models.IngestJob
		status  string
		rebuild int
	)

	err := row.Scan(&job.ID, &job.Request.Path, &job.Request.ChunkSize, &job.Request.Overlap,
		&rebuild, &status, &job.Stage, &job.Message, &job.Chunks, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}

	job.Status = models.JobStatus(status)
	job.Request.Rebuild = rebuild != 0
	return &job, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
