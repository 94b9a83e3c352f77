// ABOUTME: IngestJob tracks one queued ingestion run and its outcome
// ABOUTME: Status moves pending → running → succeeded | failed
package models

import "time"

// JobStatus is the lifecycle state of an ingestion job
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// IsValid checks if the status is one of the known states
func (s JobStatus) IsValid() bool {
	switch s {
	case JobPending, JobRunning, JobSucceeded, JobFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the job has finished
func (s JobStatus) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// IngestRequest describes what to ingest and how to chunk it
type IngestRequest struct {
	Path      string `json:"path"`
	ChunkSize int    `json:"chunk_size"`
	Overlap   int    `json:"overlap"`
	Rebuild   bool   `json:"rebuild,omitempty"`
}

// IngestJob is the persisted status record of an ingestion run
type IngestJob struct {
	ID        string        `json:"id"`
	Request   IngestRequest `json:"request"`
	Status    JobStatus     `json:"status"`
	Stage     string        `json:"stage,omitempty"`
	Message   string        `json:"message,omitempty"`
	Chunks    int           `json:"chunks"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
