// ABOUTME: Sentinel errors and the stage-tagged ingestion error
// ABOUTME: Callers match with errors.Is / errors.As instead of parsing messages
package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuestion     = errors.New("question is empty")
	ErrQueueFull         = errors.New("ingestion queue is full")
	ErrQueueClosed       = errors.New("ingestion queue is closed")
	ErrJobNotFound       = errors.New("ingestion job not found")
	ErrDimensionMismatch = errors.New("embedder does not match the stored index")
	ErrFileNotFound      = errors.New("file not found")
	ErrInvalidChunking   = errors.New("invalid chunking parameters")
)

// Stage names the ingestion step an error came from
type Stage string

const (
	StageExtract    Stage = "extract"
	StageChunk      Stage = "chunk"
	StageEmbed      Stage = "embed"
	StageIndexWrite Stage = "index-write"
	StageReload     Stage = "reload"
)

// StageError records which ingestion stage failed
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the stage of a StageError in err's chain, or ""
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
