package merge

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrMaterialNotFound means the server had no source PDFs for the request.
	ErrMaterialNotFound = errors.New("merge: material not found")
	// ErrMergeGeneration covers every other failure, network included.
	ErrMergeGeneration = errors.New("merge: generation failed")
)

// State is the lifecycle position of a job.
type State int

const (
	StatePending State = iota
	StateRunning
	StateSuccess
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateSuccess:
		return "success"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// Job is a snapshot of one merge request. Snapshots are values; the runner
// never shares a Job between goroutines.
type Job struct {
	ID         uuid.UUID
	Request    Request
	State      State
	Progress   float64
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Slot returns the control slot of the job.
func (j Job) Slot() Slot { return j.Request.Slot() }

// Download is the payload of a successful job.
type Download struct {
	Filename string
	Body     []byte
	Pages    int
}

// Result is the terminal outcome of a job. Download is nil unless the job
// succeeded.
type Result struct {
	Job      Job
	Download *Download
}
