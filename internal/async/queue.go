package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is one queued contract document. Extend as needed later (profile,
// trace, retry, etc).
type Job struct {
	JobID       uuid.UUID
	PDFPath     string
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
