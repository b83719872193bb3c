package interfaces

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
)

// JobDispatcher hands a scheduled job to whatever executes it.
type JobDispatcher interface {
	Dispatch(ctx context.Context, job *entities.Job) error
}

// JobObserver is notified synchronously when a job reaches a final status.
type JobObserver interface {
	OnJobCompleted(ctx context.Context, jobType string, status entities.JobStatus)
}

// JobQueue is implemented by dispatchers that hold jobs until a worker
// claims them.
type JobQueue interface {
	Next(ctx context.Context) (string, bool)
}
