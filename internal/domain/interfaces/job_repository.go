package interfaces

import (
	"context"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"
)

type JobFilter struct {
	UserID        string
	Types         []string
	Statuses      []entities.JobStatus
	UpdatedBefore time.Time
}

type JobRepository interface {
	CreateJob(ctx context.Context, job *entities.Job) error
	UpdateJob(ctx context.Context, job *entities.Job) error
	GetJob(ctx context.Context, id string) (*entities.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*entities.Job, error)
}
