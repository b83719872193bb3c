package repositories_json

import (
	"context"
	"slices"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
)

type JsonJobRepository struct {
	store *store[entities.Job]
}

func NewJSONJobRepository(dataDir string) (*JsonJobRepository, error) {
	s, err := newStore(dataDir, "jobs", func(j *entities.Job) string { return j.ID })
	if err != nil {
		return nil, err
	}
	return &JsonJobRepository{store: s}, nil
}

func (r *JsonJobRepository) ListJobs(ctx context.Context, filter interfaces.JobFilter) ([]*entities.Job, error) {
	return r.store.list(func(j *entities.Job) bool {
		if filter.UserID != "" && j.UserID != filter.UserID {
			return false
		}
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, j.Type) {
			return false
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, j.Status) {
			return false
		}
		if !filter.UpdatedBefore.IsZero() && !j.UpdatedAt.Before(filter.UpdatedBefore) {
			return false
		}
		return true
	})
}

func (r *JsonJobRepository) GetJob(ctx context.Context, id string) (*entities.Job, error) {
	return r.store.get(id)
}

func (r *JsonJobRepository) CreateJob(ctx context.Context, job *entities.Job) error {
	return r.store.create(job)
}

func (r *JsonJobRepository) UpdateJob(ctx context.Context, job *entities.Job) error {
	return r.store.update(job)
}

var _ interfaces.JobRepository = (*JsonJobRepository)(nil)
