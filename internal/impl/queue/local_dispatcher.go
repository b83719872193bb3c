package queue

import (
	"context"
	"sync"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"go.uber.org/zap"
)

// LocalDispatcher queues job ids in memory for workers that claim jobs
// over HTTP.
type LocalDispatcher struct {
	mu      sync.Mutex
	pending []string
	logger  *zap.Logger
}

func NewLocalDispatcher(logger *zap.Logger) *LocalDispatcher {
	return &LocalDispatcher{logger: logger}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, job *entities.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, job.ID)
	d.logger.Debug("Job queued for local workers", zap.String("job_id", job.ID), zap.Int("pending", len(d.pending)))
	return nil
}

// Next removes and returns the oldest pending job id.
func (d *LocalDispatcher) Next(ctx context.Context) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return "", false
	}
	id := d.pending[0]
	d.pending = d.pending[1:]
	return id, true
}

var (
	_ interfaces.JobDispatcher = (*LocalDispatcher)(nil)
	_ interfaces.JobQueue      = (*LocalDispatcher)(nil)
)
