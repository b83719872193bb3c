package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/events"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"go.uber.org/zap"
)

const staleJobLog = "Canceled stale job."

type JobService interface {
	CreateJob(ctx context.Context, job *entities.Job) error
	ScheduleJob(ctx context.Context, job *entities.Job) error
	UpdateJob(ctx context.Context, update entities.JobUpdate) (*entities.Job, error)
	GetJob(ctx context.Context, id string, user *entities.User) (*entities.Job, error)
	ListJobs(ctx context.Context, filter interfaces.JobFilter) ([]*entities.Job, error)
	CancelStaleJobs(ctx context.Context, age time.Duration) (int, error)
	HandleFileUploaded(ctx context.Context, file *entities.File) error
	AddObserver(observer interfaces.JobObserver)
}

type jobService struct {
	jobRepo    interfaces.JobRepository
	registry   ImageRegistry
	dispatcher interfaces.JobDispatcher
	logger     *zap.Logger

	mu        sync.RWMutex
	observers []interfaces.JobObserver
}

func NewJobService(jobRepo interfaces.JobRepository, registry ImageRegistry, dispatcher interfaces.JobDispatcher, logger *zap.Logger) *jobService {
	return &jobService{
		jobRepo:    jobRepo,
		registry:   registry,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (s *jobService) AddObserver(observer interfaces.JobObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, observer)
}

func (s *jobService) CreateJob(ctx context.Context, job *entities.Job) error {
	if job.ID == "" {
		return errs.ValidationErrorf("job id is required")
	}
	if job.Title == "" {
		return errs.ValidationErrorf("job title is required")
	}
	if job.Type == "" {
		return errs.ValidationErrorf("job type is required")
	}

	job.Status = entities.JobStatusInactive
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()

	if err := s.jobRepo.CreateJob(ctx, job); err != nil {
		return err
	}
	s.logger.Info("Job created", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.String("title", job.Title))
	return nil
}

// ScheduleJob queues a created job and hands it to the dispatcher. A job the
// dispatcher refuses is marked as errored.
func (s *jobService) ScheduleJob(ctx context.Context, job *entities.Job) error {
	job.Status = entities.JobStatusQueued
	job.UpdatedAt = time.Now()
	if err := s.jobRepo.UpdateJob(ctx, job); err != nil {
		return err
	}

	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		s.logger.Error("Failed to dispatch job", zap.String("job_id", job.ID), zap.Error(err))
		job.Status = entities.JobStatusError
		job.Log = append(job.Log, fmt.Sprintf("Failed to dispatch job: %v", err))
		job.UpdatedAt = time.Now()
		if uerr := s.jobRepo.UpdateJob(ctx, job); uerr != nil {
			s.logger.Error("Failed to record dispatch failure", zap.String("job_id", job.ID), zap.Error(uerr))
		}
		events.PublishJobUpdatedEvent(job)
		return errs.InternalErrorf("failed to dispatch job %s: %v", job.ID, err)
	}

	events.PublishJobUpdatedEvent(job)
	return nil
}

// UpdateJob applies a status report. When an image job succeeds, the
// inspected CLIs it carries are stored before observers are told, so that
// routes rebuilt on completion see them.
func (s *jobService) UpdateJob(ctx context.Context, update entities.JobUpdate) (*entities.Job, error) {
	if update.JobID == "" {
		return nil, errs.ValidationErrorf("job id is required")
	}
	if update.Status != "" && !update.Status.Valid() {
		return nil, errs.ValidationErrorf("invalid job status %q", update.Status)
	}

	job, err := s.jobRepo.GetJob(ctx, update.JobID)
	if err != nil {
		return nil, err
	}
	if update.Status != "" && job.Status.Done() && update.Status != job.Status {
		return nil, errs.ValidationErrorf("job %s is already %s", job.ID, job.Status)
	}

	if update.Log != "" {
		job.Log = append(job.Log, update.Log)
	}

	completed := false
	if update.Status != "" && update.Status != job.Status {
		status := update.Status
		if status == entities.JobStatusSuccess && job.Type == entities.ImageJobType && len(update.Inspections) > 0 {
			job.Inspections = update.Inspections
			if !s.storeInspections(ctx, job) {
				status = entities.JobStatusError
			}
		}
		job.Status = status
		completed = status.Done()
	}
	job.UpdatedAt = time.Now()

	if err := s.jobRepo.UpdateJob(ctx, job); err != nil {
		return nil, err
	}
	events.PublishJobUpdatedEvent(job)

	if completed {
		s.logger.Info("Job completed", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.String("status", string(job.Status)))
		s.mu.RLock()
		observers := append([]interfaces.JobObserver(nil), s.observers...)
		s.mu.RUnlock()
		for _, o := range observers {
			o.OnJobCompleted(ctx, job.Type, job.Status)
		}
	}
	return job, nil
}

func (s *jobService) storeInspections(ctx context.Context, job *entities.Job) bool {
	folderID, _ := job.Kwargs["folder"].(string)
	ok := true
	for _, inspection := range job.Inspections {
		if _, err := s.registry.SaveImage(ctx, inspection, folderID, job.UserID); err != nil {
			s.logger.Error("Failed to store image", zap.String("job_id", job.ID), zap.String("image", inspection.Name), zap.Error(err))
			job.Log = append(job.Log, fmt.Sprintf("Failed to store image %s: %v", inspection.Name, err))
			ok = false
		}
	}
	return ok
}

func (s *jobService) GetJob(ctx context.Context, id string, user *entities.User) (*entities.Job, error) {
	if id == "" {
		return nil, errs.ValidationErrorf("job id is required")
	}
	job, err := s.jobRepo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Public || (user != nil && (user.Admin || user.ID == job.UserID)) {
		return job, nil
	}
	return nil, errs.AccessDeniedErrorf("read access denied for job %s", id)
}

func (s *jobService) ListJobs(ctx context.Context, filter interfaces.JobFilter) ([]*entities.Job, error) {
	return s.jobRepo.ListJobs(ctx, filter)
}

// CancelStaleJobs cancels jobs that have not finished and have not been
// updated within age.
func (s *jobService) CancelStaleJobs(ctx context.Context, age time.Duration) (int, error) {
	jobs, err := s.jobRepo.ListJobs(ctx, interfaces.JobFilter{
		Statuses:      []entities.JobStatus{entities.JobStatusInactive, entities.JobStatusQueued, entities.JobStatusRunning},
		UpdatedBefore: time.Now().Add(-age),
	})
	if err != nil {
		return 0, err
	}

	count := 0
	for _, job := range jobs {
		job.Status = entities.JobStatusCanceled
		job.Log = append(job.Log, staleJobLog)
		job.UpdatedAt = time.Now()
		if err := s.jobRepo.UpdateJob(ctx, job); err != nil {
			s.logger.Warn("Failed to cancel stale job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		count++
	}
	if count > 0 {
		s.logger.Info(fmt.Sprintf("Marking %d old job(s) as cancelled", count))
	}
	return count, nil
}

// HandleFileUploaded links a return parameter file to the job that wrote it.
// Files without a parameter output reference are ignored.
func (s *jobService) HandleFileUploaded(ctx context.Context, file *entities.File) error {
	if file.Reference == "" {
		return nil
	}
	var ref struct {
		Type  string `json:"type"`
		JobID string `json:"jobId"`
	}
	if err := json.Unmarshal([]byte(file.Reference), &ref); err != nil || ref.Type != entities.ParameterOutputReference {
		return nil
	}

	job, err := s.jobRepo.GetJob(ctx, ref.JobID)
	if err != nil {
		return err
	}
	job.Bindings.Outputs.Parameters = file.ID
	job.UpdatedAt = time.Now()
	if err := s.jobRepo.UpdateJob(ctx, job); err != nil {
		return err
	}
	s.logger.Debug("Linked parameter output to job", zap.String("job_id", job.ID), zap.String("file_id", file.ID))
	events.PublishJobUpdatedEvent(job)
	return nil
}

var _ JobService = &jobService{}
