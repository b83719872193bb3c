package entities

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusInactive JobStatus = "inactive"
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusSuccess  JobStatus = "success"
	JobStatusError    JobStatus = "error"
	JobStatusCanceled JobStatus = "canceled"
)

func (s JobStatus) Valid() bool {
	return slices.Contains([]JobStatus{JobStatusInactive, JobStatusQueued, JobStatusRunning,
		JobStatusSuccess, JobStatusError, JobStatusCanceled}, s)
}

func (s JobStatus) Done() bool {
	return s == JobStatusSuccess || s == JobStatusError || s == JobStatusCanceled
}

const (
	// ImageJobType tags jobs that pull, inspect or delete container images.
	ImageJobType = "slicer_cli_web_job"

	PullImageIfNotPresent = "if-not-present"

	ParameterOutputReference = "slicer_cli.parameteroutput"
)

type JobBindings struct {
	Outputs struct {
		Parameters string `json:"parameters,omitempty" bson:"parameters,omitempty"`
	} `json:"outputs" bson:"outputs"`
}

type Job struct {
	ID            string            `json:"_id" bson:"_id"`
	Title         string            `json:"title" bson:"title"`
	Type          string            `json:"type" bson:"type"`
	UserID        string            `json:"userId" bson:"user_id"`
	Public        bool              `json:"public" bson:"public"`
	Status        JobStatus         `json:"status" bson:"status"`
	Image         string            `json:"image,omitempty" bson:"image,omitempty"`
	PullImage     string            `json:"pull_image,omitempty" bson:"pull_image,omitempty"`
	ContainerArgs []ContainerArg    `json:"container_args,omitempty" bson:"container_args,omitempty"`
	ResultHooks   []ResultHook      `json:"result_hooks,omitempty" bson:"result_hooks,omitempty"`
	Kwargs        map[string]any    `json:"kwargs,omitempty" bson:"kwargs,omitempty"`
	Inspections   []ImageInspection `json:"inspections,omitempty" bson:"inspections,omitempty"`
	Bindings      JobBindings       `json:"slicerCLIBindings" bson:"bindings"`
	Log           []string          `json:"log" bson:"log"`
	CreatedAt     time.Time         `json:"created" bson:"created_at"`
	UpdatedAt     time.Time         `json:"updated" bson:"updated_at"`
}

func NewJob(title, jobType, userID string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		Title:     title,
		Type:      jobType,
		UserID:    userID,
		Status:    JobStatusInactive,
		Kwargs:    map[string]any{},
		Log:       []string{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// JobUpdate is a status report from whatever executes the job.
type JobUpdate struct {
	JobID       string            `json:"jobId"`
	Status      JobStatus         `json:"status,omitempty"`
	Log         string            `json:"log,omitempty"`
	Inspections []ImageInspection `json:"inspections,omitempty"`
}
