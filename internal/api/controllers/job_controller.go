package apicontrollers

import (
	"net/http"
	"strings"

	"github.com/drujensen/cliweb/internal/api/auth"
	"github.com/drujensen/cliweb/internal/api/websocket"
	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
	"github.com/drujensen/cliweb/internal/domain/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type JobController struct {
	logger     *zap.Logger
	jobService services.JobService
	queue      interfaces.JobQueue
	hub        *websocket.JobHub
}

// NewJobController creates the job routes. queue is nil when jobs are
// dispatched to an external queue, in which case workers cannot claim
// jobs over HTTP.
func NewJobController(logger *zap.Logger, jobService services.JobService, queue interfaces.JobQueue, hub *websocket.JobHub) *JobController {
	return &JobController{
		logger:     logger,
		jobService: jobService,
		queue:      queue,
		hub:        hub,
	}
}

// RegisterRoutes registers the job routes with Echo
func (c *JobController) RegisterRoutes(e *echo.Group) {
	e.GET("/job", c.ListJobs)
	e.GET("/job/ws", c.Watch)
	e.POST("/job/claim", c.ClaimJob)
	e.GET("/job/:id", c.GetJob)
	e.PUT("/job/:id", c.UpdateJob)
}

// ListJobs returns the caller's jobs, or every job for administrators.
// The status and type query parameters take comma separated lists.
func (c *JobController) ListJobs(ctx echo.Context) error {
	user := auth.User(ctx)
	if err := requireUser(user); err != nil {
		return c.handleError(ctx, err)
	}

	filter := interfaces.JobFilter{}
	if !user.Admin {
		filter.UserID = user.ID
	}
	for _, status := range splitList(ctx.QueryParam("status")) {
		s := entities.JobStatus(status)
		if !s.Valid() {
			return c.handleError(ctx, errs.ValidationErrorf("invalid job status: %s", status))
		}
		filter.Statuses = append(filter.Statuses, s)
	}
	filter.Types = splitList(ctx.QueryParam("type"))

	jobs, err := c.jobService.ListJobs(ctx.Request().Context(), filter)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, jobs)
}

func (c *JobController) GetJob(ctx echo.Context) error {
	job, err := c.jobService.GetJob(ctx.Request().Context(), ctx.Param("id"), auth.User(ctx))
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, job)
}

// UpdateJob applies a worker's status report.
func (c *JobController) UpdateJob(ctx echo.Context) error {
	if err := requireAdmin(auth.User(ctx)); err != nil {
		return c.handleError(ctx, err)
	}

	var update entities.JobUpdate
	if err := ctx.Bind(&update); err != nil {
		return c.handleError(ctx, errs.ValidationErrorf("Invalid request body"))
	}
	update.JobID = ctx.Param("id")

	job, err := c.jobService.UpdateJob(ctx.Request().Context(), update)
	if err != nil {
		return c.handleError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, job)
}

// ClaimJob hands the oldest pending job to the calling worker. It answers
// 204 when nothing is pending.
func (c *JobController) ClaimJob(ctx echo.Context) error {
	user := auth.User(ctx)
	if err := requireAdmin(user); err != nil {
		return c.handleError(ctx, err)
	}
	if c.queue == nil {
		return c.handleError(ctx, errs.NotFoundErrorf("jobs are dispatched to an external queue"))
	}

	id, ok := c.queue.Next(ctx.Request().Context())
	if !ok {
		return ctx.NoContent(http.StatusNoContent)
	}
	job, err := c.jobService.GetJob(ctx.Request().Context(), id, user)
	if err != nil {
		return c.handleError(ctx, err)
	}
	c.logger.Info("Job claimed", zap.String("job_id", job.ID), zap.String("worker", user.Login))
	return ctx.JSON(http.StatusOK, job)
}

// Watch streams job status changes over a websocket.
func (c *JobController) Watch(ctx echo.Context) error {
	return c.hub.Serve(ctx.Response(), ctx.Request(), auth.User(ctx))
}

func (c *JobController) handleError(ctx echo.Context, err error) error {
	return WriteError(ctx, c.logger, err)
}

func splitList(raw string) []string {
	var values []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
