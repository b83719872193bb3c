package endpoints

import (
	"context"
	"fmt"
	"net/http"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/impl/clispec"

	"github.com/go-openapi/spec"
	"go.uber.org/zap"
)

// HandlerDescriptor is everything needed to expose one CLI: the documented
// run operation, the run handler and the schema retrieval handler.
type HandlerDescriptor struct {
	Tool       *entities.CLIItem
	Executable *entities.Executable
	Operation  *spec.Operation
	Run        Handler
	XMLSpec    Handler
}

// BuildHandler compiles the tool's schema and builds its handlers. Schema
// errors, including indexed outputs that are not storage-backed, are
// returned so that the tool can be skipped.
func (s *Synthesizer) BuildHandler(tool *entities.CLIItem) (*HandlerDescriptor, error) {
	exe, err := clispec.Compile(tool.XML, clispec.FormatXML)
	if err != nil {
		return nil, err
	}
	op, err := clispec.Describe(exe, "run_"+tool.ID)
	if err != nil {
		return nil, err
	}
	op.WithTags(tool.Image)

	toolID := tool.ID
	xml := tool.XML
	return &HandlerDescriptor{
		Tool:       tool,
		Executable: exe,
		Operation:  op,
		Run: func(ctx context.Context, req Request) (*Response, error) {
			return s.run(ctx, toolID, exe, req)
		},
		XMLSpec: func(ctx context.Context, req Request) (*Response, error) {
			return &Response{Status: http.StatusOK, ContentType: "application/xml", Body: xml}, nil
		},
	}, nil
}

// run binds the request to the CLI and submits the job. The tool is looked
// up again with the caller's identity so access follows the stored item.
func (s *Synthesizer) run(ctx context.Context, toolID string, exe *entities.Executable, req Request) (*Response, error) {
	if req.User == nil {
		return nil, errs.AccessDeniedErrorf("You must be logged in.")
	}
	tool, err := s.registry.FindTool(ctx, toolID, req.User)
	if err != nil {
		switch err.(type) {
		case *errs.NotFoundError, *errs.AccessDeniedError:
			return nil, &errs.InvalidReferenceError{Kind: "CLI Item", ID: toolID}
		}
		return nil, err
	}

	job := entities.NewJob(exe.Title, tool.JobType(), req.User.ID)
	bound, err := s.binder.Bind(ctx, exe, req.Values, req.User, job.ID)
	if err != nil {
		return nil, err
	}

	if bound.PrimaryInputName != "" {
		job.Title = fmt.Sprintf("%s on %s", exe.Title, bound.PrimaryInputName)
	}
	job.Image = tool.RunImage()
	job.PullImage = entities.PullImageIfNotPresent
	job.ContainerArgs = append([]entities.ContainerArg{entities.LiteralArg(tool.Name)}, bound.ContainerArgs...)
	job.ResultHooks = bound.ResultHooks

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	if err := s.jobs.ScheduleJob(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info("CLI job submitted",
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.String("title", job.Title))
	return &Response{Status: http.StatusOK, Body: job}, nil
}
