package endpoints

import (
	"context"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

type mockImageRegistry struct {
	mock.Mock
}

func (m *mockImageRegistry) FindAllImages(ctx context.Context, user *entities.User) ([]*entities.DockerImage, error) {
	args := m.Called(ctx, user)
	return args.Get(0).([]*entities.DockerImage), args.Error(1)
}

func (m *mockImageRegistry) FindAllTools(ctx context.Context, user *entities.User) ([]*entities.CLIItem, error) {
	args := m.Called(ctx, user)
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.CLIItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRegistry) FindTool(ctx context.Context, id string, user *entities.User) (*entities.CLIItem, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.CLIItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRegistry) ImageCLIs(ctx context.Context, image *entities.DockerImage, user *entities.User) ([]*entities.CLIItem, error) {
	args := m.Called(ctx, image, user)
	return args.Get(0).([]*entities.CLIItem), args.Error(1)
}

func (m *mockImageRegistry) ListTools(ctx context.Context, baseFolderID string, user *entities.User) ([]*entities.CLIItem, error) {
	args := m.Called(ctx, baseFolderID, user)
	return args.Get(0).([]*entities.CLIItem), args.Error(1)
}

func (m *mockImageRegistry) RemoveImages(ctx context.Context, names []string, user *entities.User) ([]string, error) {
	args := m.Called(ctx, names, user)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockImageRegistry) RemoveTool(ctx context.Context, id string, user *entities.User) (*entities.CLIItem, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.CLIItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRegistry) SaveImage(ctx context.Context, inspection entities.ImageInspection, baseFolderID, creatorID string) (*entities.DockerImage, error) {
	args := m.Called(ctx, inspection, baseFolderID, creatorID)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.DockerImage), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBindingService struct {
	mock.Mock
}

func (m *mockBindingService) Bind(ctx context.Context, exe *entities.Executable, values map[string]string, user *entities.User, jobID string) (*entities.BoundTask, error) {
	args := m.Called(ctx, exe, values, user, jobID)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.BoundTask), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJobService struct {
	mock.Mock
}

func (m *mockJobService) CreateJob(ctx context.Context, job *entities.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockJobService) ScheduleJob(ctx context.Context, job *entities.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockJobService) UpdateJob(ctx context.Context, update entities.JobUpdate) (*entities.Job, error) {
	args := m.Called(ctx, update)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJobService) GetJob(ctx context.Context, id string, user *entities.User) (*entities.Job, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJobService) ListJobs(ctx context.Context, filter interfaces.JobFilter) ([]*entities.Job, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entities.Job), args.Error(1)
}

func (m *mockJobService) CancelStaleJobs(ctx context.Context, age time.Duration) (int, error) {
	args := m.Called(ctx, age)
	return args.Int(0), args.Error(1)
}

func (m *mockJobService) HandleFileUploaded(ctx context.Context, file *entities.File) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *mockJobService) AddObserver(observer interfaces.JobObserver) {
	m.Called(observer)
}
