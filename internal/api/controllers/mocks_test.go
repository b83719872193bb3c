package apicontrollers

import (
	"context"
	"io"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
	"github.com/drujensen/cliweb/internal/domain/services"

	"github.com/stretchr/testify/mock"
)

type mockDockerImageService struct {
	mock.Mock
}

func (m *mockDockerImageService) ParseImageNameList(raw string) ([]string, error) {
	args := m.Called(raw)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDockerImageService) AddImages(ctx context.Context, names []string, folderID string, user *entities.User) (*entities.Job, error) {
	args := m.Called(ctx, names, folderID, user)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDockerImageService) DeleteImages(ctx context.Context, names []string, deleteFromLocal bool, user *entities.User) (*entities.Job, error) {
	args := m.Called(ctx, names, deleteFromLocal, user)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDockerImageService) ListImages(ctx context.Context, user *entities.User) (entities.ImageListing, error) {
	args := m.Called(ctx, user)
	if args.Get(0) != nil {
		return args.Get(0).(entities.ImageListing), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJobQueue struct {
	mock.Mock
}

func (m *mockJobQueue) Next(ctx context.Context) (string, bool) {
	args := m.Called(ctx)
	return args.String(0), args.Bool(1)
}

type mockEndpointRegistry struct {
	mock.Mock
}

func (m *mockEndpointRegistry) RetractRoutes(ctx context.Context, imageName string) {
	m.Called(ctx, imageName)
}

func (m *mockEndpointRegistry) RetractTool(ctx context.Context, toolID string) {
	m.Called(ctx, toolID)
}

func (m *mockEndpointRegistry) Endpoints() map[string]entities.EndpointInfo {
	args := m.Called()
	return args.Get(0).(map[string]entities.EndpointInfo)
}

type mockStorageService struct {
	mock.Mock
}

func (m *mockStorageService) LoadFolder(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.Folder, error) {
	args := m.Called(ctx, id, user, level)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorageService) LoadItem(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.Item, error) {
	args := m.Called(ctx, id, user, level)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorageService) LoadFile(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.File, error) {
	args := m.Called(ctx, id, user, level)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorageService) FolderAccess(folder *entities.Folder, user *entities.User) entities.AccessLevel {
	args := m.Called(folder, user)
	return args.Get(0).(entities.AccessLevel)
}

func (m *mockStorageService) CreateFolder(ctx context.Context, name, description, parentID string, public bool, user *entities.User) (*entities.Folder, error) {
	args := m.Called(ctx, name, description, parentID, public, user)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorageService) UploadFile(ctx context.Context, upload services.FileUpload, user *entities.User) (*entities.File, error) {
	args := m.Called(ctx, upload, user)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorageService) CreateLinkFile(ctx context.Context, item *entities.Item, name, url, creatorID string) (*entities.File, error) {
	args := m.Called(ctx, item, name, url, creatorID)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStorageService) DownloadFile(ctx context.Context, id string, user *entities.User) (*entities.File, io.ReadCloser, error) {
	args := m.Called(ctx, id, user)
	var file *entities.File
	if args.Get(0) != nil {
		file = args.Get(0).(*entities.File)
	}
	var r io.ReadCloser
	if args.Get(1) != nil {
		r = args.Get(1).(io.ReadCloser)
	}
	return file, r, args.Error(2)
}

type mockImageRegistry struct {
	mock.Mock
}

func (m *mockImageRegistry) FindAllImages(ctx context.Context, user *entities.User) ([]*entities.DockerImage, error) {
	args := m.Called(ctx, user)
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.DockerImage), args.Error(1)
	}
	return nil, args.Error(1)
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
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.CLIItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRegistry) ListTools(ctx context.Context, baseFolderID string, user *entities.User) ([]*entities.CLIItem, error) {
	args := m.Called(ctx, baseFolderID, user)
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.CLIItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockImageRegistry) RemoveImages(ctx context.Context, names []string, user *entities.User) ([]string, error) {
	args := m.Called(ctx, names, user)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
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
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.Job), args.Error(1)
	}
	return nil, args.Error(1)
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

var (
	_ services.DockerImageService = &mockDockerImageService{}
	_ services.ImageRegistry      = &mockImageRegistry{}
	_ services.StorageService     = &mockStorageService{}
	_ services.JobService         = &mockJobService{}
	_ interfaces.EndpointRegistry = &mockEndpointRegistry{}
	_ interfaces.JobQueue         = &mockJobQueue{}
)
