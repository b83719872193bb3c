package services

import (
	"context"
	"io"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

type mockFolderRepository struct {
	mock.Mock
}

func (m *mockFolderRepository) CreateFolder(ctx context.Context, folder *entities.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockFolderRepository) UpdateFolder(ctx context.Context, folder *entities.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockFolderRepository) DeleteFolder(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockFolderRepository) GetFolder(ctx context.Context, id string) (*entities.Folder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFolderRepository) ListFolders(ctx context.Context, filter interfaces.FolderFilter) ([]*entities.Folder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) CreateItem(ctx context.Context, item *entities.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) UpdateItem(ctx context.Context, item *entities.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) DeleteItem(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockItemRepository) GetItem(ctx context.Context, id string) (*entities.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepository) ListItems(ctx context.Context, filter interfaces.ItemFilter) ([]*entities.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.Item), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFileRepository struct {
	mock.Mock
}

func (m *mockFileRepository) CreateFile(ctx context.Context, file *entities.File) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *mockFileRepository) DeleteFile(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockFileRepository) GetFile(ctx context.Context, id string) (*entities.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.File), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepository) ListFiles(ctx context.Context, itemID string) ([]*entities.File, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.File), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockJobRepository struct {
	mock.Mock
}

func (m *mockJobRepository) CreateJob(ctx context.Context, job *entities.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockJobRepository) UpdateJob(ctx context.Context, job *entities.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockJobRepository) GetJob(ctx context.Context, id string) (*entities.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*entities.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJobRepository) ListJobs(ctx context.Context, filter interfaces.JobFilter) ([]*entities.Job, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) != nil {
		return args.Get(0).([]*entities.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBlobStore struct {
	mock.Mock
}

func (m *mockBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, r, size, contentType)
	return args.Error(0)
}

func (m *mockBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) != nil {
		return args.Get(0).(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, job *entities.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) OnJobCompleted(ctx context.Context, jobType string, status entities.JobStatus) {
	m.Called(ctx, jobType, status)
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

func (m *mockStorageService) UploadFile(ctx context.Context, upload FileUpload, user *entities.User) (*entities.File, error) {
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
