package services

import (
	"context"
	"io"
	"time"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/events"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// StorageService is the folder/item/file store with per-user access checks.
// A nil user is anonymous and only sees public folders.
type StorageService interface {
	LoadFolder(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.Folder, error)
	LoadItem(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.Item, error)
	LoadFile(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.File, error)
	FolderAccess(folder *entities.Folder, user *entities.User) entities.AccessLevel
	CreateFolder(ctx context.Context, name, description, parentID string, public bool, user *entities.User) (*entities.Folder, error)
	UploadFile(ctx context.Context, upload FileUpload, user *entities.User) (*entities.File, error)
	CreateLinkFile(ctx context.Context, item *entities.Item, name, url, creatorID string) (*entities.File, error)
	DownloadFile(ctx context.Context, id string, user *entities.User) (*entities.File, io.ReadCloser, error)
}

// FileUpload describes content to store as a new item in a folder.
type FileUpload struct {
	FolderID    string
	Name        string
	ContentType string
	Size        int64
	Reference   string
	Content     io.Reader
}

type storageService struct {
	folderRepo interfaces.FolderRepository
	itemRepo   interfaces.ItemRepository
	fileRepo   interfaces.FileRepository
	blobs      interfaces.BlobStore
	logger     *zap.Logger
}

func NewStorageService(folderRepo interfaces.FolderRepository, itemRepo interfaces.ItemRepository,
	fileRepo interfaces.FileRepository, blobs interfaces.BlobStore, logger *zap.Logger) *storageService {
	return &storageService{
		folderRepo: folderRepo,
		itemRepo:   itemRepo,
		fileRepo:   fileRepo,
		blobs:      blobs,
		logger:     logger,
	}
}

func (s *storageService) FolderAccess(folder *entities.Folder, user *entities.User) entities.AccessLevel {
	level := entities.AccessNone
	if user != nil {
		if user.Admin || folder.CreatorID == user.ID {
			return entities.AccessAdmin
		}
		if granted, ok := folder.Access[user.ID]; ok {
			level = granted
		}
	}
	if folder.Public && level < entities.AccessRead {
		level = entities.AccessRead
	}
	return level
}

func (s *storageService) LoadFolder(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.Folder, error) {
	if id == "" {
		return nil, errs.ValidationErrorf("folder id is required")
	}
	folder, err := s.folderRepo.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.FolderAccess(folder, user) < level {
		return nil, errs.AccessDeniedErrorf("%s access denied for folder %s", level, id)
	}
	return folder, nil
}

func (s *storageService) LoadItem(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.Item, error) {
	if id == "" {
		return nil, errs.ValidationErrorf("item id is required")
	}
	item, err := s.itemRepo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.LoadFolder(ctx, item.FolderID, user, level); err != nil {
		if _, ok := err.(*errs.AccessDeniedError); ok {
			return nil, errs.AccessDeniedErrorf("%s access denied for item %s", level, id)
		}
		return nil, err
	}
	return item, nil
}

func (s *storageService) LoadFile(ctx context.Context, id string, user *entities.User, level entities.AccessLevel) (*entities.File, error) {
	if id == "" {
		return nil, errs.ValidationErrorf("file id is required")
	}
	file, err := s.fileRepo.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.LoadItem(ctx, file.ItemID, user, level); err != nil {
		if _, ok := err.(*errs.AccessDeniedError); ok {
			return nil, errs.AccessDeniedErrorf("%s access denied for file %s", level, id)
		}
		return nil, err
	}
	return file, nil
}

// CreateFolder creates a folder, inheriting access from its parent. A
// folder of the same name already present under the parent is reused.
func (s *storageService) CreateFolder(ctx context.Context, name, description, parentID string, public bool, user *entities.User) (*entities.Folder, error) {
	if user == nil {
		return nil, errs.AccessDeniedErrorf("you must be logged in to create folders")
	}
	if name == "" {
		return nil, errs.ValidationErrorf("folder name is required")
	}

	folder := entities.NewFolder(name, description, parentID, user.ID)
	folder.Public = public
	if parentID != "" {
		parent, err := s.LoadFolder(ctx, parentID, user, entities.AccessWrite)
		if err != nil {
			return nil, err
		}
		existing, err := s.folderRepo.ListFolders(ctx, interfaces.FolderFilter{ParentID: parentID, Names: []string{name}})
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return existing[0], nil
		}
		folder.Public = parent.Public
		for k, v := range parent.Access {
			folder.Access[k] = v
		}
	}

	if err := s.folderRepo.CreateFolder(ctx, folder); err != nil {
		return nil, err
	}
	s.logger.Info("Folder created", zap.String("folder_id", folder.ID), zap.String("name", name))
	return folder, nil
}

func (s *storageService) UploadFile(ctx context.Context, upload FileUpload, user *entities.User) (*entities.File, error) {
	if user == nil {
		return nil, errs.AccessDeniedErrorf("you must be logged in to upload files")
	}
	if upload.Name == "" {
		return nil, errs.ValidationErrorf("file name is required")
	}
	folder, err := s.LoadFolder(ctx, upload.FolderID, user, entities.AccessWrite)
	if err != nil {
		return nil, err
	}

	item := entities.NewItem(upload.Name, "", folder.ID, user.ID)
	if err := s.itemRepo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	file := entities.NewFile(upload.Name, item.ID, user.ID)
	file.MimeType = upload.ContentType
	file.Size = upload.Size
	file.Reference = upload.Reference
	if err := s.blobs.Put(ctx, file.ID, upload.Content, upload.Size, upload.ContentType); err != nil {
		return nil, errs.InternalErrorf("failed to store file content: %v", err)
	}
	if err := s.fileRepo.CreateFile(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("File uploaded",
		zap.String("file_id", file.ID),
		zap.String("folder_id", folder.ID),
		zap.String("name", file.Name),
		zap.String("size", humanize.Bytes(uint64(max(file.Size, 0)))))

	events.PublishFileUploadedEvent(file)
	return file, nil
}

// CreateLinkFile attaches a file pointing at url to the item, replacing a
// link of the same name that points elsewhere.
func (s *storageService) CreateLinkFile(ctx context.Context, item *entities.Item, name, url, creatorID string) (*entities.File, error) {
	files, err := s.fileRepo.ListFiles(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.Name != name {
			continue
		}
		if f.LinkURL == url {
			return f, nil
		}
		if err := s.fileRepo.DeleteFile(ctx, f.ID); err != nil {
			return nil, err
		}
	}

	file := entities.NewFile(name, item.ID, creatorID)
	file.LinkURL = url
	file.CreatedAt = time.Now()
	if err := s.fileRepo.CreateFile(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

func (s *storageService) DownloadFile(ctx context.Context, id string, user *entities.User) (*entities.File, io.ReadCloser, error) {
	file, err := s.LoadFile(ctx, id, user, entities.AccessRead)
	if err != nil {
		return nil, nil, err
	}
	if file.LinkURL != "" {
		return file, nil, nil
	}
	r, err := s.blobs.Get(ctx, file.ID)
	if err != nil {
		return nil, nil, errs.InternalErrorf("failed to read file content: %v", err)
	}
	s.logger.Debug("File download", zap.String("file_id", id), zap.String("size", humanize.Bytes(uint64(max(file.Size, 0)))))
	return file, r, nil
}

var _ StorageService = &storageService{}
