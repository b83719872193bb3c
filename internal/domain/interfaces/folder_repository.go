package interfaces

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
)

// FolderFilter selects folders. Empty fields do not constrain the result.
type FolderFilter struct {
	ParentID string
	Names    []string
	MetaKey  string
}

type FolderRepository interface {
	CreateFolder(ctx context.Context, folder *entities.Folder) error
	UpdateFolder(ctx context.Context, folder *entities.Folder) error
	DeleteFolder(ctx context.Context, id string) error
	GetFolder(ctx context.Context, id string) (*entities.Folder, error)
	ListFolders(ctx context.Context, filter FolderFilter) ([]*entities.Folder, error)
}
