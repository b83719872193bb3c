package interfaces

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
)

type FileRepository interface {
	CreateFile(ctx context.Context, file *entities.File) error
	DeleteFile(ctx context.Context, id string) error
	GetFile(ctx context.Context, id string) (*entities.File, error)
	ListFiles(ctx context.Context, itemID string) ([]*entities.File, error)
}
