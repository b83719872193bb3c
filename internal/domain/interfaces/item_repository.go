package interfaces

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
)

type ItemFilter struct {
	FolderIDs []string
	Name      string
	MetaKey   string
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *entities.Item) error
	UpdateItem(ctx context.Context, item *entities.Item) error
	DeleteItem(ctx context.Context, id string) error
	GetItem(ctx context.Context, id string) (*entities.Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]*entities.Item, error)
}
