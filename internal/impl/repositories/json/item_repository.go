package repositories_json

import (
	"context"
	"slices"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
)

type JsonItemRepository struct {
	store *store[entities.Item]
}

func NewJSONItemRepository(dataDir string) (*JsonItemRepository, error) {
	s, err := newStore(dataDir, "items", func(i *entities.Item) string { return i.ID })
	if err != nil {
		return nil, err
	}
	return &JsonItemRepository{store: s}, nil
}

func (r *JsonItemRepository) ListItems(ctx context.Context, filter interfaces.ItemFilter) ([]*entities.Item, error) {
	return r.store.list(func(i *entities.Item) bool {
		if len(filter.FolderIDs) > 0 && !slices.Contains(filter.FolderIDs, i.FolderID) {
			return false
		}
		if filter.Name != "" && i.Name != filter.Name {
			return false
		}
		if filter.MetaKey != "" && !metaSet(i.Meta, filter.MetaKey) {
			return false
		}
		return true
	})
}

func (r *JsonItemRepository) GetItem(ctx context.Context, id string) (*entities.Item, error) {
	return r.store.get(id)
}

func (r *JsonItemRepository) CreateItem(ctx context.Context, item *entities.Item) error {
	return r.store.create(item)
}

func (r *JsonItemRepository) UpdateItem(ctx context.Context, item *entities.Item) error {
	return r.store.update(item)
}

func (r *JsonItemRepository) DeleteItem(ctx context.Context, id string) error {
	return r.store.delete(id)
}

var _ interfaces.ItemRepository = (*JsonItemRepository)(nil)
