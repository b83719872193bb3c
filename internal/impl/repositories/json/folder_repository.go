package repositories_json

import (
	"context"
	"slices"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
)

type JsonFolderRepository struct {
	store *store[entities.Folder]
}

func NewJSONFolderRepository(dataDir string) (*JsonFolderRepository, error) {
	s, err := newStore(dataDir, "folders", func(f *entities.Folder) string { return f.ID })
	if err != nil {
		return nil, err
	}
	return &JsonFolderRepository{store: s}, nil
}

// metaSet reports whether key is present in meta with a value other than false.
func metaSet(meta map[string]any, key string) bool {
	v, ok := meta[key]
	if !ok || v == nil {
		return false
	}
	b, isBool := v.(bool)
	return !isBool || b
}

func (r *JsonFolderRepository) ListFolders(ctx context.Context, filter interfaces.FolderFilter) ([]*entities.Folder, error) {
	return r.store.list(func(f *entities.Folder) bool {
		if filter.ParentID != "" && f.ParentID != filter.ParentID {
			return false
		}
		if len(filter.Names) > 0 && !slices.Contains(filter.Names, f.Name) {
			return false
		}
		if filter.MetaKey != "" && !metaSet(f.Meta, filter.MetaKey) {
			return false
		}
		return true
	})
}

func (r *JsonFolderRepository) GetFolder(ctx context.Context, id string) (*entities.Folder, error) {
	return r.store.get(id)
}

func (r *JsonFolderRepository) CreateFolder(ctx context.Context, folder *entities.Folder) error {
	return r.store.create(folder)
}

func (r *JsonFolderRepository) UpdateFolder(ctx context.Context, folder *entities.Folder) error {
	return r.store.update(folder)
}

func (r *JsonFolderRepository) DeleteFolder(ctx context.Context, id string) error {
	return r.store.delete(id)
}

var _ interfaces.FolderRepository = (*JsonFolderRepository)(nil)
