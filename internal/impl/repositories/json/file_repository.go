package repositories_json

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
)

type JsonFileRepository struct {
	store *store[entities.File]
}

func NewJSONFileRepository(dataDir string) (*JsonFileRepository, error) {
	s, err := newStore(dataDir, "files", func(f *entities.File) string { return f.ID })
	if err != nil {
		return nil, err
	}
	return &JsonFileRepository{store: s}, nil
}

func (r *JsonFileRepository) ListFiles(ctx context.Context, itemID string) ([]*entities.File, error) {
	return r.store.list(func(f *entities.File) bool { return f.ItemID == itemID })
}

func (r *JsonFileRepository) GetFile(ctx context.Context, id string) (*entities.File, error) {
	return r.store.get(id)
}

func (r *JsonFileRepository) CreateFile(ctx context.Context, file *entities.File) error {
	return r.store.create(file)
}

func (r *JsonFileRepository) DeleteFile(ctx context.Context, id string) error {
	return r.store.delete(id)
}

var _ interfaces.FileRepository = (*JsonFileRepository)(nil)
