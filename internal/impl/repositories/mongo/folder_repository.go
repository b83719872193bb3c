package repositories_mongo

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoFolderRepository struct {
	collection *mongo.Collection
}

func NewMongoFolderRepository(collection *mongo.Collection) *MongoFolderRepository {
	return &MongoFolderRepository{
		collection: collection,
	}
}

func (r *MongoFolderRepository) ListFolders(ctx context.Context, filter interfaces.FolderFilter) ([]*entities.Folder, error) {
	return findAll[entities.Folder](ctx, r.collection, folderQuery(filter), "folders")
}

func (r *MongoFolderRepository) GetFolder(ctx context.Context, id string) (*entities.Folder, error) {
	var folder entities.Folder
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&folder)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFoundErrorf("folder not found: %s", id)
	}
	if err != nil {
		return nil, errs.InternalErrorf("failed to get folder: %v", err)
	}
	return &folder, nil
}

func (r *MongoFolderRepository) CreateFolder(ctx context.Context, folder *entities.Folder) error {
	if _, err := r.collection.InsertOne(ctx, folder); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.DuplicateErrorf("folder already exists: %s", folder.ID)
		}
		return errs.InternalErrorf("failed to create folder: %v", err)
	}
	return nil
}

func (r *MongoFolderRepository) UpdateFolder(ctx context.Context, folder *entities.Folder) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": folder.ID}, folder)
	if err != nil {
		return errs.InternalErrorf("failed to update folder: %v", err)
	}
	if result.MatchedCount == 0 {
		return errs.NotFoundErrorf("folder not found: %s", folder.ID)
	}
	return nil
}

func (r *MongoFolderRepository) DeleteFolder(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.InternalErrorf("failed to delete folder: %v", err)
	}
	if result.DeletedCount == 0 {
		return errs.NotFoundErrorf("folder not found: %s", id)
	}
	return nil
}

var _ interfaces.FolderRepository = (*MongoFolderRepository)(nil)
