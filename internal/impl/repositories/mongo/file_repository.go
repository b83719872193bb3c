package repositories_mongo

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoFileRepository struct {
	collection *mongo.Collection
}

func NewMongoFileRepository(collection *mongo.Collection) *MongoFileRepository {
	return &MongoFileRepository{
		collection: collection,
	}
}

func (r *MongoFileRepository) ListFiles(ctx context.Context, itemID string) ([]*entities.File, error) {
	return findAll[entities.File](ctx, r.collection, bson.M{"item_id": itemID}, "files")
}

func (r *MongoFileRepository) GetFile(ctx context.Context, id string) (*entities.File, error) {
	var file entities.File
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFoundErrorf("file not found: %s", id)
	}
	if err != nil {
		return nil, errs.InternalErrorf("failed to get file: %v", err)
	}
	return &file, nil
}

func (r *MongoFileRepository) CreateFile(ctx context.Context, file *entities.File) error {
	if _, err := r.collection.InsertOne(ctx, file); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.DuplicateErrorf("file already exists: %s", file.ID)
		}
		return errs.InternalErrorf("failed to create file: %v", err)
	}
	return nil
}

func (r *MongoFileRepository) DeleteFile(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.InternalErrorf("failed to delete file: %v", err)
	}
	if result.DeletedCount == 0 {
		return errs.NotFoundErrorf("file not found: %s", id)
	}
	return nil
}

var _ interfaces.FileRepository = (*MongoFileRepository)(nil)
