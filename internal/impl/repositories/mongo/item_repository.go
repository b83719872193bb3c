package repositories_mongo

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoItemRepository struct {
	collection *mongo.Collection
}

func NewMongoItemRepository(collection *mongo.Collection) *MongoItemRepository {
	return &MongoItemRepository{
		collection: collection,
	}
}

func (r *MongoItemRepository) ListItems(ctx context.Context, filter interfaces.ItemFilter) ([]*entities.Item, error) {
	return findAll[entities.Item](ctx, r.collection, itemQuery(filter), "items")
}

func (r *MongoItemRepository) GetItem(ctx context.Context, id string) (*entities.Item, error) {
	var item entities.Item
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFoundErrorf("item not found: %s", id)
	}
	if err != nil {
		return nil, errs.InternalErrorf("failed to get item: %v", err)
	}
	return &item, nil
}

func (r *MongoItemRepository) CreateItem(ctx context.Context, item *entities.Item) error {
	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.DuplicateErrorf("item already exists: %s", item.ID)
		}
		return errs.InternalErrorf("failed to create item: %v", err)
	}
	return nil
}

func (r *MongoItemRepository) UpdateItem(ctx context.Context, item *entities.Item) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return errs.InternalErrorf("failed to update item: %v", err)
	}
	if result.MatchedCount == 0 {
		return errs.NotFoundErrorf("item not found: %s", item.ID)
	}
	return nil
}

func (r *MongoItemRepository) DeleteItem(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.InternalErrorf("failed to delete item: %v", err)
	}
	if result.DeletedCount == 0 {
		return errs.NotFoundErrorf("item not found: %s", id)
	}
	return nil
}

var _ interfaces.ItemRepository = (*MongoItemRepository)(nil)
