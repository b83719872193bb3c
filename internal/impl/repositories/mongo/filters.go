package repositories_mongo

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// metaSet is the condition on a meta value that is present and not false.
func metaSet() bson.M {
	return bson.M{"$exists": true, "$nin": bson.A{false, nil}}
}

func folderQuery(filter interfaces.FolderFilter) bson.M {
	query := bson.M{}
	if filter.ParentID != "" {
		query["parent_id"] = filter.ParentID
	}
	if len(filter.Names) > 0 {
		query["name"] = bson.M{"$in": filter.Names}
	}
	if filter.MetaKey != "" {
		query["meta."+filter.MetaKey] = metaSet()
	}
	return query
}

func itemQuery(filter interfaces.ItemFilter) bson.M {
	query := bson.M{}
	if len(filter.FolderIDs) > 0 {
		query["folder_id"] = bson.M{"$in": filter.FolderIDs}
	}
	if filter.Name != "" {
		query["name"] = filter.Name
	}
	if filter.MetaKey != "" {
		query["meta."+filter.MetaKey] = metaSet()
	}
	return query
}

func jobQuery(filter interfaces.JobFilter) bson.M {
	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}
	if len(filter.Types) > 0 {
		query["type"] = bson.M{"$in": filter.Types}
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}
	if !filter.UpdatedBefore.IsZero() {
		query["updated_at"] = bson.M{"$lt": filter.UpdatedBefore}
	}
	return query
}

func findAll[T any](ctx context.Context, collection *mongo.Collection, query bson.M, name string) ([]*T, error) {
	cursor, err := collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, errs.InternalErrorf("failed to list %s: %v", name, err)
	}
	defer cursor.Close(ctx)

	records := []*T{}
	for cursor.Next(ctx) {
		var record T
		if err := cursor.Decode(&record); err != nil {
			return nil, errs.InternalErrorf("failed to decode %s: %v", name, err)
		}
		records = append(records, &record)
	}
	if err := cursor.Err(); err != nil {
		return nil, errs.InternalErrorf("failed to list %s: %v", name, err)
	}
	return records, nil
}
