// Package database manages the MongoDB connection backing the folder, item,
// file and job collections.
package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	FoldersCollection = "folders"
	ItemsCollection   = "items"
	FilesCollection   = "files"
	JobsCollection    = "jobs"
)

// MongoDB holds the client and the database handle shared by the repositories.
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *zap.Logger
}

// NewMongoDB connects to uri and pings the server. Connecting and pinging
// share a 10 second timeout.
func NewMongoDB(uri string, dbName string, logger *zap.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("Failed to connect to MongoDB", zap.Error(err))
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Error("Failed to ping MongoDB", zap.Error(err))
		return nil, err
	}

	logger.Info("Successfully connected to MongoDB", zap.String("database", dbName))
	return &MongoDB{
		client:   client,
		database: client.Database(dbName),
		logger:   logger,
	}, nil
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// indexes lists the lookups the repositories filter on.
var indexes = map[string][]bson.D{
	FoldersCollection: {
		{{Key: "parent_id", Value: 1}, {Key: "name", Value: 1}},
		{{Key: "meta.isSlicerCLIImage", Value: 1}},
	},
	ItemsCollection: {
		{{Key: "folder_id", Value: 1}, {Key: "name", Value: 1}},
	},
	FilesCollection: {
		{{Key: "item_id", Value: 1}},
	},
	JobsCollection: {
		{{Key: "status", Value: 1}, {Key: "updated_at", Value: 1}},
		{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
	},
}

// EnsureIndexes creates the indexes of every collection. Existing indexes
// are left untouched.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	for name, keys := range indexes {
		models := make([]mongo.IndexModel, 0, len(keys))
		for _, k := range keys {
			models = append(models, mongo.IndexModel{Keys: k})
		}
		if _, err := m.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			m.logger.Error("Failed to create indexes", zap.String("collection", name), zap.Error(err))
			return err
		}
	}
	return nil
}

func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
