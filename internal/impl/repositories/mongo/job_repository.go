package repositories_mongo

import (
	"context"

	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/errs"
	"github.com/drujensen/cliweb/internal/domain/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoJobRepository struct {
	collection *mongo.Collection
}

func NewMongoJobRepository(collection *mongo.Collection) *MongoJobRepository {
	return &MongoJobRepository{
		collection: collection,
	}
}

func (r *MongoJobRepository) ListJobs(ctx context.Context, filter interfaces.JobFilter) ([]*entities.Job, error) {
	return findAll[entities.Job](ctx, r.collection, jobQuery(filter), "jobs")
}

func (r *MongoJobRepository) GetJob(ctx context.Context, id string) (*entities.Job, error) {
	var job entities.Job
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFoundErrorf("job not found: %s", id)
	}
	if err != nil {
		return nil, errs.InternalErrorf("failed to get job: %v", err)
	}
	return &job, nil
}

func (r *MongoJobRepository) CreateJob(ctx context.Context, job *entities.Job) error {
	if _, err := r.collection.InsertOne(ctx, job); err != nil {
		return errs.InternalErrorf("failed to create job: %v", err)
	}
	return nil
}

// UpdateJob replaces the stored job document.
func (r *MongoJobRepository) UpdateJob(ctx context.Context, job *entities.Job) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": job.ID}, job)
	if err != nil {
		return errs.InternalErrorf("failed to update job: %v", err)
	}
	if result.MatchedCount == 0 {
		return errs.NotFoundErrorf("job not found: %s", job.ID)
	}
	return nil
}

var _ interfaces.JobRepository = (*MongoJobRepository)(nil)
