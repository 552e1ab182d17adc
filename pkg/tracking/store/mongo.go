package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// mongoCollection is the collection holding run records.
const mongoCollection = "runs"

// MongoConfig configures the MongoDB-backed store.
type MongoConfig struct {
	URI      string
	Database string
}

// MongoStore implements Store on MongoDB for durable shared deployments.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb at %s", cfg.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb at %s", cfg.URI)
	}
	return &MongoStore{
		client: client,
		runs:   client.Database(cfg.Database).Collection(mongoCollection),
	}, nil
}

// CreateRun persists a new run record.
func (s *MongoStore) CreateRun(ctx context.Context, run *Run) error {
	if err := errors.ValidateRunID(run.ID); err != nil {
		return err
	}
	if _, err := s.runs.InsertOne(ctx, run); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "insert run %s", run.ID)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *MongoStore) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read run %s", id)
	}
	return &run, nil
}

// UpdateRun replaces an existing run record.
func (s *MongoStore) UpdateRun(ctx context.Context, run *Run) error {
	res, err := s.runs.ReplaceOne(ctx, bson.M{"_id": run.ID}, run)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "update run %s", run.ID)
	}
	if res.MatchedCount == 0 {
		return errors.New(errors.ErrCodeRunNotFound, "run %s not found", run.ID)
	}
	return nil
}

// ListRuns returns all runs, most recently started first.
func (s *MongoStore) ListRuns(ctx context.Context) ([]*Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})
	cur, err := s.runs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list runs")
	}
	defer cur.Close(ctx)

	var runs []*Run
	if err := cur.All(ctx, &runs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode runs")
	}
	return runs, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
