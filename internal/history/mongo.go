package history

import (
	"context"
	"time"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m3rciful/yeabuddy/internal/workout"
)

// Mongo defaults match the container names the bot used on Cosmos DB.
const (
	DefaultMongoDatabase   = "yea-buddy-db"
	DefaultMongoCollection = "workouts"
)

// MongoOptions locate the workouts collection.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps history as documents, one per workout.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type workoutDoc struct {
	ID              string `bson:"_id"`
	workout.Session `bson:",inline"`
	TotalSets       int `bson:"total_sets"`
	TotalReps       int `bson:"total_reps"`
	Duration        int `bson:"duration_minutes"`
}

// OpenMongo connects, pings and ensures the owner/start index exists.
func OpenMongo(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, oops.In("history").Code("mongo_connect").Wrapf(err, "connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, oops.In("history").Code("mongo_ping").Wrapf(err, "ping")
	}
	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start_time", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, oops.In("history").Code("mongo_index").Wrapf(err, "create index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Save inserts s as a new document.
func (m *MongoStore) Save(ctx context.Context, s workout.Session) (string, error) {
	if err := validate(s); err != nil {
		return "", err
	}
	end := time.Now()
	if s.EndTime != nil {
		end = *s.EndTime
	}
	doc := workoutDoc{
		ID:        newID(),
		Session:   s,
		TotalSets: s.TotalSets(),
		TotalReps: s.TotalReps(),
		Duration:  s.Minutes(end),
	}
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		return "", oops.In("history").Code("mongo_insert").With("user_id", s.Owner).Wrapf(err, "insert workout")
	}
	return doc.ID, nil
}

// Recent lists the owner's newest workouts.
func (m *MongoStore) Recent(ctx context.Context, owner int64, limit int) ([]Record, error) {
	find := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: -1}}).
		SetLimit(int64(normalizeLimit(limit)))
	cur, err := m.coll.Find(ctx, bson.M{"user_id": owner}, find)
	if err != nil {
		return nil, oops.In("history").Code("mongo_find").With("user_id", owner).Wrapf(err, "find workouts")
	}
	var docs []workoutDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, oops.In("history").Code("mongo_decode").Wrapf(err, "decode workouts")
	}
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		out = append(out, Record{ID: d.ID, Session: d.Session})
	}
	return out, nil
}

// Count returns how many workouts the owner saved.
func (m *MongoStore) Count(ctx context.Context, owner int64) (int, error) {
	n, err := m.coll.CountDocuments(ctx, bson.M{"user_id": owner})
	if err != nil {
		return 0, oops.In("history").Code("mongo_count").Wrapf(err, "count workouts")
	}
	return int(n), nil
}

// Close disconnects the client.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
