package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoCollection is the collection layout documents live in.
const DefaultMongoCollection = "layouts"

// MongoStore keeps one document per record with a unique index on
// (topology, group).
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, pings the server and ensures the index.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = "dashgrid"
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(DefaultMongoCollection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "topology", Value: 1}, {Key: "group", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create layout index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func filter(topology, group string) bson.D {
	return bson.D{{Key: "topology", Value: topology}, {Key: "group", Value: group}}
}

func (s *MongoStore) Get(ctx context.Context, topology, group string) (*Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, filter(topology, group)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find layout: %w", err)
	}
	return &rec, nil
}

func (s *MongoStore) Put(ctx context.Context, rec *Record) error {
	if err := stamp(rec); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, filter(rec.Topology, rec.Group), rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, topology, group string) error {
	if _, err := s.coll.DeleteOne(ctx, filter(topology, group)); err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, topology string) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "topology", Value: topology}},
		options.Find().SetSort(bson.D{{Key: "group", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	var out []Record
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode layouts: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
