package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string // default "pathlattice"
	Collection string // default "lattices"
}

// MongoStore keeps entries in a MongoDB collection. A TTL index on
// expires_at lets the server drop expired entries on its own; Cleanup
// removes the ones it has not reached yet.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoEntry struct {
	ID        string     `bson:"_id"`
	Name      string     `bson:"name,omitempty"`
	Document  []byte     `bson:"document"`
	CreatedAt time.Time  `bson:"created_at"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

// NewMongoStore connects, pings the primary and ensures the TTL index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "pathlattice"
	}
	if cfg.Collection == "" {
		cfg.Collection = "lattices"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := &MongoStore{client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return fmt.Errorf("create ttl index: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Entry, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var doc mongoEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find lattice %s: %w", id, err)
	}
	e := fromMongo(doc)
	if e.IsExpired() {
		return nil, nil
	}
	return e, nil
}

func (s *MongoStore) Put(ctx context.Context, e *Entry) error {
	if err := ValidateID(e.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": e.ID}, toMongo(e), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store lattice %s: %w", e.ID, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete lattice %s: %w", id, err)
	}
	return nil
}

func (s *MongoStore) Cleanup(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("delete expired lattices: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toMongo(e *Entry) mongoEntry {
	doc := mongoEntry{ID: e.ID, Name: e.Name, Document: e.Document, CreatedAt: e.CreatedAt}
	if !e.ExpiresAt.IsZero() {
		t := e.ExpiresAt
		doc.ExpiresAt = &t
	}
	return doc
}

func fromMongo(doc mongoEntry) *Entry {
	e := &Entry{ID: doc.ID, Name: doc.Name, Document: doc.Document, CreatedAt: doc.CreatedAt}
	if doc.ExpiresAt != nil {
		e.ExpiresAt = *doc.ExpiresAt
	}
	return e
}

var _ Store = (*MongoStore)(nil)
