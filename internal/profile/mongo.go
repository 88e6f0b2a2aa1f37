// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/marquee/internal/models"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "marquee"
	DefaultMongoCollection = "users"
	defaultMongoTimeout    = 10 * time.Second
)

// MongoOptions tunes the MongoDB store.
type MongoOptions struct {
	// Timeout bounds each store operation. Default: 10s.
	Timeout time.Duration
}

// mongoDocument is the stored shape: one document per user, keyed by user id,
// with a version counter for optimistic concurrency.
type mongoDocument struct {
	models.Profile `bson:",inline"`
	Version        int64 `bson:"version"`
}

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

// OpenMongoStore connects to uri and verifies the connection.
func OpenMongoStore(ctx context.Context, uri, database, collection string, opts MongoOptions) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is required")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultMongoTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetConnectTimeout(opts.Timeout))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &MongoStore{
		client:  client,
		coll:    client.Database(database).Collection(collection),
		timeout: opts.Timeout,
		now:     time.Now,
	}, nil
}

func (s *MongoStore) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Get loads the user's document.
func (s *MongoStore) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if err := checkUserID(userID); err != nil {
		return nil, err
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	doc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &doc.Profile, nil
}

func (s *MongoStore) load(ctx context.Context, userID string) (*mongoDocument, error) {
	var doc mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &mongoDocument{Profile: *models.NewProfile(userID)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	doc.UserID = userID
	doc.Normalize()
	return &doc, nil
}

// Update performs an optimistic read-modify-write. The replace only matches
// the version that was read; a lost race is retried.
func (s *MongoStore) Update(ctx context.Context, userID string, fn func(*models.Profile) error) error {
	if err := checkUserID(userID); err != nil {
		return err
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		doc, err := s.load(ctx, userID)
		if err != nil {
			return err
		}
		updated, err := apply(&doc.Profile, fn)
		if err != nil {
			return err
		}
		updated.UserID = userID
		updated.UpdatedAt = s.now().UTC()

		filter := bson.M{"_id": userID, "version": doc.Version}
		if doc.Version == 0 {
			// Matches documents written before versioning, or none at all.
			filter = bson.M{"_id": userID, "version": bson.M{"$in": bson.A{0, nil}}}
		}
		next := mongoDocument{Profile: *updated, Version: doc.Version + 1}

		res, err := s.coll.ReplaceOne(ctx, filter, next, options.Replace().SetUpsert(true))
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("replace profile: %w", err)
		}
		if res.MatchedCount == 0 && res.UpsertedCount == 0 {
			continue
		}
		return nil
	}
	return fmt.Errorf("update profile %s: too many concurrent writers", userID)
}

// Ping checks connectivity to the primary.
func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
