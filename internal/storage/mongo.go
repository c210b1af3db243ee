package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/net/publicsuffix"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// MongoStore keeps one document per brand. A successful profile replaces
// whatever was stored for its brand; a failed one only records the failure
// and never overwrites an earlier good profile.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	mu         sync.Mutex
	upserted   int
	modified   int
	logger     *slog.Logger
	now        func() time.Time
}

// mongoProfile is the stored shape: the profile plus its brand key.
type mongoProfile struct {
	BrandKey           string `bson:"brand_key"`
	types.BrandProfile `bson:",inline"`
	UpdatedAt          time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri, verifies the connection and creates the
// collection's indexes.
func NewMongoStore(uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("connect: %w", err)}
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("ping: %w", err)}
	}

	coll := client.Database(database).Collection(collection)
	if _, err := coll.Indexes().CreateMany(ctx, profileIndexes()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("create indexes: %w", err)}
	}

	return &MongoStore{
		client:     client,
		collection: coll,
		logger:     logger.With("component", "mongo_storage", "collection", collection),
		now:        time.Now,
	}, nil
}

// profileIndexes enforces one document per brand and supports the
// "best profiles first" and "recent failures" queries.
func profileIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "brand_key", Value: 1}},
			Options: options.Index().SetName("brand_key_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "quality_score", Value: -1}},
			Options: options.Index().SetName("status_quality"),
		},
		{
			Keys:    bson.D{{Key: "last_failed_at", Value: -1}},
			Options: options.Index().SetName("last_failed_at").SetSparse(true),
		},
	}
}

// BrandKey normalizes a profile to the key it is stored under: the
// registrable domain of its URL, lowercased. Profiles without a usable
// host fall back to the lowercased brand name or URL.
func BrandKey(p *types.BrandProfile) string {
	raw := strings.TrimSpace(p.URL)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if u, err := url.Parse(raw); err == nil && u.Hostname() != "" {
		host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
		if net.ParseIP(host) != nil {
			return host
		}
		if etld1, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
			return etld1
		}
		return strings.TrimPrefix(host, "www.")
	}
	if p.BrandNameGuess != "" {
		return strings.ToLower(strings.TrimSpace(p.BrandNameGuess))
	}
	return strings.ToLower(strings.TrimSpace(p.URL))
}

// writeModels builds one upsert per brand. When a batch holds the same
// brand more than once, the later profile wins.
func writeModels(profiles []types.BrandProfile, now time.Time) []mongo.WriteModel {
	latest := make(map[string]int, len(profiles))
	var order []string
	for i := range profiles {
		key := BrandKey(&profiles[i])
		if key == "" {
			continue
		}
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = i
	}

	models := make([]mongo.WriteModel, 0, len(order))
	for _, key := range order {
		p := profiles[latest[key]]
		filter := bson.D{{Key: "brand_key", Value: key}}
		doc := mongoProfile{BrandKey: key, BrandProfile: p, UpdatedAt: now}

		if p.Succeeded() {
			models = append(models, mongo.NewReplaceOneModel().
				SetFilter(filter).
				SetReplacement(doc).
				SetUpsert(true))
			continue
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.D{
				{Key: "$setOnInsert", Value: doc},
				{Key: "$set", Value: bson.D{
					{Key: "last_failure", Value: p.FailureReason},
					{Key: "last_failed_at", Value: now},
				}},
			}).
			SetUpsert(true))
	}
	return models
}

func (s *MongoStore) Name() string { return "mongodb" }

// Store upserts profiles by brand in one unordered bulk write.
func (s *MongoStore) Store(ctx context.Context, profiles []types.BrandProfile) error {
	models := writeModels(profiles, s.now().UTC())
	if len(models) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("bulk upsert: %w", err)}
	}

	s.upserted += int(res.UpsertedCount)
	s.modified += int(res.ModifiedCount)
	s.logger.Debug("profiles upserted",
		"brands", len(models),
		"inserted", res.UpsertedCount,
		"replaced", res.ModifiedCount,
	)
	return nil
}

func (s *MongoStore) Close() error {
	s.logger.Info("mongodb storage closing", "new_brands", s.upserted, "updated_brands", s.modified)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// --- Multi-Store Fan-Out ---

// MultiStore writes profiles to several backends in turn.
type MultiStore struct {
	backends []Store
	logger   *slog.Logger
}

// NewMultiStore creates a store that fans out to backends.
func NewMultiStore(backends []Store, logger *slog.Logger) *MultiStore {
	return &MultiStore{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStore) Name() string { return "multi" }

// Store tries every backend and returns the first error.
func (s *MultiStore) Store(ctx context.Context, profiles []types.BrandProfile) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(ctx, profiles); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiStore) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
