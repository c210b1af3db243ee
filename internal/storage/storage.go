// Package storage exports finished brand profiles.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/IshaanNene/BrandLens/internal/config"
	"github.com/IshaanNene/BrandLens/internal/types"
)

// Store is the interface for all export backends.
type Store interface {
	// Store persists a batch of profiles.
	Store(ctx context.Context, profiles []types.BrandProfile) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the backend identifier.
	Name() string
}

// New creates the backend named by cfg.Type. File backends write
// profiles.<ext> under cfg.OutputPath.
func New(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Type {
	case "json":
		return NewJSONStore(filepath.Join(cfg.OutputPath, "profiles.json"), logger)
	case "jsonl":
		return NewJSONLStore(filepath.Join(cfg.OutputPath, "profiles.jsonl"), logger)
	case "csv":
		return NewCSVStore(filepath.Join(cfg.OutputPath, "profiles.csv"), logger)
	case "mongodb":
		return NewMongoStore(cfg.MongoURI, cfg.Database, cfg.Collection, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
