package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// --- JSON Store ---

// JSONStore buffers profiles and writes them as one JSON array on Close.
type JSONStore struct {
	path     string
	profiles []types.BrandProfile
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewJSONStore creates a new JSON file store.
func NewJSONStore(outputPath string, logger *slog.Logger) (*JSONStore, error) {
	if err := ensureDir(outputPath); err != nil {
		return nil, err
	}
	return &JSONStore{
		path:     outputPath,
		profiles: make([]types.BrandProfile, 0),
		logger:   logger.With("component", "json_storage"),
	}, nil
}

func (s *JSONStore) Name() string { return "json" }

func (s *JSONStore) Store(_ context.Context, profiles []types.BrandProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append(s.profiles, profiles...)
	s.logger.Debug("profiles buffered", "count", len(profiles), "total", len(s.profiles))
	return nil
}

func (s *JSONStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Create(s.path)
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("create output file: %w", err)}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.profiles); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode JSON: %w", err)}
	}

	s.logger.Info("JSON written", "path", s.path, "profiles", len(s.profiles))
	return nil
}

// --- JSONL Store ---

// JSONLStore streams one profile per line.
type JSONLStore struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStore creates a new JSONL file store.
func NewJSONLStore(outputPath string, logger *slog.Logger) (*JSONLStore, error) {
	f, err := createFile(outputPath)
	if err != nil {
		return nil, err
	}
	return &JSONLStore{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStore) Name() string { return "jsonl" }

func (s *JSONLStore) Store(_ context.Context, profiles []types.BrandProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range profiles {
		if err := s.enc.Encode(&profiles[i]); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode JSONL: %w", err)}
		}
		s.count++
	}
	return nil
}

func (s *JSONLStore) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "profiles", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// --- CSV Store ---

// CSVStore writes one flattened row per profile under a fixed header.
type CSVStore struct {
	path          string
	file          *os.File
	writer        *csv.Writer
	headerWritten bool
	mu            sync.Mutex
	count         int
	logger        *slog.Logger
}

// NewCSVStore creates a new CSV file store.
func NewCSVStore(outputPath string, logger *slog.Logger) (*CSVStore, error) {
	f, err := createFile(outputPath)
	if err != nil {
		return nil, err
	}
	return &CSVStore{
		path:   outputPath,
		file:   f,
		writer: csv.NewWriter(f),
		logger: logger.With("component", "csv_storage"),
	}, nil
}

func (s *CSVStore) Name() string { return "csv" }

func (s *CSVStore) Store(_ context.Context, profiles []types.BrandProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.headerWritten {
		if err := s.writer.Write(CSVHeader); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("write CSV header: %w", err)}
		}
		s.headerWritten = true
	}

	for i := range profiles {
		if err := s.writer.Write(FlattenProfile(&profiles[i])); err != nil {
			return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("write CSV row: %w", err)}
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStore) Close() error {
	s.logger.Info("CSV written", "path", s.path, "profiles", s.count)
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}
