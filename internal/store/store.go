package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
)

// Store groups the metadata database and per-collection indexes under
// one data directory, guarded by a cross-process file lock so two
// processes never write the same indexes.
type Store struct {
	dataDir    string
	dimensions int
	logger     *slog.Logger

	lock *flock.Flock
	meta MetadataStore

	mu          sync.Mutex
	collections map[string]*Collection
}

// Collection bundles the three indexes for one set of documents.
type Collection struct {
	ID string

	store   *Store
	vectors VectorStore
	keyword KeywordIndex
}

// StoreConfig configures a Store.
type StoreConfig struct {
	// DataDir is the root directory for all persisted state.
	DataDir string

	// Dimensions is the embedding size used for vector indexes.
	Dimensions int

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// NewStore opens the data directory, acquiring its lock. A second
// process opening the same directory gets ErrCodeStoreLocked.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, prerrors.StoreError("create data directory", err)
	}

	lock := flock.New(filepath.Join(cfg.DataDir, ".prashna.lock"))
	acquired, err := lock.TryLock()
	if err != nil {
		return nil, prerrors.StoreError("acquire data directory lock", err)
	}
	if !acquired {
		return nil, prerrors.New(prerrors.ErrCodeStoreLocked,
			"data directory is locked by another process: "+cfg.DataDir, nil)
	}

	meta, err := NewSQLiteMetadataStore(filepath.Join(cfg.DataDir, "metadata.db"))
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	return &Store{
		dataDir:     cfg.DataDir,
		dimensions:  cfg.Dimensions,
		logger:      cfg.Logger,
		lock:        lock,
		meta:        meta,
		collections: make(map[string]*Collection),
	}, nil
}

// InitCollection returns the handle for collectionID, opening its
// indexes on first use.
func (s *Store) InitCollection(collectionID string) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[collectionID]; ok {
		return c, nil
	}

	dir := filepath.Join(s.dataDir, "collections", collectionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, prerrors.StoreError("create collection directory", err)
	}

	vectors, err := NewHNSWStore(VectorStoreConfig{
		Dimensions: s.dimensions,
		Metric:     "cos",
		Path:       filepath.Join(dir, "vectors.hnsw"),
	})
	if err != nil {
		return nil, err
	}

	keyword, err := NewBleveKeywordIndex(filepath.Join(dir, "keyword.bleve"))
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}

	c := &Collection{
		ID:      collectionID,
		store:   s,
		vectors: vectors,
		keyword: keyword,
	}
	s.collections[collectionID] = c

	s.logger.Debug("collection opened",
		"collection", collectionID,
		"vectors", vectors.Count(),
	)
	return c, nil
}

// Metadata exposes the document metadata store.
func (s *Store) Metadata() MetadataStore {
	return s.meta
}

// Close saves and closes every open collection, then releases the lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, c := range s.collections {
		if err := c.vectors.Save(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := c.vectors.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := c.keyword.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.meta.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.lock.Unlock(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// AddDocuments stores documents with their embeddings across all three
// indexes. len(docs) must equal len(vectors).
func (c *Collection) AddDocuments(ctx context.Context, docs []*Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return prerrors.InternalError("documents and vectors length mismatch", nil)
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		doc.CollectionID = c.ID
		ids[i] = doc.ID
	}

	if err := c.store.meta.SaveDocuments(ctx, docs); err != nil {
		return err
	}
	if err := c.keyword.Index(ctx, docs); err != nil {
		return err
	}
	return c.vectors.Add(ctx, ids, vectors)
}

// Count returns the number of documents in the collection. It is the
// fallible probe the orchestrator uses to decide whether retrieval can
// find anything.
func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.store.meta.CountDocuments(ctx, c.ID)
}

// SearchKeyword runs a BM25 query against the collection.
func (c *Collection) SearchKeyword(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	return c.keyword.Search(ctx, query, limit)
}

// SearchVector runs a nearest-neighbor query against the collection.
func (c *Collection) SearchVector(ctx context.Context, vector []float32, k int) ([]*VectorResult, error) {
	return c.vectors.Search(ctx, vector, k)
}

// GetDocuments fetches documents by ID in request order.
func (c *Collection) GetDocuments(ctx context.Context, ids []string) ([]*Document, error) {
	return c.store.meta.GetDocuments(ctx, c.ID, ids)
}
