package store

import (
	"bufio"
	"context"
	"encoding/gob"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/coder/hnsw"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
)

// HNSWStore implements VectorStore with the coder/hnsw pure Go graph,
// so there is no CGO dependency.
type HNSWStore struct {
	mu     sync.RWMutex
	graph  *hnsw.Graph[uint64]
	config VectorStoreConfig

	// string ID <-> internal uint64 key
	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64

	closed bool
}

var _ VectorStore = (*HNSWStore)(nil)

// hnswMetadata is the gob-persisted sidecar for ID mappings.
type hnswMetadata struct {
	IDMap   map[string]uint64
	NextKey uint64
	Config  VectorStoreConfig
}

// NewHNSWStore creates an HNSW vector store. If cfg.Path exists, the
// persisted graph and ID mappings are loaded.
func NewHNSWStore(cfg VectorStoreConfig) (*HNSWStore, error) {
	if cfg.Metric == "" {
		cfg.Metric = "cos"
	}
	if cfg.M == 0 {
		cfg.M = 16
	}
	if cfg.EfSearch == 0 {
		cfg.EfSearch = 20
	}

	graph := hnsw.NewGraph[uint64]()
	switch cfg.Metric {
	case "l2":
		graph.Distance = hnsw.EuclideanDistance
	default:
		graph.Distance = hnsw.CosineDistance
	}
	graph.M = cfg.M
	graph.EfSearch = cfg.EfSearch
	graph.Ml = 0.25

	s := &HNSWStore{
		graph:  graph,
		config: cfg,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}

	if cfg.Path != "" {
		if err := s.load(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Add inserts vectors with their IDs. Existing IDs are lazily replaced:
// the old node stays orphaned in the graph but is dropped from the
// mappings, which avoids coder/hnsw delete edge cases.
func (s *HNSWStore) Add(_ context.Context, ids []string, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(vectors) {
		return prerrors.InternalError("ids and vectors length mismatch", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return prerrors.New(prerrors.ErrCodeStoreClosed, "vector store is closed", nil)
	}

	for _, v := range vectors {
		if len(v) != s.config.Dimensions {
			return ErrDimensionMismatch{Expected: s.config.Dimensions, Got: len(v)}
		}
	}

	for i, id := range ids {
		if existingKey, exists := s.idMap[id]; exists {
			delete(s.keyMap, existingKey)
			delete(s.idMap, id)
		}

		key := s.nextKey
		s.nextKey++

		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		if s.config.Metric == "cos" {
			normalizeVectorInPlace(vec)
		}

		s.graph.Add(hnsw.MakeNode(key, vec))
		s.idMap[id] = key
		s.keyMap[key] = id
	}

	return nil
}

// Search finds the k nearest neighbors of the query vector.
func (s *HNSWStore) Search(_ context.Context, query []float32, k int) ([]*VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, prerrors.New(prerrors.ErrCodeStoreClosed, "vector store is closed", nil)
	}
	if len(query) != s.config.Dimensions {
		return nil, ErrDimensionMismatch{Expected: s.config.Dimensions, Got: len(query)}
	}
	if s.graph.Len() == 0 {
		return []*VectorResult{}, nil
	}

	normalized := make([]float32, len(query))
	copy(normalized, query)
	if s.config.Metric == "cos" {
		normalizeVectorInPlace(normalized)
	}

	nodes := s.graph.Search(normalized, k)

	results := make([]*VectorResult, 0, len(nodes))
	for _, node := range nodes {
		id, exists := s.keyMap[node.Key]
		if !exists {
			// orphaned by a lazy delete
			continue
		}
		distance := s.graph.Distance(normalized, node.Value)
		results = append(results, &VectorResult{
			ID:       id,
			Distance: distance,
			Score:    distanceToScore(distance, s.config.Metric),
		})
	}

	return results, nil
}

// Delete removes vectors by ID using lazy deletion.
func (s *HNSWStore) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return prerrors.New(prerrors.ErrCodeStoreClosed, "vector store is closed", nil)
	}

	for _, id := range ids {
		if key, exists := s.idMap[id]; exists {
			delete(s.keyMap, key)
			delete(s.idMap, id)
		}
	}
	return nil
}

// Count returns the number of live vectors.
func (s *HNSWStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0
	}
	return len(s.idMap)
}

// Save persists the graph and ID mappings next to cfg.Path.
func (s *HNSWStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config.Path == "" {
		return nil
	}
	if s.closed {
		return prerrors.New(prerrors.ErrCodeStoreClosed, "vector store is closed", nil)
	}

	if err := os.MkdirAll(filepath.Dir(s.config.Path), 0o755); err != nil {
		return prerrors.StoreError("create vector store directory", err)
	}

	graphFile, err := os.Create(s.config.Path)
	if err != nil {
		return prerrors.StoreError("create vector store file", err)
	}
	defer func() { _ = graphFile.Close() }()

	w := bufio.NewWriter(graphFile)
	if err := s.graph.Export(w); err != nil {
		return prerrors.StoreError("export vector graph", err)
	}
	if err := w.Flush(); err != nil {
		return prerrors.StoreError("flush vector store file", err)
	}

	metaFile, err := os.Create(s.metaPath())
	if err != nil {
		return prerrors.StoreError("create vector metadata file", err)
	}
	defer func() { _ = metaFile.Close() }()

	meta := hnswMetadata{IDMap: s.idMap, NextKey: s.nextKey, Config: s.config}
	if err := gob.NewEncoder(metaFile).Encode(meta); err != nil {
		return prerrors.StoreError("encode vector metadata", err)
	}

	return nil
}

// load restores a previously saved graph; a missing file is a fresh store.
func (s *HNSWStore) load() error {
	graphFile, err := os.Open(s.config.Path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return prerrors.StoreError("open vector store file", err)
	}
	defer func() { _ = graphFile.Close() }()

	if err := s.graph.Import(bufio.NewReader(graphFile)); err != nil {
		return prerrors.New(prerrors.ErrCodeCorruptIndex, "import vector graph", err)
	}

	metaFile, err := os.Open(s.metaPath())
	if err != nil {
		return prerrors.New(prerrors.ErrCodeCorruptIndex, "vector metadata missing", err)
	}
	defer func() { _ = metaFile.Close() }()

	var meta hnswMetadata
	if err := gob.NewDecoder(metaFile).Decode(&meta); err != nil {
		return prerrors.New(prerrors.ErrCodeCorruptIndex, "decode vector metadata", err)
	}

	s.idMap = meta.IDMap
	s.nextKey = meta.NextKey
	s.keyMap = make(map[uint64]string, len(meta.IDMap))
	for id, key := range meta.IDMap {
		s.keyMap[key] = id
	}
	return nil
}

// Close marks the store closed; Save must be called first if
// persistence is wanted.
func (s *HNSWStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *HNSWStore) metaPath() string {
	return s.config.Path + ".meta"
}

// normalizeVectorInPlace scales v to unit length.
func normalizeVectorInPlace(v []float32) {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return
	}
	for i, val := range v {
		v[i] = float32(float64(val) / magnitude)
	}
}

// distanceToScore converts a distance to a similarity in (0,1].
func distanceToScore(distance float32, metric string) float64 {
	switch metric {
	case "cos":
		// cosine distance is 1 - similarity
		return 1.0 - float64(distance)
	default:
		return 1.0 / (1.0 + float64(distance))
	}
}
