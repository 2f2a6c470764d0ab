// Package store is the persistence layer: document metadata in SQLite,
// vectors in an HNSW graph, and keyword search in a Bleve index, grouped
// per collection under a locked data directory.
package store

import (
	"context"
	"fmt"
	"time"
)

// Document is one retrievable unit of study material.
type Document struct {
	// ID uniquely identifies the document within its collection.
	ID string

	// CollectionID names the collection the document belongs to.
	CollectionID string

	// Content is the document text.
	Content string

	// Language is the ISO-like code of the content language.
	Language string

	// Source describes where the content came from (chapter, page).
	Source string

	// Metadata holds custom key/value pairs.
	Metadata map[string]string

	CreatedAt time.Time
}

// VectorResult is one nearest-neighbor hit.
type VectorResult struct {
	ID       string
	Distance float32
	Score    float64
}

// KeywordResult is one BM25 hit.
type KeywordResult struct {
	ID    string
	Score float64
}

// VectorStore indexes embeddings and answers nearest-neighbor queries.
type VectorStore interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Delete(ctx context.Context, ids []string) error
	Count() int
	Save() error
	Close() error
}

// KeywordIndex provides BM25 full-text search over document content.
type KeywordIndex interface {
	Index(ctx context.Context, docs []*Document) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, ids []string) error
	Count() (uint64, error)
	Close() error
}

// MetadataStore persists document records.
type MetadataStore interface {
	SaveDocuments(ctx context.Context, docs []*Document) error
	GetDocument(ctx context.Context, collectionID, id string) (*Document, error)
	GetDocuments(ctx context.Context, collectionID string, ids []string) ([]*Document, error)
	CountDocuments(ctx context.Context, collectionID string) (int, error)
	ListCollections(ctx context.Context) ([]string, error)
	DeleteCollection(ctx context.Context, collectionID string) error
	Close() error
}

// VectorStoreConfig configures an HNSW store.
type VectorStoreConfig struct {
	// Dimensions is the embedding size; vectors of any other length
	// are rejected.
	Dimensions int

	// Metric is "cos" or "l2".
	Metric string

	// M is the HNSW connectivity parameter.
	M int

	// EfSearch is the HNSW search breadth.
	EfSearch int

	// Path is where the graph is persisted; empty means in-memory only.
	Path string
}

// ErrDimensionMismatch reports a vector with the wrong length.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}
