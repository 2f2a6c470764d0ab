package store

import (
	"context"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
)

// studyAnalyzerName is the custom analyzer registered per index.
// Unicode tokenization keeps Devanagari and other Indic scripts intact
// where the simple analyzer would mangle them.
const studyAnalyzerName = "study_text"

// BleveKeywordIndex implements KeywordIndex over a Bleve BM25 index.
type BleveKeywordIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

var _ KeywordIndex = (*BleveKeywordIndex)(nil)

// bleveDocument is the indexed shape of a Document.
type bleveDocument struct {
	Content  string `json:"content"`
	Language string `json:"language"`
	Source   string `json:"source"`
}

// NewBleveKeywordIndex opens the index at path, creating it if absent.
// An empty path builds an in-memory index.
func NewBleveKeywordIndex(path string) (*BleveKeywordIndex, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, prerrors.StoreError("create in-memory keyword index", err)
		}
		return &BleveKeywordIndex{index: idx}, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		idx, err := bleve.New(path, buildIndexMapping())
		if err != nil {
			return nil, prerrors.StoreError("create keyword index", err)
		}
		return &BleveKeywordIndex{index: idx, path: path}, nil
	}

	idx, err := bleve.Open(path)
	if err != nil {
		return nil, prerrors.New(prerrors.ErrCodeCorruptIndex, "open keyword index", err)
	}
	return &BleveKeywordIndex{index: idx, path: path}, nil
}

// buildIndexMapping registers the study analyzer and maps content fields.
func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()

	// Registration only fails on bad parameters, which are fixed here
	_ = m.AddCustomAnalyzer(studyAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	m.DefaultAnalyzer = studyAnalyzerName

	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = studyAnalyzerName
	docMapping.AddFieldMappingsAt("content", contentField)

	langField := bleve.NewTextFieldMapping()
	langField.Index = true
	langField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("language", langField)

	m.DefaultMapping = docMapping
	return m
}

// Index adds documents in one batch.
func (b *BleveKeywordIndex) Index(_ context.Context, docs []*Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return prerrors.New(prerrors.ErrCodeStoreClosed, "keyword index is closed", nil)
	}
	if len(docs) == 0 {
		return nil
	}

	batch := b.index.NewBatch()
	for _, doc := range docs {
		err := batch.Index(doc.ID, bleveDocument{
			Content:  doc.Content,
			Language: doc.Language,
			Source:   doc.Source,
		})
		if err != nil {
			return prerrors.StoreError("batch keyword document", err)
		}
	}

	if err := b.index.Batch(batch); err != nil {
		return prerrors.StoreError("index keyword batch", err)
	}
	return nil
}

// Search runs a BM25 match query and returns scored document IDs.
func (b *BleveKeywordIndex) Search(_ context.Context, query string, limit int) ([]*KeywordResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, prerrors.New(prerrors.ErrCodeStoreClosed, "keyword index is closed", nil)
	}
	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")

	req := bleve.NewSearchRequestOptions(matchQuery, limit, 0, false)
	result, err := b.index.Search(req)
	if err != nil {
		return nil, prerrors.StoreError("keyword search", err)
	}

	results := make([]*KeywordResult, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, &KeywordResult{ID: hit.ID, Score: hit.Score})
	}
	return results, nil
}

// Delete removes documents by ID.
func (b *BleveKeywordIndex) Delete(_ context.Context, ids []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return prerrors.New(prerrors.ErrCodeStoreClosed, "keyword index is closed", nil)
	}

	batch := b.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := b.index.Batch(batch); err != nil {
		return prerrors.StoreError("delete keyword batch", err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (b *BleveKeywordIndex) Count() (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, prerrors.New(prerrors.ErrCodeStoreClosed, "keyword index is closed", nil)
	}
	return b.index.DocCount()
}

// Close releases the underlying index.
func (b *BleveKeywordIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	return b.index.Close()
}
