package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(StoreConfig{DataDir: t.TempDir(), Dimensions: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// =============================================================================
// Store Tests
// =============================================================================

func TestStoreLocksDataDir(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(StoreConfig{DataDir: dir, Dimensions: 4})
	require.NoError(t, err)
	defer func() { _ = first.Close() }()

	_, err = NewStore(StoreConfig{DataDir: dir, Dimensions: 4})
	require.Error(t, err)
	assert.Equal(t, prerrors.ErrCodeStoreLocked, prerrors.GetCode(err))
}

func TestStoreReleasesLockOnClose(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(StoreConfig{DataDir: dir, Dimensions: 4})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(StoreConfig{DataDir: dir, Dimensions: 4})
	require.NoError(t, err)
	assert.NoError(t, second.Close())
}

func TestCollectionAddAndCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c, err := s.InitCollection("session-1")
	require.NoError(t, err)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	docs := []*Document{
		{ID: "d1", Content: "photosynthesis converts light energy", Language: "en"},
		{ID: "d2", Content: "mitochondria produce cellular energy", Language: "en"},
	}
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
	}
	require.NoError(t, c.AddDocuments(ctx, docs, vectors))

	count, err = c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCollectionIsolation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a, err := s.InitCollection("session-a")
	require.NoError(t, err)
	b, err := s.InitCollection("session-b")
	require.NoError(t, err)

	docs := []*Document{{ID: "d1", Content: "osmosis", Language: "en"}}
	require.NoError(t, a.AddDocuments(ctx, docs, [][]float32{{1, 0, 0, 0}}))

	countB, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, countB, "collections must not share documents")
}

func TestCollectionKeywordSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c, err := s.InitCollection("session-1")
	require.NoError(t, err)

	docs := []*Document{
		{ID: "d1", Content: "photosynthesis happens in chloroplasts", Language: "en"},
		{ID: "d2", Content: "the water cycle includes evaporation", Language: "en"},
	}
	require.NoError(t, c.AddDocuments(ctx, docs, [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}}))

	results, err := c.SearchKeyword(ctx, "photosynthesis", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "d1", results[0].ID)
}

func TestCollectionVectorSearch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c, err := s.InitCollection("session-1")
	require.NoError(t, err)

	docs := []*Document{
		{ID: "d1", Content: "a", Language: "en"},
		{ID: "d2", Content: "b", Language: "en"},
	}
	require.NoError(t, c.AddDocuments(ctx, docs, [][]float32{{1, 0, 0, 0}, {0, 0, 0, 1}}))

	results, err := c.SearchVector(ctx, []float32{0.9, 0.1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d1", results[0].ID)
}

func TestCollectionGetDocumentsOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c, err := s.InitCollection("session-1")
	require.NoError(t, err)

	docs := []*Document{
		{ID: "d1", Content: "one", Language: "en"},
		{ID: "d2", Content: "two", Language: "en"},
		{ID: "d3", Content: "three", Language: "en"},
	}
	vecs := [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}}
	require.NoError(t, c.AddDocuments(ctx, docs, vecs))

	got, err := c.GetDocuments(ctx, []string{"d3", "d1", "missing"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d3", got[0].ID)
	assert.Equal(t, "d1", got[1].ID)
}

// =============================================================================
// HNSWStore Tests
// =============================================================================

func TestHNSWStoreAddSearch(t *testing.T) {
	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 3})
	require.NoError(t, err)
	ctx := context.Background()

	err = s.Add(ctx, []string{"a", "b"}, [][]float32{{1, 0, 0}, {0, 1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count())

	results, err := s.Search(ctx, []float32{1, 0.1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.Greater(t, results[0].Score, 0.9)
}

func TestHNSWStoreDimensionMismatch(t *testing.T) {
	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 3})
	require.NoError(t, err)

	err = s.Add(context.Background(), []string{"a"}, [][]float32{{1, 0}})
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrDimensionMismatch{})
}

func TestHNSWStoreEmptySearch(t *testing.T) {
	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 3})
	require.NoError(t, err)

	results, err := s.Search(context.Background(), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHNSWStoreLazyDelete(t *testing.T) {
	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 3})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, []string{"a", "b"}, [][]float32{{1, 0, 0}, {0, 1, 0}}))
	require.NoError(t, s.Delete(ctx, []string{"a"}))

	assert.Equal(t, 1, s.Count())
	results, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, "a", r.ID, "deleted IDs must not surface")
	}
}

func TestHNSWStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.hnsw")
	ctx := context.Background()

	s, err := NewHNSWStore(VectorStoreConfig{Dimensions: 3, Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, []string{"a"}, [][]float32{{1, 0, 0}}))
	require.NoError(t, s.Save())
	require.NoError(t, s.Close())

	reopened, err := NewHNSWStore(VectorStoreConfig{Dimensions: 3, Path: path})
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Count())

	results, err := reopened.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
}

// =============================================================================
// SQLiteMetadataStore Tests
// =============================================================================

func TestSQLiteMetadataRoundTrip(t *testing.T) {
	s, err := NewSQLiteMetadataStore(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	doc := &Document{
		ID:           "d1",
		CollectionID: "c1",
		Content:      "प्रकाश संश्लेषण",
		Language:     "hi",
		Source:       "chapter 7",
		Metadata:     map[string]string{"grade": "8"},
	}
	require.NoError(t, s.SaveDocuments(ctx, []*Document{doc}))

	got, err := s.GetDocument(ctx, "c1", "d1")
	require.NoError(t, err)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, "hi", got.Language)
	assert.Equal(t, "8", got.Metadata["grade"])
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSQLiteMetadataUpsert(t *testing.T) {
	s, err := NewSQLiteMetadataStore(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	doc := &Document{ID: "d1", CollectionID: "c1", Content: "v1", Language: "en"}
	require.NoError(t, s.SaveDocuments(ctx, []*Document{doc}))

	doc.Content = "v2"
	require.NoError(t, s.SaveDocuments(ctx, []*Document{doc}))

	got, err := s.GetDocument(ctx, "c1", "d1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)

	count, err := s.CountDocuments(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteMetadataMissingDocument(t *testing.T) {
	s, err := NewSQLiteMetadataStore(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.GetDocument(context.Background(), "c1", "nope")
	require.Error(t, err)
	assert.Equal(t, prerrors.ErrCodeCollectionNotFound, prerrors.GetCode(err))
}

func TestSQLiteMetadataCollections(t *testing.T) {
	s, err := NewSQLiteMetadataStore(filepath.Join(t.TempDir(), "meta.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	require.NoError(t, s.SaveDocuments(ctx, []*Document{
		{ID: "d1", CollectionID: "b", Content: "x", Language: "en"},
		{ID: "d1", CollectionID: "a", Content: "y", Language: "en"},
	}))

	collections, err := s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, collections)

	require.NoError(t, s.DeleteCollection(ctx, "a"))
	count, err := s.CountDocuments(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, count)
}

// =============================================================================
// BleveKeywordIndex Tests
// =============================================================================

func TestBleveKeywordIndexSearch(t *testing.T) {
	idx, err := NewBleveKeywordIndex("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()
	ctx := context.Background()

	docs := []*Document{
		{ID: "d1", Content: "Photosynthesis converts sunlight into chemical energy", Language: "en"},
		{ID: "d2", Content: "Newton's laws describe motion and forces", Language: "en"},
	}
	require.NoError(t, idx.Index(ctx, docs))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	results, err := idx.Search(ctx, "photosynthesis energy", 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "d1", results[0].ID)
}

func TestBleveKeywordIndexDelete(t *testing.T) {
	idx, err := NewBleveKeywordIndex("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()
	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, []*Document{
		{ID: "d1", Content: "osmosis", Language: "en"},
	}))
	require.NoError(t, idx.Delete(ctx, []string{"d1"}))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBleveKeywordIndexNoMatches(t *testing.T) {
	idx, err := NewBleveKeywordIndex("")
	require.NoError(t, err)
	defer func() { _ = idx.Close() }()

	results, err := idx.Search(context.Background(), "nonexistent", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
