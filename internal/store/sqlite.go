package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	// Pure Go SQLite driver, no CGO.
	_ "modernc.org/sqlite"

	prerrors "github.com/shikshalabs/prashna/internal/errors"
)

// SQLiteMetadataStore persists document records in SQLite.
type SQLiteMetadataStore struct {
	db   *sql.DB
	path string
}

var _ MetadataStore = (*SQLiteMetadataStore)(nil)

// NewSQLiteMetadataStore opens or creates the metadata database at path.
// Pass ":memory:" for an ephemeral store in tests.
func NewSQLiteMetadataStore(path string) (*SQLiteMetadataStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, prerrors.StoreError("open metadata database", err)
	}

	// Single writer avoids lock contention with modernc.org/sqlite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// WAL must be set via PRAGMA; DSN params are ignored by this driver
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, prerrors.StoreError("set pragma", err)
		}
	}

	s := &SQLiteMetadataStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteMetadataStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id            TEXT NOT NULL,
		collection_id TEXT NOT NULL,
		content       TEXT NOT NULL,
		language      TEXT NOT NULL DEFAULT 'en',
		source        TEXT NOT NULL DEFAULT '',
		metadata      TEXT NOT NULL DEFAULT '{}',
		created_at    TIMESTAMP NOT NULL,
		PRIMARY KEY (collection_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_collection
		ON documents(collection_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return prerrors.StoreError("initialize metadata schema", err)
	}
	return nil
}

// SaveDocuments upserts documents in one transaction.
func (s *SQLiteMetadataStore) SaveDocuments(ctx context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return prerrors.StoreError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (id, collection_id, content, language, source, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection_id, id) DO UPDATE SET
			content = excluded.content,
			language = excluded.language,
			source = excluded.source,
			metadata = excluded.metadata
	`)
	if err != nil {
		return prerrors.StoreError("prepare save statement", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return prerrors.InternalError("marshal document metadata", err)
		}
		createdAt := doc.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err = stmt.ExecContext(ctx,
			doc.ID, doc.CollectionID, doc.Content, doc.Language, doc.Source,
			string(meta), createdAt)
		if err != nil {
			return prerrors.StoreError("save document", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return prerrors.StoreError("commit documents", err)
	}
	return nil
}

// GetDocument returns the document with id in the collection.
func (s *SQLiteMetadataStore) GetDocument(ctx context.Context, collectionID, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, collection_id, content, language, source, metadata, created_at
		FROM documents WHERE collection_id = ? AND id = ?
	`, collectionID, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, prerrors.New(prerrors.ErrCodeCollectionNotFound,
			"document not found: "+id, nil)
	}
	if err != nil {
		return nil, prerrors.StoreError("get document", err)
	}
	return doc, nil
}

// GetDocuments batch-fetches documents by ID, preserving request order.
// Missing IDs are skipped silently.
func (s *SQLiteMetadataStore) GetDocuments(ctx context.Context, collectionID string, ids []string) ([]*Document, error) {
	if len(ids) == 0 {
		return []*Document{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, collectionID)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, collection_id, content, language, source, metadata, created_at
		FROM documents WHERE collection_id = ? AND id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, prerrors.StoreError("query documents", err)
	}
	defer func() { _ = rows.Close() }()

	byID := make(map[string]*Document, len(ids))
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, prerrors.StoreError("scan document", err)
		}
		byID[doc.ID] = doc
	}
	if err := rows.Err(); err != nil {
		return nil, prerrors.StoreError("iterate documents", err)
	}

	docs := make([]*Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// CountDocuments returns the number of documents in the collection.
func (s *SQLiteMetadataStore) CountDocuments(ctx context.Context, collectionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection_id = ?`, collectionID,
	).Scan(&count)
	if err != nil {
		return 0, prerrors.StoreError("count documents", err)
	}
	return count, nil
}

// ListCollections returns the distinct collection IDs.
func (s *SQLiteMetadataStore) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT collection_id FROM documents ORDER BY collection_id`)
	if err != nil {
		return nil, prerrors.StoreError("list collections", err)
	}
	defer func() { _ = rows.Close() }()

	var collections []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, prerrors.StoreError("scan collection id", err)
		}
		collections = append(collections, id)
	}
	return collections, rows.Err()
}

// DeleteCollection removes all documents in the collection.
func (s *SQLiteMetadataStore) DeleteCollection(ctx context.Context, collectionID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection_id = ?`, collectionID)
	if err != nil {
		return prerrors.StoreError("delete collection", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteMetadataStore) Close() error {
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row scanner) (*Document, error) {
	var (
		doc      Document
		metaJSON string
	)
	err := row.Scan(&doc.ID, &doc.CollectionID, &doc.Content, &doc.Language,
		&doc.Source, &metaJSON, &doc.CreatedAt)
	if err != nil {
		return nil, err
	}
	if metaJSON != "" && metaJSON != "{}" {
		if err := json.Unmarshal([]byte(metaJSON), &doc.Metadata); err != nil {
			return nil, err
		}
	}
	return &doc, nil
}
