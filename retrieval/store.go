package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	// Auto-register the sqlite-vec extension on every connection.
	sqlite_vec.Auto()
}

// Chunk is one stored document fragment with its provenance metadata.
type Chunk struct {
	ID         string
	DocumentID string
	Filename   string
	ChunkIndex int
	FileType   string
	Content    string
}

// Hit is a query result: a chunk plus its cosine distance to the query.
type Hit struct {
	Chunk    Chunk
	Distance float64
}

// VectorStore persists chunk text and embeddings in sqlite with the
// sqlite-vec extension for cosine-distance search.
type VectorStore struct {
	db        *sql.DB
	dimension int
}

// NewVectorStore opens (or creates) the database at dbPath and initializes
// the schema for the given embedding dimension.
func NewVectorStore(dbPath string, dimension int) (*VectorStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dimension < 1 {
		return nil, fmt.Errorf("embedding dimension must be positive")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &VectorStore{db: db, dimension: dimension}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *VectorStore) Close() error { return s.db.Close() }

func (s *VectorStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			file_type TEXT NOT NULL,
			content TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}

	vectorSchema := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS embeddings USING vec0(
			chunk_id TEXT PRIMARY KEY,
			embedding float[%d] distance_metric=cosine
		);
	`, s.dimension)
	if _, err := s.db.Exec(vectorSchema); err != nil {
		return fmt.Errorf("create vector table: %w", err)
	}
	return nil
}

// Add stores chunks and their embeddings in one transaction. len(chunks)
// must equal len(vectors).
func (s *VectorStore) Add(ctx context.Context, chunks []Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertChunk, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, document_id, filename, chunk_index, file_type, content)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer insertChunk.Close()

	insertVec, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO embeddings (chunk_id, embedding) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare embedding insert: %w", err)
	}
	defer insertVec.Close()

	for i, chunk := range chunks {
		if _, err := insertChunk.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.Filename, chunk.ChunkIndex, chunk.FileType, chunk.Content,
		); err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ID, err)
		}

		blob, err := sqlite_vec.SerializeFloat32(vectors[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for %s: %w", chunk.ID, err)
		}
		if _, err := insertVec.ExecContext(ctx, chunk.ID, blob); err != nil {
			return fmt.Errorf("insert embedding for %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Query returns the k nearest chunks to the query vector by cosine distance,
// optionally restricted to the given document ids.
func (s *VectorStore) Query(ctx context.Context, vector []float32, documentIDs []string, k int) ([]Hit, error) {
	if k < 1 {
		k = 4
	}

	embeddingJSON, err := json.Marshal(vector)
	if err != nil {
		return nil, fmt.Errorf("marshal query embedding: %w", err)
	}

	query := `
		SELECT c.id, c.document_id, c.filename, c.chunk_index, c.file_type, c.content,
			vec_distance_cosine(e.embedding, ?) AS distance
		FROM embeddings e
		JOIN chunks c ON c.id = e.chunk_id
	`
	args := []any{string(embeddingJSON)}
	if len(documentIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(documentIDs)), ",")
		query += fmt.Sprintf(" WHERE c.document_id IN (%s)", placeholders)
		for _, id := range documentIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY distance ASC LIMIT ?"
	args = append(args, k)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(
			&h.Chunk.ID, &h.Chunk.DocumentID, &h.Chunk.Filename,
			&h.Chunk.ChunkIndex, &h.Chunk.FileType, &h.Chunk.Content,
			&h.Distance,
		); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// DeleteDocument removes all chunks and embeddings for one document id.
func (s *VectorStore) DeleteDocument(ctx context.Context, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM embeddings WHERE chunk_id IN (SELECT id FROM chunks WHERE document_id = ?)
	`, documentID); err != nil {
		return fmt.Errorf("delete embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return tx.Commit()
}
