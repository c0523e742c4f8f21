// Package retrieval implements the document retrieval service: loading and
// chunking uploaded documents, embedding the chunks, storing them in a
// sqlite-vec backed vector store, and answering top-k similarity queries
// with provenance. The orchestration core consumes it only through the
// optional query tool; it holds no loop and no session state.
package retrieval

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Snippet is one query result formatted for the caller: the chunk text plus
// a human-readable source reference.
type Snippet struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Chunker *Chunker
	Logger  zerolog.Logger
	// DefaultK is the result count used when a query does not specify one.
	DefaultK int
}

// Service ties loader, chunker, embedder and vector store together.
type Service struct {
	store    *VectorStore
	embedder Embedder
	chunker  *Chunker
	logger   zerolog.Logger
	defaultK int
}

// NewService constructs a retrieval service.
func NewService(store *VectorStore, embedder Embedder, optFns ...func(o *ServiceOptions)) *Service {
	opts := ServiceOptions{
		Chunker:  NewChunker(),
		Logger:   zerolog.Nop(),
		DefaultK: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{
		store:    store,
		embedder: embedder,
		chunker:  opts.Chunker,
		logger:   opts.Logger,
		defaultK: opts.DefaultK,
	}
}

// EmbedDocument loads, chunks, embeds and stores one document, replacing any
// previously stored chunks for the same document id. It returns the number
// of stored chunks; zero chunks (empty document) is not an error.
func (s *Service) EmbedDocument(ctx context.Context, path, fileType, documentID string) (int, error) {
	if documentID == "" {
		return 0, fmt.Errorf("document id is required")
	}

	sections, err := LoadDocument(path, fileType)
	if err != nil {
		return 0, err
	}

	var chunks []Chunk
	filename := filepath.Base(path)
	for _, section := range sections {
		for _, text := range s.chunker.Split(section) {
			chunks = append(chunks, Chunk{
				ID:         fmt.Sprintf("%s-%d", documentID, len(chunks)),
				DocumentID: documentID,
				Filename:   filename,
				ChunkIndex: len(chunks),
				FileType:   fileType,
				Content:    text,
			})
		}
	}
	if len(chunks) == 0 {
		s.logger.Warn().Str("document_id", documentID).Msg("Document produced no chunks, skipping embedding")
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed document %s: %w", documentID, err)
	}

	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return 0, fmt.Errorf("replace document %s: %w", documentID, err)
	}
	if err := s.store.Add(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("store document %s: %w", documentID, err)
	}

	s.logger.Info().Str("document_id", documentID).Int("chunks", len(chunks)).Msg("Document embedded and stored")
	return len(chunks), nil
}

// QueryDocuments embeds the query text and returns the k most similar stored
// chunks, optionally restricted to the given document ids. k below 1 falls
// back to the service default.
func (s *Service) QueryDocuments(ctx context.Context, queryText string, documentIDs []string, k int) ([]Snippet, error) {
	if queryText == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if k < 1 {
		k = s.defaultK
	}

	vectors, err := s.embedder.Embed(ctx, []string{queryText})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.store.Query(ctx, vectors[0], documentIDs, k)
	if err != nil {
		return nil, err
	}

	snippets := make([]Snippet, 0, len(hits))
	for _, hit := range hits {
		snippets = append(snippets, Snippet{
			Text:   hit.Chunk.Content,
			Source: fmt.Sprintf("%s (chunk %d)", hit.Chunk.Filename, hit.Chunk.ChunkIndex),
		})
	}
	return snippets, nil
}
