// Package docstore composes the file store and the vector store into one
// logical document repository. A document counts as present only when both
// stores know it, so a half-written pair is simply invisible until repaired.
package docstore

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// Store is the façade over the two underlying stores.
type Store struct {
	files   domain.FileStore
	vectors domain.VectorStore
	logger  *zap.Logger
}

func NewStore(files domain.FileStore, vectors domain.VectorStore, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{files: files, vectors: vectors, logger: logger}
}

// AddDocument writes to the file store, then the vector store. Each store
// independently no-ops on a filename it already holds. The pair of writes is
// not transactional; on a vector-side failure the document stays invisible
// through ListDocuments and the whole add can be retried safely.
func (s *Store) AddDocument(ctx context.Context, token, filename, text string) error {
	if err := s.files.AddDocument(token, filename, text); err != nil {
		return err
	}
	if err := s.vectors.AddDocument(ctx, token, filename, text); err != nil {
		s.logger.Warn("vector store write failed; document left file-store only",
			zap.String("token", token), zap.String("filename", filename), zap.Error(err))
		return err
	}
	return nil
}

// DeleteDocument removes the document's chunks from the vector index. The raw
// file is kept on purpose, which also makes the document disappear from
// ListDocuments via intersection.
func (s *Store) DeleteDocument(ctx context.Context, token, filename string) error {
	return s.vectors.DeleteDocument(ctx, token, filename)
}

// ListDocuments returns the filenames present in both stores, sorted.
func (s *Store) ListDocuments(ctx context.Context, token string) ([]string, error) {
	fileDocs, err := s.files.ListDocuments(token)
	if err != nil {
		return nil, err
	}
	vectorDocs, err := s.vectors.ListDocuments(ctx, token)
	if err != nil {
		return nil, err
	}
	return intersect(fileDocs, vectorDocs), nil
}

// ListUserTokens returns the tokens known to both stores, sorted.
func (s *Store) ListUserTokens(ctx context.Context) ([]string, error) {
	fileTokens, err := s.files.ListUserTokens()
	if err != nil {
		return nil, err
	}
	vectorTokens, err := s.vectors.ListUserTokens()
	if err != nil {
		return nil, err
	}
	return intersect(fileTokens, vectorTokens), nil
}

// Retrieve runs a similarity search over the token's corpus, optionally
// restricted to a subset of filenames.
func (s *Store) Retrieve(ctx context.Context, token, query string, topK int, filenames []string) ([]domain.SearchResult, error) {
	return s.vectors.SimilaritySearch(ctx, token, query, topK, filenames)
}

func intersect(a, b []string) []string {
	inA := make(map[string]struct{}, len(a))
	for _, v := range a {
		inA[v] = struct{}{}
	}
	var out []string
	for _, v := range b {
		if _, ok := inA[v]; ok {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
