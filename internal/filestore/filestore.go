// Package filestore persists raw document text on disk, one directory per
// tenant token. Raw text is kept even after a document is removed from the
// vector index, serving as an audit trail, so no delete operation exists.
package filestore

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// Store is a filesystem-backed document store.
type Store struct {
	basePath string
	logger   *zap.Logger
}

func NewStore(basePath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating file store directory: %w", err)
	}
	logger.Info("file store initialized", zap.String("path", basePath))
	return &Store{basePath: basePath, logger: logger}, nil
}

// AddDocument writes the document under the token's directory. Adding a
// filename that already exists is a no-op, regardless of the new text.
func (s *Store) AddDocument(token, filename, text string) error {
	userPath := filepath.Join(s.basePath, token)
	if err := os.MkdirAll(userPath, 0o755); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	path := filepath.Join(userPath, filename)
	if _, err := os.Stat(path); err == nil {
		s.logger.Debug("document already in file store",
			zap.String("token", token), zap.String("filename", filename))
		return nil
	}
	// Temp file + rename so a failed write never leaves a partial document.
	tmp, err := os.CreateTemp(userPath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("renaming temp file: %w", err)
	}
	s.logger.Info("document added to file store",
		zap.String("token", token), zap.String("filename", filename))
	return nil
}

// DocumentPath returns the on-disk path of a stored document.
func (s *Store) DocumentPath(token, filename string) (string, error) {
	path := filepath.Join(s.basePath, token, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s/%s", domain.ErrDocumentNotFound, token, filename)
		}
		return "", err
	}
	return path, nil
}

// ListDocuments returns the filenames stored for the token. A token without a
// directory simply has no documents.
func (s *Store) ListDocuments(token string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.basePath, token))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// ListUserTokens returns every token that has a directory in the store.
func (s *Store) ListUserTokens() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}
	var tokens []string
	for _, e := range entries {
		if e.IsDir() {
			tokens = append(tokens, e.Name())
		}
	}
	return tokens, nil
}
