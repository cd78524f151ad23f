// Package extract pulls plain text out of document files before ingestion.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// PlainText extracts text from plain-text document formats. Unsupported
// formats yield an empty string, which callers treat as "skip this file"
// rather than a failure.
type PlainText struct {
	logger *zap.Logger
}

func NewPlainText(logger *zap.Logger) *PlainText {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlainText{logger: logger}
}

// ExtractText reads the file and returns its trimmed text content.
func (e *PlainText) ExtractText(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		e.logger.Warn("unsupported file type, skipping", zap.String("path", path))
		return "", nil
	}
}
