package domain

import "errors"

// Sentinel errors shared across the storage and pipeline layers. Callers
// distinguish "nothing there" outcomes from real failures with errors.Is.
var (
	// ErrDocumentNotFound is returned when a (token, filename) pair does not
	// exist in the file store.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNoContent is returned when text extraction yields nothing; the file
	// is skipped and no index entry is created.
	ErrNoContent = errors.New("document has no extractable text")

	// ErrNoDocuments is returned when a token has no documents at all.
	ErrNoDocuments = errors.New("no documents for token")

	// ErrNoContext is returned when retrieval finds no relevant chunks for a
	// query. It is a normal outcome, not a failure.
	ErrNoContext = errors.New("no relevant context found")
)
