package domain

import "context"

// BootstrapFilename marks the placeholder chunk inserted into every freshly
// created tenant index so the index is never empty and can always be loaded.
// It is never surfaced through document listings.
const BootstrapFilename = "__init__"

// Chunk is a bounded piece of a document, the unit of embedding and retrieval.
type Chunk struct {
	Token    string
	Filename string
	Text     string
}

// SearchResult represents a retrieved chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// Session identifies which tenant a front-end user is currently acting for.
type Session struct {
	Token      string
	Privileged bool
}

// Active reports whether a token has been selected for this session.
func (s Session) Active() bool { return s.Token != "" }

// Chunker splits raw text into overlapping windows suitable for embedding.
type Chunker interface {
	Split(text string) []string
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces an answer from a system prompt and a user question.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, question string) (string, error)
}

// Extractor pulls plain text out of a document file. An empty result means
// the file carries no usable text and must not be ingested.
type Extractor interface {
	ExtractText(path string) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// FileStore keeps raw document text on disk, one subtree per tenant token.
type FileStore interface {
	AddDocument(token, filename, text string) error
	DocumentPath(token, filename string) (string, error)
	ListDocuments(token string) ([]string, error)
	ListUserTokens() ([]string, error)
}

// VectorStore keeps chunk embeddings in a persisted per-tenant index.
type VectorStore interface {
	AddDocument(ctx context.Context, token, filename, text string) error
	DeleteDocument(ctx context.Context, token, filename string) error
	ListDocuments(ctx context.Context, token string) ([]string, error)
	SimilaritySearch(ctx context.Context, token, query string, topK int, filenames []string) ([]SearchResult, error)
	ListUserTokens() ([]string, error)
}
