// Package pipeline ties document storage, retrieval and generation into the
// question-answering flow: ingest documents per token, then answer queries
// using only the retrieved context.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/domain"
)

// DocumentStore is the pipeline-facing surface of the document repository.
type DocumentStore interface {
	AddDocument(ctx context.Context, token, filename, text string) error
	DeleteDocument(ctx context.Context, token, filename string) error
	ListDocuments(ctx context.Context, token string) ([]string, error)
	ListUserTokens(ctx context.Context) ([]string, error)
	Retrieve(ctx context.Context, token, query string, topK int, filenames []string) ([]domain.SearchResult, error)
}

// Config tunes pipeline behavior.
type Config struct {
	TopK                int
	SystemPrompt        string
	SummaryMaxSentences int
}

// Pipeline answers user queries from a token's ingested documents.
type Pipeline struct {
	store      DocumentStore
	extractor  domain.Extractor
	generator  domain.Generator
	summarizer domain.Summarizer
	logger     *zap.Logger

	topK         int
	systemPrompt string
	summaryMax   int
}

func New(store DocumentStore, extractor domain.Extractor, generator domain.Generator, summarizer domain.Summarizer, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 7
	}
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	summaryMax := cfg.SummaryMaxSentences
	if summaryMax <= 0 {
		summaryMax = 5
	}
	return &Pipeline{
		store:        store,
		extractor:    extractor,
		generator:    generator,
		summarizer:   summarizer,
		logger:       logger,
		topK:         topK,
		systemPrompt: systemPrompt,
		summaryMax:   summaryMax,
	}
}

// IngestOutcome reports what happened to one file during LoadToken.
type IngestOutcome struct {
	Filename string
	Summary  string
	Err      error
}

// Ingest extracts the file's text and adds it to the token's document set.
// Files without extractable text are skipped with domain.ErrNoContent; no
// partial index entry is created. Returns a short summary of the ingested
// text.
func (p *Pipeline) Ingest(ctx context.Context, token, filename, dir string) (string, error) {
	path := filepath.Join(dir, token, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, path)
	}
	text, err := p.extractor.ExtractText(path)
	if err != nil {
		return "", fmt.Errorf("extracting %s: %w", filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrNoContent, filename)
	}
	if err := p.store.AddDocument(ctx, token, filename, text); err != nil {
		return "", err
	}
	p.logger.Info("document ingested",
		zap.String("token", token), zap.String("filename", filename))

	summary := ""
	if p.summarizer != nil {
		if s, err := p.summarizer.Summarize(text, p.summaryMax); err == nil {
			summary = s
		}
	}
	return summary, nil
}

// LoadToken ingests every file found under the token's directory, one outcome
// per file. Per-file failures do not stop the batch.
func (p *Pipeline) LoadToken(ctx context.Context, token, dir string) ([]IngestOutcome, error) {
	entries, err := os.ReadDir(filepath.Join(dir, token))
	if err != nil {
		return nil, fmt.Errorf("reading token directory: %w", err)
	}
	var outcomes []IngestOutcome
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		summary, err := p.Ingest(ctx, token, e.Name(), dir)
		outcomes = append(outcomes, IngestOutcome{Filename: e.Name(), Summary: summary, Err: err})
	}
	return outcomes, nil
}

// Query answers the user's question from the token's documents. Returns
// domain.ErrNoDocuments when the token holds nothing and domain.ErrNoContext
// when retrieval finds no relevant chunks; both are normal outcomes the
// caller should phrase for the user.
func (p *Pipeline) Query(ctx context.Context, token, userQuery string, topK int) (string, error) {
	if strings.TrimSpace(userQuery) == "" {
		return "", fmt.Errorf("empty query")
	}
	if topK <= 0 {
		topK = p.topK
	}

	docs, err := p.store.ListDocuments(ctx, token)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: %s", domain.ErrNoDocuments, token)
	}

	searchQuery := p.preprocessQuery(ctx, userQuery)

	results, err := p.store.Retrieve(ctx, token, searchQuery, topK, nil)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", domain.ErrNoContext
	}

	contextText := buildContext(results)
	systemPrompt := p.systemPrompt + "\n\nContext:\n" + contextText

	answer, err := p.generator.Generate(ctx, systemPrompt, userQuery)
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}
	return answer, nil
}

// ListDocuments returns the token's document set.
func (p *Pipeline) ListDocuments(ctx context.Context, token string) ([]string, error) {
	return p.store.ListDocuments(ctx, token)
}

// ListUserTokens returns the tokens known to the document store.
func (p *Pipeline) ListUserTokens(ctx context.Context) ([]string, error) {
	return p.store.ListUserTokens(ctx)
}

// preprocessQuery compresses the user's question into search phrases via the
// model. Preprocessing is best effort: on failure the raw query is searched.
func (p *Pipeline) preprocessQuery(ctx context.Context, userQuery string) string {
	processed, err := p.generator.Generate(ctx, queryPreprocessPrompt, userQuery)
	if err != nil || strings.TrimSpace(processed) == "" {
		if err != nil {
			p.logger.Warn("query preprocessing failed, using raw query", zap.Error(err))
		}
		return userQuery
	}
	return processed
}

// buildContext concatenates the retrieved chunk texts, best match first,
// separated by blank lines.
func buildContext(results []domain.SearchResult) string {
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.Chunk.Text
	}
	return strings.Join(parts, "\n\n")
}
