// Package vectorstore keeps chunk embeddings in an embedded chromem-go
// database, one collection per tenant token. Each collection is paired with a
// manifest file (filename -> chunk count) because chromem does not expose
// document enumeration; the manifest is the chunk-metadata side of the
// persisted index.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"docchat/internal/domain"
)

// Config configures the vector store.
type Config struct {
	// Path is the base directory for the persisted index and manifests.
	// Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in process memory. Used by tests and the
	// "memory" store type.
	InMemory bool
	// Compress enables gzip compression of the persisted index.
	Compress bool
}

// manifest maps a document filename to the number of chunks indexed for it.
type manifest map[string]int

// Store is a chromem-go backed vector store with per-token collections.
type Store struct {
	db          *chromem.DB
	embedder    domain.Embedder
	chunker     domain.Chunker
	logger      *zap.Logger
	manifestDir string

	// locks serializes load-mutate-save per token; concurrent writers to the
	// same token would otherwise silently lose updates.
	locks sync.Map

	// mem holds manifests when running without persistence.
	memMu sync.Mutex
	mem   map[string]manifest
}

func NewStore(cfg Config, embedder domain.Embedder, chunker domain.Chunker, logger *zap.Logger) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("vectorstore: embedder is required")
	}
	if chunker == nil {
		return nil, fmt.Errorf("vectorstore: chunker is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		embedder: embedder,
		chunker:  chunker,
		logger:   logger,
		mem:      make(map[string]manifest),
	}

	if cfg.InMemory {
		s.db = chromem.NewDB()
		logger.Info("vector store initialized in memory")
		return s, nil
	}

	indexPath := filepath.Join(cfg.Path, "index")
	db, err := chromem.NewPersistentDB(indexPath, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}
	s.db = db
	s.manifestDir = filepath.Join(cfg.Path, "manifests")
	if err := os.MkdirAll(s.manifestDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}
	logger.Info("vector store initialized", zap.String("path", cfg.Path))
	return s, nil
}

func (s *Store) embeddingFunc() chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return s.embedder.Embed(ctx, text)
	}
}

func (s *Store) lock(token string) func() {
	v, _ := s.locks.LoadOrStore(token, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// loadOrCreate returns the token's collection and manifest, seeding a fresh
// collection with the bootstrap chunk so it is never empty.
func (s *Store) loadOrCreate(ctx context.Context, token string) (*chromem.Collection, manifest, error) {
	col, err := s.db.GetOrCreateCollection(token, nil, s.embeddingFunc())
	if err != nil {
		return nil, nil, fmt.Errorf("loading collection for %s: %w", token, err)
	}
	if col.Count() == 0 {
		boot := chromem.Document{
			ID:       domain.BootstrapFilename + "#0",
			Content:  "init",
			Metadata: map[string]string{"token": token, "filename": domain.BootstrapFilename},
		}
		if err := col.AddDocument(ctx, boot); err != nil {
			return nil, nil, fmt.Errorf("seeding collection for %s: %w", token, err)
		}
		man := manifest{domain.BootstrapFilename: 1}
		if err := s.writeManifest(token, man); err != nil {
			return nil, nil, err
		}
		s.logger.Info("created vector index", zap.String("token", token))
		return col, man, nil
	}
	man, err := s.readManifest(token)
	if err != nil {
		return nil, nil, err
	}
	return col, man, nil
}

// AddDocument chunks, embeds and indexes the text. A filename already present
// in the index is left untouched even if the text changed; deduplication is
// by filename only.
func (s *Store) AddDocument(ctx context.Context, token, filename, text string) error {
	defer s.lock(token)()

	col, man, err := s.loadOrCreate(ctx, token)
	if err != nil {
		return err
	}
	if _, ok := man[filename]; ok {
		s.logger.Debug("document already in vector store",
			zap.String("token", token), zap.String("filename", filename))
		return nil
	}

	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNoContent, filename)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:       fmt.Sprintf("%s#%d", filename, i),
			Content:  chunk,
			Metadata: map[string]string{"token": token, "filename": filename},
		}
	}
	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("indexing %s: %w", filename, err)
	}

	man[filename] = len(chunks)
	if err := s.writeManifest(token, man); err != nil {
		return err
	}
	s.logger.Info("document added to vector store",
		zap.String("token", token), zap.String("filename", filename),
		zap.Int("chunks", len(chunks)))
	return nil
}

// DeleteDocument removes every chunk of the filename from the token's index.
// Unknown filenames are a silent no-op.
func (s *Store) DeleteDocument(ctx context.Context, token, filename string) error {
	defer s.lock(token)()

	col, man, err := s.loadOrCreate(ctx, token)
	if err != nil {
		return err
	}
	if _, ok := man[filename]; !ok {
		return nil
	}
	if err := col.Delete(ctx, map[string]string{"filename": filename}, nil); err != nil {
		return fmt.Errorf("deleting %s: %w", filename, err)
	}
	delete(man, filename)
	if err := s.writeManifest(token, man); err != nil {
		return err
	}
	s.logger.Info("document deleted from vector store",
		zap.String("token", token), zap.String("filename", filename))
	return nil
}

// ListDocuments returns the distinct filenames present in the token's index,
// bootstrap entry included. The orchestrator's intersection with the file
// store is what hides it from users.
func (s *Store) ListDocuments(ctx context.Context, token string) ([]string, error) {
	defer s.lock(token)()

	_, man, err := s.loadOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(man))
	for name := range man {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SimilaritySearch ranks the token's chunks against the query and returns up
// to topK results, best first. A non-empty filenames slice restricts the
// search to chunks of those documents. Zero matching chunks yields an empty
// result, not an error.
func (s *Store) SimilaritySearch(ctx context.Context, token, query string, topK int, filenames []string) ([]domain.SearchResult, error) {
	defer s.lock(token)()

	col, man, err := s.loadOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	if len(filenames) > 0 {
		return s.scopedSearch(ctx, col, man, qvec, topK, filenames)
	}

	// Ask for one extra result so the bootstrap chunk can be dropped without
	// shrinking the answer. chromem rejects nResults above the collection
	// size, hence the clamp.
	n := topK + 1
	if total := col.Count(); n > total {
		n = total
	}
	if n == 0 {
		return nil, nil
	}
	results, err := col.QueryEmbedding(ctx, qvec, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, r := range results {
		if r.Metadata["filename"] == domain.BootstrapFilename {
			continue
		}
		out = append(out, toSearchResult(r))
		if len(out) == topK {
			break
		}
	}
	return out, nil
}

// scopedSearch rebuilds the ranking over the chunks of the requested
// filenames only, querying each file's chunks through a metadata filter and
// merging. Filenames are visited in sorted order and the merge sort is
// stable, keeping the ordering deterministic.
func (s *Store) scopedSearch(ctx context.Context, col *chromem.Collection, man manifest, qvec []float32, topK int, filenames []string) ([]domain.SearchResult, error) {
	seen := make(map[string]struct{}, len(filenames))
	scope := make([]string, 0, len(filenames))
	for _, filename := range filenames {
		if _, ok := seen[filename]; ok {
			continue
		}
		seen[filename] = struct{}{}
		scope = append(scope, filename)
	}
	sort.Strings(scope)

	var merged []domain.SearchResult
	for _, filename := range scope {
		chunkCount := man[filename]
		if chunkCount == 0 {
			continue
		}
		n := topK
		if n > chunkCount {
			n = chunkCount
		}
		results, err := col.QueryEmbedding(ctx, qvec, n, map[string]string{"filename": filename}, nil)
		if err != nil {
			return nil, fmt.Errorf("scoped search in %s: %w", filename, err)
		}
		for _, r := range results {
			merged = append(merged, toSearchResult(r))
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if len(merged) > topK {
		merged = merged[:topK]
	}
	return merged, nil
}

// ListUserTokens returns every token that has a collection in the store.
func (s *Store) ListUserTokens() ([]string, error) {
	collections := s.db.ListCollections()
	tokens := make([]string, 0, len(collections))
	for name := range collections {
		tokens = append(tokens, name)
	}
	sort.Strings(tokens)
	return tokens, nil
}

func toSearchResult(r chromem.Result) domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.Chunk{
			Token:    r.Metadata["token"],
			Filename: r.Metadata["filename"],
			Text:     r.Content,
		},
		Score: r.Similarity,
	}
}

func (s *Store) manifestPath(token string) string {
	return filepath.Join(s.manifestDir, token+".json")
}

func (s *Store) readManifest(token string) (manifest, error) {
	if s.manifestDir == "" {
		s.memMu.Lock()
		defer s.memMu.Unlock()
		man := manifest{}
		for k, v := range s.mem[token] {
			man[k] = v
		}
		return man, nil
	}
	data, err := os.ReadFile(s.manifestPath(token))
	if err != nil {
		if os.IsNotExist(err) {
			return manifest{}, nil
		}
		return nil, fmt.Errorf("reading manifest for %s: %w", token, err)
	}
	var man manifest
	if err := json.Unmarshal(data, &man); err != nil {
		return nil, fmt.Errorf("decoding manifest for %s: %w", token, err)
	}
	return man, nil
}

func (s *Store) writeManifest(token string, man manifest) error {
	if s.manifestDir == "" {
		s.memMu.Lock()
		defer s.memMu.Unlock()
		copied := manifest{}
		for k, v := range man {
			copied[k] = v
		}
		s.mem[token] = copied
		return nil
	}
	data, err := json.Marshal(man)
	if err != nil {
		return fmt.Errorf("encoding manifest for %s: %w", token, err)
	}
	// Temp file + rename keeps the manifest whole even if the write dies.
	tmp, err := os.CreateTemp(s.manifestDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing manifest for %s: %w", token, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing temp manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.manifestPath(token)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("saving manifest for %s: %w", token, err)
	}
	return nil
}
