package docstore

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/chunker"
	"docchat/internal/domain"
	"docchat/internal/filestore"
	"docchat/internal/vectorstore"
)

type bowEmbedder struct{}

func (bowEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 64)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?:;\"'")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%64]++
	}
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v * v)
	}
	if sumSq == 0 {
		vec[0] = 1
		return vec, nil
	}
	norm := float32(1 / math.Sqrt(sumSq))
	for i := range vec {
		vec[i] *= norm
	}
	return vec, nil
}

func newTestStore(t *testing.T) (*Store, *filestore.Store, *vectorstore.Store) {
	t.Helper()
	files, err := filestore.NewStore(t.TempDir(), nil)
	require.NoError(t, err)
	vectors, err := vectorstore.NewStore(vectorstore.Config{InMemory: true},
		bowEmbedder{}, chunker.NewCharacterChunker(200, 40), nil)
	require.NoError(t, err)
	return NewStore(files, vectors, nil), files, vectors
}

func TestIntersectionListing(t *testing.T) {
	ctx := context.Background()
	store, files, vectors := newTestStore(t)

	// A document known only to the file store must stay invisible.
	require.NoError(t, files.AddDocument("t1", "orphan.txt", "file side only"))

	docs, err := store.ListDocuments(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, docs)

	// Once the vector side catches up the document becomes real.
	require.NoError(t, vectors.AddDocument(ctx, "t1", "orphan.txt", "file side only"))

	docs, err = store.ListDocuments(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"orphan.txt"}, docs)
}

func TestBootstrapNeverListed(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	require.NoError(t, store.AddDocument(ctx, "t1", "a.txt", "regular document text"))

	docs, err := store.ListDocuments(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, docs)
	assert.NotContains(t, docs, domain.BootstrapFilename)
}

func TestDeleteHidesDocument(t *testing.T) {
	ctx := context.Background()
	store, files, _ := newTestStore(t)

	require.NoError(t, store.AddDocument(ctx, "t1", "a.txt", "soon to be deleted"))
	require.NoError(t, store.DeleteDocument(ctx, "t1", "a.txt"))

	// Raw text stays behind as an audit trail, but the document is gone from
	// the intersection view.
	fileDocs, err := files.ListDocuments("t1")
	require.NoError(t, err)
	assert.Contains(t, fileDocs, "a.txt")

	docs, err := store.ListDocuments(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestListUserTokensIntersection(t *testing.T) {
	ctx := context.Background()
	store, files, _ := newTestStore(t)

	require.NoError(t, store.AddDocument(ctx, "both", "a.txt", "alpha"))
	require.NoError(t, files.AddDocument("file-only", "b.txt", "beta"))

	tokens, err := store.ListUserTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"both"}, tokens)
}

func TestRetrieveScenario(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t)

	require.NoError(t, store.AddDocument(ctx, "t1", "policy.txt", "Vacation days: 20 per year."))

	docs, err := store.ListDocuments(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"policy.txt"}, docs)

	results, err := store.Retrieve(ctx, "t1", "How many vacation days?", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Chunk.Text, "Vacation days: 20 per year.")
}
