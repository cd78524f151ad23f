package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortText(t *testing.T) {
	c := NewCharacterChunker(100, 20)
	chunks := c.Split("hello world")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	c := NewCharacterChunker(100, 20)
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\t"))
}

func TestSplitChunkCount(t *testing.T) {
	cases := []struct {
		length, size, overlap int
	}{
		{1000, 100, 20},
		{999, 100, 20},
		{101, 100, 20},
		{100, 100, 20},
		{250, 80, 40},
	}
	for _, tc := range cases {
		c := NewCharacterChunker(tc.size, tc.overlap)
		text := strings.Repeat("a", tc.length)
		chunks := c.Split(text)

		want := 1
		if tc.length > tc.size {
			step := tc.size - tc.overlap
			want = (tc.length - tc.overlap + step - 1) / step
		}
		assert.Len(t, chunks, want, "length=%d size=%d overlap=%d", tc.length, tc.size, tc.overlap)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	const size, overlap = 50, 10
	c := NewCharacterChunker(size, overlap)
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)

	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	var b strings.Builder
	for i, ch := range chunks {
		runes := []rune(ch)
		if i == 0 {
			b.WriteString(ch)
			continue
		}
		require.GreaterOrEqual(t, len(runes), overlap)
		b.WriteString(string(runes[overlap:]))
	}
	assert.Equal(t, text, b.String())
}

func TestSplitKeepsInteriorWhitespaceWindows(t *testing.T) {
	c := NewCharacterChunker(10, 0)
	text := "aaaaaaaaaa" + strings.Repeat(" ", 10) + "bbbbbbbbbb"

	chunks := c.Split(text)
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat(" ", 10), chunks[1])
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitOverlapShared(t *testing.T) {
	c := NewCharacterChunker(30, 10)
	text := strings.Repeat("abcdefghij", 12)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		assert.Equal(t, string(prev[len(prev)-10:]), string(cur[:10]))
	}
}

func TestSplitMultiByte(t *testing.T) {
	c := NewCharacterChunker(10, 2)
	text := strings.Repeat("привет мир", 5)
	for _, ch := range c.Split(text) {
		assert.True(t, len([]rune(ch)) <= 10)
		assert.Equal(t, ch, string([]rune(ch)))
	}
}
