package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_ShortTextIsOneChunk(t *testing.T) {
	c := NewChunker()
	chunks := c.Split("a short paragraph")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short paragraph", chunks[0])
}

func TestChunker_EmptyTextYieldsNoChunks(t *testing.T) {
	c := NewChunker()
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\n  "))
}

func TestChunker_RespectsChunkSize(t *testing.T) {
	c := NewChunker(func(o *ChunkerOptions) {
		o.ChunkSize = 50
		o.ChunkOverlap = 10
	})

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("word ")
	}
	chunks := c.Split(sb.String())
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 50, "chunk exceeds size: %q", chunk)
	}
}

func TestChunker_PrefersParagraphBoundaries(t *testing.T) {
	c := NewChunker(func(o *ChunkerOptions) {
		o.ChunkSize = 30
		o.ChunkOverlap = 0
	})

	text := "first paragraph here\n\nsecond paragraph here"
	chunks := c.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, "first paragraph here", chunks[0])
	assert.Equal(t, "second paragraph here", chunks[1])
}

func TestChunker_ZeroOverlapDoesNotRepeatFlushedText(t *testing.T) {
	c := NewChunker(func(o *ChunkerOptions) {
		o.ChunkSize = 12
		o.ChunkOverlap = 0
	})

	text := "alpha beta\n\ngamma delta\n\nepsilon zeta"
	chunks := c.Split(text)
	require.Equal(t, []string{"alpha beta", "gamma delta", "epsilon zeta"}, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 12, "chunk exceeds size: %q", chunk)
	}
}

func TestChunker_HardSplitsUnbrokenText(t *testing.T) {
	c := NewChunker(func(o *ChunkerOptions) {
		o.ChunkSize = 10
		o.ChunkOverlap = 2
	})

	text := strings.Repeat("x", 35)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 10)
	}

	// All content must survive splitting.
	joined := ""
	for i, chunk := range chunks {
		if i == 0 {
			joined = chunk
			continue
		}
		joined += chunk[min(2, len(chunk)):]
	}
	assert.Equal(t, len(text), len(joined))
}

func TestChunker_InvalidOverlapFallsBack(t *testing.T) {
	c := NewChunker(func(o *ChunkerOptions) {
		o.ChunkSize = 100
		o.ChunkOverlap = 500
	})
	assert.Equal(t, 20, c.overlap)
}
