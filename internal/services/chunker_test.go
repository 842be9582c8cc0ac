package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShortInputSingleChunk(t *testing.T) {
	chunker := NewTextChunker(50, 10)

	chunks := chunker.ChunkText("short reference rubric")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short reference rubric", chunks[0])
}

func TestChunkTextEmptyInput(t *testing.T) {
	chunker := NewTextChunker(50, 10)
	assert.Nil(t, chunker.ChunkText("   \n\t "))
}

func TestChunkTextOverlappingWindows(t *testing.T) {
	words := []string{"w0", "w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8", "w9"}
	chunker := NewTextChunker(4, 1)

	chunks := chunker.ChunkText(strings.Join(words, " "))
	require.Equal(t, []string{
		"w0 w1 w2 w3",
		"w3 w4 w5 w6",
		"w6 w7 w8 w9",
	}, chunks)
}

func TestChunkTextLastChunkCoversTail(t *testing.T) {
	words := make([]string, 11)
	for i := range words {
		words[i] = "word"
	}
	chunker := NewTextChunker(4, 1)

	chunks := chunker.ChunkText(strings.Join(words, " "))
	require.NotEmpty(t, chunks)
	// 11 words, step 3: windows at 0, 3, 6, 9; the last one holds 2 words
	assert.Len(t, chunks, 4)
	assert.Equal(t, "word word", chunks[len(chunks)-1])
}
