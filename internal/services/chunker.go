package services

import "strings"

// TextChunker splits reference documents into overlapping word windows
// before embedding. Overlap keeps sentences that straddle a boundary
// retrievable from both sides.
type TextChunker interface {
	ChunkText(text string) []string
}

type textChunker struct {
	chunkSize int // words per chunk
	overlap   int // words shared between consecutive chunks
}

func NewTextChunker(chunkSize, overlap int) TextChunker {
	if chunkSize <= 0 {
		chunkSize = 220
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &textChunker{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// ChunkText implements TextChunker.
func (t *textChunker) ChunkText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	if len(words) <= t.chunkSize {
		return []string{strings.Join(words, " ")}
	}

	step := t.chunkSize - t.overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + t.chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}

	return chunks
}
