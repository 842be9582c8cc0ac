package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubEmbedder struct {
	err error
}

func (e *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type stubRefStore struct {
	chunks []ReferenceChunk
	err    error
}

func (s *stubRefStore) InitCollection() error { return nil }

func (s *stubRefStore) UpsertChunk(ctx context.Context, docID, docType, company, text string, embedding []float32) error {
	return nil
}

func (s *stubRefStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, company string, limit int) ([]ReferenceChunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.chunks, nil
}

func (s *stubRefStore) DeleteDocument(ctx context.Context, docID string) error { return nil }

func TestRetrieveContextFormatsChunks(t *testing.T) {
	retriever := NewContextRetriever(&stubEmbedder{}, &stubRefStore{chunks: []ReferenceChunk{
		{Score: 0.91, Text: "Ownership of production systems is weighted heavily.", DocType: RefDocTypeRubric},
		{Score: 0.84, Text: "Prefer candidates with payments experience.", DocType: RefDocTypeGuideline},
	}}, 3)

	got := retriever.RetrieveContext(context.Background(), "cv text", "Acme Corp")
	assert.Contains(t, got, "[1] (evaluation_rubric, relevance 0.91)")
	assert.Contains(t, got, "Ownership of production systems")
	assert.Contains(t, got, "[2] (evaluation_guideline, relevance 0.84)")
}

func TestRetrieveContextDegradesOnEmbeddingFailure(t *testing.T) {
	retriever := NewContextRetriever(&stubEmbedder{err: fmt.Errorf("quota exceeded")}, &stubRefStore{}, 3)
	assert.Empty(t, retriever.RetrieveContext(context.Background(), "cv text", "Acme Corp"))
}

func TestRetrieveContextDegradesOnSearchFailure(t *testing.T) {
	retriever := NewContextRetriever(&stubEmbedder{}, &stubRefStore{err: fmt.Errorf("connection refused")}, 3)
	assert.Empty(t, retriever.RetrieveContext(context.Background(), "cv text", "Acme Corp"))
}

func TestRetrieveContextEmptyWhenNoMatches(t *testing.T) {
	retriever := NewContextRetriever(&stubEmbedder{}, &stubRefStore{}, 3)
	assert.Empty(t, retriever.RetrieveContext(context.Background(), "cv text", "Acme Corp"))
}
