package services

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Embedder produces vector embeddings for reference retrieval.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ContextRetriever fetches company reference chunks relevant to a CV. It is
// an optional collaborator of the analyzer: retrieval failures degrade to an
// empty context rather than failing the run.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, cvText, company string) string
}

type referenceRetriever struct {
	embedder Embedder
	store    QdrantService
	limit    int
}

func NewContextRetriever(embedder Embedder, store QdrantService, limit int) ContextRetriever {
	if limit <= 0 {
		limit = 3
	}
	return &referenceRetriever{
		embedder: embedder,
		store:    store,
		limit:    limit,
	}
}

// RetrieveContext implements ContextRetriever.
func (r *referenceRetriever) RetrieveContext(ctx context.Context, cvText, company string) string {
	embedding, err := r.embedder.GenerateEmbedding(ctx, cvText)
	if err != nil {
		log.Printf("⚠️ Failed to embed CV for reference retrieval: %v\n", err)
		return ""
	}

	chunks, err := r.store.SearchSimilar(ctx, embedding, company, r.limit)
	if err != nil {
		log.Printf("⚠️ Reference search failed: %v\n", err)
		return ""
	}

	if len(chunks) == 0 {
		return ""
	}

	log.Printf("📄 Retrieved %d reference chunk(s) for context\n", len(chunks))
	return FormatReferenceContext(chunks)
}

// FormatReferenceContext renders retrieved chunks as a block the prompt
// templates can splice in verbatim.
func FormatReferenceContext(chunks []ReferenceChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, chunk := range chunks {
		label := chunk.DocType
		if label == "" {
			label = "reference"
		}
		sb.WriteString(fmt.Sprintf("[%d] (%s, relevance %.2f)\n%s\n", i+1, label, chunk.Score, strings.TrimSpace(chunk.Text)))
		if i < len(chunks)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
