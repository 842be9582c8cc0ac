package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Reference document types stored in the vector collection.
const (
	RefDocTypeRubric      = "evaluation_rubric"
	RefDocTypeGuideline   = "evaluation_guideline"
	RefDocTypeRoleProfile = "role_profile"
)

// QdrantService stores chunked company reference material (rubrics,
// guidelines, role profiles) and retrieves the chunks most similar to a CV.
type QdrantService interface {
	InitCollection() error
	UpsertChunk(ctx context.Context, docID, docType, company, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, company string, limit int) ([]ReferenceChunk, error)
	DeleteDocument(ctx context.Context, docID string) error
}

type ReferenceChunk struct {
	ID      string
	Score   float32
	Text    string
	DocType string
	Company string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewQdrantService(urlStr, apiKey, collectionName string) (QdrantService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port 6334 unless the URL says otherwise
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 output size
	}, nil
}

// InitCollection implements QdrantService.
func (q *qdrantService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Reference collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertChunk implements QdrantService.
func (q *qdrantService) UpsertChunk(ctx context.Context, docID, docType, company, text string, embedding []float32) error {
	pointID := uuid.New()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(pointID.String()),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"doc_id":   docID,
			"doc_type": docType,
			"company":  company,
			"text":     text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements QdrantService. An empty company searches the whole
// collection.
func (q *qdrantService) SearchSimilar(ctx context.Context, queryEmbedding []float32, company string, limit int) ([]ReferenceChunk, error) {
	var filter *qdrant.Filter
	if company != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("company", company),
			},
		}
	}

	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var chunks []ReferenceChunk
	for _, point := range searchResult {
		chunk := ReferenceChunk{Score: point.Score}

		if value, ok := payloadString(point.Payload, "doc_id"); ok {
			chunk.ID = value
		}
		if value, ok := payloadString(point.Payload, "text"); ok {
			chunk.Text = value
		}
		if value, ok := payloadString(point.Payload, "doc_type"); ok {
			chunk.DocType = value
		}
		if value, ok := payloadString(point.Payload, "company"); ok {
			chunk.Company = value
		}

		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// DeleteDocument implements QdrantService.
func (q *qdrantService) DeleteDocument(ctx context.Context, docID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("doc_id", docID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

func payloadString(payload map[string]*qdrant.Value, key string) (string, bool) {
	value, ok := payload[key]
	if !ok {
		return "", false
	}
	if str, ok := value.GetKind().(*qdrant.Value_StringValue); ok {
		return str.StringValue, true
	}
	return "", false
}
