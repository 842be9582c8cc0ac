package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"alfredoptarigan/cv-analyzer/internal/config"
	"alfredoptarigan/cv-analyzer/internal/services"
)

// Ingests company reference documents (rubrics, guidelines, role profiles)
// into the vector collection so analyses can retrieve them as context.
//
// Usage:
//
//	go run scripts/ingest_documents.go -dir ./reference_docs -company "Acme Corp" -type evaluation_rubric
func main() {
	dir := flag.String("dir", "./reference_docs", "directory of PDF/DOCX reference documents")
	company := flag.String("company", "", "company the documents belong to")
	docType := flag.String("type", services.RefDocTypeGuideline, "document type: evaluation_rubric, evaluation_guideline or role_profile")
	flag.Parse()

	if *company == "" {
		log.Fatalln("❌ -company is required")
	}

	log.Println("🚀 Starting reference document ingestion...")

	cfg := config.Load()

	embedder, err := services.NewGeminiProvider(cfg.Providers.Gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize embedding provider: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	extractor := services.NewDocumentExtractor(cfg.Analysis.MinTextLength)
	chunker := services.NewTextChunker(220, 40)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("❌ Failed to read directory %s: %v", *dir, err)
	}

	ctx := context.Background()
	successCount := 0
	failCount := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".pdf" && ext != ".docx" && ext != ".doc" {
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		log.Printf("\n📄 Processing: %s", entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("   ❌ Failed to read file: %v", err)
			failCount++
			continue
		}

		content, err := extractor.Extract(data, entry.Name())
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}
		log.Printf("   ✅ Extracted %d pages, %d characters", content.PageCount, len(content.Text))

		chunks := chunker.ChunkText(content.Text)
		log.Printf("   ✂️  Created %d chunks", len(chunks))

		stored := 0
		for i, chunk := range chunks {
			embedding, err := embedder.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("   ❌ Failed to embed chunk %d: %v", i+1, err)
				continue
			}

			docID := fmt.Sprintf("%s_%s_chunk_%d", *docType, strings.TrimSuffix(entry.Name(), ext), i)

			if err := qdrantService.UpsertChunk(ctx, docID, *docType, *company, chunk, embedding); err != nil {
				log.Printf("   ❌ Failed to store chunk %d: %v", i+1, err)
				continue
			}
			stored++
		}

		log.Printf("   ✅ Stored %d/%d chunks", stored, len(chunks))
		if stored > 0 {
			successCount++
		} else {
			failCount++
		}
	}

	log.Printf("\n🏁 Ingestion complete: %d document(s) ingested, %d failed\n", successCount, failCount)
}
