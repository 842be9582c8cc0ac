package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/cv-analyzer/internal/config"
	"alfredoptarigan/cv-analyzer/internal/handlers"
	"alfredoptarigan/cv-analyzer/internal/repositories"
	"alfredoptarigan/cv-analyzer/internal/services"
)

const appVersion = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	auditRepo := repositories.NewAuditRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	extractor := services.NewDocumentExtractor(cfg.Analysis.MinTextLength)
	renderer := services.NewPromptRenderer()
	selector := services.NewProviderSelector(cfg.Providers)

	artifacts := services.NewArtifactStorage(cfg.Storage.ArtifactPath)
	if err := artifacts.EnsureDir(); err != nil {
		log.Fatalf("❌ Failed to create artifact directory: %v", err)
	}
	log.Println("✅ Services initialized successfully")

	// Reference retrieval needs both an embedder and Qdrant. Either being
	// unavailable disables retrieval; analyses still run without context.
	retriever := buildRetriever(cfg)

	// Initialize analyzer
	analyzer := services.NewAnalyzerService(
		extractor,
		renderer,
		selector,
		retriever,
		auditRepo,
		artifacts,
		cfg.Analysis,
		cfg.Worker.RetryMaxAttempts,
	)
	log.Println("✅ Analyzer service initialized")

	// Initialize analysis pool
	pool := services.NewAnalysisPool(analyzer, cfg.Worker.Concurrency)
	pool.Start()

	// Initialize handlers
	analyzeHandler := handlers.NewAnalyzeHandler(pool, cfg.Storage.MaxFileSize)
	auditHandler := handlers.NewAuditHandler(auditRepo)
	healthHandler := handlers.NewHealthHandler(analyzer, appVersion)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AI CV Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	api.Get("/health", healthHandler.HandleHealth)
	api.Get("/prompts", healthHandler.HandlePromptVersions)
	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Get("/analyses", auditHandler.HandleListAnalyses)
	api.Get("/analyses/:id", auditHandler.HandleGetAnalysis)
	api.Get("/usage", auditHandler.HandleUsage)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI CV Analyzer API",
			"version": appVersion,
			"endpoints": []string{
				"POST /api/v1/analyze",
				"GET /api/v1/health",
				"GET /api/v1/prompts",
				"GET /api/v1/analyses",
				"GET /api/v1/analyses/:id",
				"GET /api/v1/usage",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		pool.Shutdown()
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func buildRetriever(cfg *config.Config) services.ContextRetriever {
	if cfg.Providers.Gemini.APIKey == "" {
		log.Println("⚠️ Reference retrieval disabled: no embedding provider configured")
		return nil
	}

	embedder, err := services.NewGeminiProvider(cfg.Providers.Gemini)
	if err != nil {
		log.Printf("⚠️ Reference retrieval disabled: %v\n", err)
		return nil
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Printf("⚠️ Reference retrieval disabled: %v\n", err)
		return nil
	}

	if err := qdrantService.InitCollection(); err != nil {
		log.Printf("⚠️ Reference retrieval disabled: %v\n", err)
		return nil
	}

	log.Println("✅ Reference retrieval initialized")
	return services.NewContextRetriever(embedder, qdrantService, 3)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
