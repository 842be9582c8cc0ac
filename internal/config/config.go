package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Providers ProvidersConfig
	Analysis  AnalysisConfig
	Storage   StorageConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// ProviderConfig holds one vendor's credentials and model settings.
// An empty APIKey leaves the vendor out of the configured set; it is
// never a startup failure.
type ProviderConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
	Timeout     time.Duration
}

type ProvidersConfig struct {
	OpenAI    ProviderConfig
	Anthropic ProviderConfig
	Gemini    ProviderConfig

	// DefaultProvider is consulted when a request asks for "auto".
	DefaultProvider string
}

type AnalysisConfig struct {
	DefaultPromptVersion string
	RequestTimeout       time.Duration
	MinTextLength        int
}

type StorageConfig struct {
	ArtifactPath string
	MaxFileSize  int64
}

type WorkerConfig struct {
	Concurrency      int
	RetryMaxAttempts int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "cv_analyzer"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "cv_analyzer_refs"),
		},
		Providers: ProvidersConfig{
			OpenAI: ProviderConfig{
				APIKey:      getEnv("OPENAI_API_KEY", ""),
				Model:       getEnv("OPENAI_MODEL", "gpt-4-turbo-preview"),
				Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.3),
				MaxTokens:   int32(getEnvAsInt("OPENAI_MAX_TOKENS", 4000)),
				Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", "120s"),
			},
			Anthropic: ProviderConfig{
				APIKey:      getEnv("ANTHROPIC_API_KEY", ""),
				Model:       getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
				Temperature: getEnvAsFloat32("ANTHROPIC_TEMPERATURE", 0.3),
				MaxTokens:   int32(getEnvAsInt("ANTHROPIC_MAX_TOKENS", 4000)),
				Timeout:     getEnvAsDuration("ANTHROPIC_TIMEOUT", "120s"),
			},
			Gemini: ProviderConfig{
				APIKey:      getEnv("GEMINI_API_KEY", ""),
				Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
				Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.3),
				MaxTokens:   int32(getEnvAsInt("GEMINI_MAX_TOKENS", 4000)),
				Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", "120s"),
			},
			DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", ""),
		},
		Analysis: AnalysisConfig{
			DefaultPromptVersion: getEnv("DEFAULT_PROMPT_VERSION", "default"),
			RequestTimeout:       getEnvAsDuration("ANALYSIS_TIMEOUT", "180s"),
			MinTextLength:        getEnvAsInt("MIN_CV_TEXT_LENGTH", 100),
		},
		Storage: StorageConfig{
			ArtifactPath: getEnv("ARTIFACT_PATH", "./artifacts"),
			MaxFileSize:  getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvAsInt("WORKER_CONCURRENCY", 3),
			RetryMaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 0),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
