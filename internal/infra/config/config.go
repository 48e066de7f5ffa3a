package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is built once at startup and passed explicitly to constructors.
type Config struct {
	Env  string
	Port string

	// Corpus / index
	DocsPath   string
	Collection string
	TopK       int

	// Vector store backend: "chromem" (embedded) or "postgres"
	VectorBackend     string
	ChromemPersistDir string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string

	// OpenAI-compatible API
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	ChatModel      string
	EmbeddingModel string

	// Generation / outbound call tuning
	AnswerMaxTokens    int
	RequestTimeoutSecs int
	MinRequestGapMS    int
	EmbedCacheSize     int

	// Telemetry
	OTelEnabled  bool
	OTLPEndpoint string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is merged in first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		DocsPath:           getEnv("DOCS_PATH", "docs/products"),
		Collection:         getEnv("COLLECTION_NAME", "products"),
		TopK:               getEnvInt("TOP_K_DOCUMENTS", 3),
		VectorBackend:      getEnv("VECTOR_BACKEND", "chromem"),
		ChromemPersistDir:  getEnv("CHROMEM_PERSIST_DIR", ""),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "5432"),
		DBUser:             getEnv("DB_USER", "querybot"),
		DBPassword:         getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "querybot"),
		DBName:             getEnv("DB_NAME", "querybot"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:       getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
		ChatModel:          getEnv("MODEL_NAME", "gpt-4o"),
		EmbeddingModel:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		AnswerMaxTokens:    getEnvInt("ANSWER_MAX_TOKENS", 300),
		RequestTimeoutSecs: getEnvInt("REQUEST_TIMEOUT_SECONDS", 30),
		MinRequestGapMS:    getEnvInt("MIN_REQUEST_GAP_MS", 0),
		EmbedCacheSize:     getEnvInt("EMBED_CACHE_SIZE", 512),
		OTelEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTLPEndpoint:       getEnv("OTLP_ENDPOINT", "localhost:4318"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	// Docker-style secret: the variable points at a file holding the value.
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
