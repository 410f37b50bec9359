package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking - sized for embedding input, overlap keeps sentence context across boundaries
	ChunkSize    = 1000
	ChunkOverlap = 200

	//retrieval
	SimilarityThreshold  = 0.3
	TopKDefault          = 5
	MaxSearchCandidates  = 200
	KeywordBoostCap      = 0.5
	EmbeddingDimOpenAI   = 1536
	EmbeddingDimGemini   = 1536
	EmbeddingDimLocal    = 384
	OpenAIEmbeddingModel = "text-embedding-3-small"
	GeminiEmbeddingModel = "gemini-embedding-001"
	LocalEmbeddingModel  = "sentence-transformers/all-MiniLM-L6-v2"
	LocalEmbeddingDir    = "./models"

	//generation
	OpenAIChatModel  = "gpt-4o-mini"
	GeminiChatModel  = "gemini-2.5-flash-lite-preview-09-2025"
	ModelTemperature = 0.7
	MaxAnswerTokens  = 1000
	SystemPrompt     = "You are a helpful AI assistant that answers questions based only on provided document context. Be concise but comprehensive, and mention which documents you're referencing when relevant."

	//provider timeouts - local inference gets longer than cloud calls
	CloudCallTimeout   = 30 * time.Second
	LocalCallTimeout   = 60 * time.Second
	ProbeTimeout       = 5 * time.Second
	ExtractPageTimeout = 10 * time.Second
	JobTimeout         = 5 * time.Minute

	//ocr - 2x upscale of the 72dpi page raster improves recognition accuracy
	OCRRasterDPI = 144
	OCRLanguage  = "eng"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DBs we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour

	UploadDirName = "uploads"
)

// Embedding provider selection, one of "openai", "gemini", "local".
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

func EmbeddingProvider() string {
	return envOrDefault("EMBEDDING_PROVIDER", ProviderOpenAI)
}

func OpenAIAPIKey() string { return os.Getenv("OPENAI_API_KEY") }

func GeminiAPIKey() string { return os.Getenv("GEMINI_API_KEY") }

func UseLocalLLM() bool {
	v, err := strconv.ParseBool(os.Getenv("USE_LOCAL_LLM"))
	return err == nil && v
}

func OllamaURL() string {
	return envOrDefault("OLLAMA_URL", "http://localhost:11434")
}

func LocalLLMModel() string {
	return envOrDefault("LOCAL_LLM_MODEL", "llama3.2:3b")
}

// DatabaseURL has no fallback: an unset value selects the in-memory stores
// instead of dialing a Postgres nobody configured.
func DatabaseURL() string { return os.Getenv("DATABASE_URL") }

func RedisAddr() string {
	return envOrDefault("REDIS_ADDR", "127.0.0.1:6379")
}

func RedisPassword() string { return os.Getenv("REDIS_PASSWORD") }

func AuthToken() string { return os.Getenv("AUTH_TOKEN") }

// NoAuthBypass disables bearer auth entirely; only for local development.
func NoAuthBypass() bool {
	v, err := strconv.ParseBool(os.Getenv("NO_AUTH_BYPASS"))
	return err == nil && v
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
