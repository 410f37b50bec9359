// @title           DocuQuery API
// @version         1.0
// @description     This API handles document uploads, asynchronous extraction and question answering
// @termsOfService  http://swagger.io/terms/

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/data/blobStore"
	"github.com/avanth/docuquery/internal/data/pgstore"
	"github.com/avanth/docuquery/internal/data/store"
	"github.com/avanth/docuquery/internal/domain/docModel"
	jobmodel "github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/handlers"
	"github.com/avanth/docuquery/internal/job"
	"github.com/avanth/docuquery/internal/rag"
	"github.com/avanth/docuquery/internal/rag/embedding"
	"github.com/avanth/docuquery/internal/rag/embedding/googleEmbedding"
	"github.com/avanth/docuquery/internal/rag/embedding/localEmbedding"
	"github.com/avanth/docuquery/internal/rag/embedding/openaiEmbedding"
	"github.com/avanth/docuquery/internal/rag/extract"
	"github.com/avanth/docuquery/internal/rag/llm"
	"github.com/avanth/docuquery/internal/rag/llm/gemini"
	"github.com/avanth/docuquery/internal/rag/llm/ollama"
	"github.com/avanth/docuquery/internal/rag/llm/openaiLLM"
	"github.com/avanth/docuquery/internal/server"
	"github.com/avanth/docuquery/internal/worker"
	"github.com/avanth/docuquery/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	//.env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	if jobStore := store.GetRedisJobStore(serviceContext); jobStore != nil {
		serviceConfig.JobStore = jobStore
	}
	if messageStore := store.GetRedisMessageStore(serviceContext); messageStore != nil {
		serviceConfig.MessageStore = messageStore
	}
	if serviceConfig.JobStore == nil || serviceConfig.MessageStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	embedder := selectEmbedder(serviceContext, logger)
	if embedder == nil {
		logger.Error("No embedding provider could be initialized. Shutting down.")
		return
	}

	docs, index := openDocumentStores(embedder.Dimension(), logger)

	blobs, err := blobStore.NewLocalBlobStore(config.UploadDirName)
	if err != nil {
		logger.Error("Could not prepare upload directory. Shutting down.", "error", err)
		return
	}

	chain := buildGenerationChain(serviceContext)

	ragService := rag.NewService(docs, index, blobs, extract.NewEngine(), embedder, chain)

	handlers.InitJobHandler(handlers.Services{
		JobService: service,
		DocStore:   docs,
		BlobStore:  blobs,
		RagService: ragService,
	})

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// selectEmbedder honors EMBEDDING_PROVIDER; a cloud provider missing its
// key falls back to the local ONNX model so the pipeline keeps working.
func selectEmbedder(ctx context.Context, logger *logger_i.Logger) embedding.Embedder {
	var embedder embedding.Embedder

	switch provider := config.EmbeddingProvider(); provider {
	case config.ProviderOpenAI:
		embedder = openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIAPIKey())
	case config.ProviderGemini:
		embedder = googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GeminiEmbeddingModel, config.GeminiAPIKey())
	case config.ProviderLocal:
		return localEmbedding.GetLocalEmbeddingClient(ctx)
	default:
		logger.Warn("Unknown embedding provider, using local model", "provider", provider)
		return localEmbedding.GetLocalEmbeddingClient(ctx)
	}

	if embedder == nil {
		logger.Warn("Configured embedding provider unavailable, using local model")
		return localEmbedding.GetLocalEmbeddingClient(ctx)
	}
	return embedder
}

// openDocumentStores wires Postgres/pgvector; without a DATABASE_URL the
// in-memory store backs both interfaces, useful for local runs and tests.
func openDocumentStores(embeddingDim int, logger *logger_i.Logger) (docModel.DocumentStore, docModel.VectorIndex) {
	databaseURL := config.DatabaseURL()
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set, documents are kept in memory")
		memory := store.InitInMemoryDocStore()
		return memory, memory
	}

	db, err := pgstore.Open(databaseURL, embeddingDim)
	if err != nil {
		logger.Error("Postgres is offline, documents are kept in memory", "error", err)
		memory := store.InitInMemoryDocStore()
		return memory, memory
	}
	return pgstore.NewDocumentStore(db), pgstore.NewVectorIndex(db)
}

// buildGenerationChain orders providers by preference: local ollama when
// requested, then OpenAI, then Gemini. Nil constructor results drop out.
func buildGenerationChain(ctx context.Context) *llm.Chain {
	var providers []llm.Provider
	if config.UseLocalLLM() {
		providers = append(providers, ollama.NewClient(config.OllamaURL(), config.LocalLLMModel()))
	}
	providers = append(providers,
		openaiLLM.GetOpenAIClient(config.OpenAIAPIKey()),
		gemini.GetGeminiClient(ctx, config.GeminiChatModel, config.GeminiAPIKey()),
	)
	return llm.NewChain(providers...)
}
