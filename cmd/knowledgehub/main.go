package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"knowledgehub/internal/api"
	"knowledgehub/internal/config"
	"knowledgehub/internal/llm"
	"knowledgehub/internal/repository"
	"knowledgehub/internal/service"
	"knowledgehub/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// .env is optional; environment variables override file config either way.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer logger.Sync()

	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	documentRepo := repository.NewDocumentRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	userRepo := repository.NewUserRepository(db)

	blobs := storage.New(cfg.Storage.Documents)

	chatClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.ChatModel)

	var embedder service.Embedder
	if cfg.LLM.APIKey != "" {
		embeddingClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.EmbeddingModel)
		embedder = service.NewLLMEmbedder(embeddingClient, logger)
	} else {
		logger.Warn("no llm api key configured, chunks will be stored without embeddings")
	}

	ingestService := service.NewIngestService(documentRepo, chunkRepo, blobs, embedder, cfg, logger)
	documentService := service.NewDocumentService(documentRepo, chunkRepo, conversationRepo, blobs, logger)
	retrievalService := service.NewRetrievalService(chunkRepo, logger)
	chatService := service.NewChatService(retrievalService, conversationRepo, chatClient, logger)

	router := api.SetupRouter(cfg, api.Services{
		Ingest:    ingestService,
		Documents: documentService,
		Chat:      chatService,
		Users:     userRepo,
	}, logger)

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("address", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
