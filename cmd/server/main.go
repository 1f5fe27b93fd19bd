package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/learnassure/course-assistant/internal/ai"
	"github.com/learnassure/course-assistant/internal/blobstore"
	"github.com/learnassure/course-assistant/internal/chat"
	"github.com/learnassure/course-assistant/internal/config"
	"github.com/learnassure/course-assistant/internal/course"
	"github.com/learnassure/course-assistant/internal/db"
	"github.com/learnassure/course-assistant/internal/httpapi"
	"github.com/learnassure/course-assistant/internal/httpapi/handlers"
	"github.com/learnassure/course-assistant/internal/rag"
	"github.com/learnassure/course-assistant/internal/store/redisstore"
	"github.com/learnassure/course-assistant/internal/transcription"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	db.Migrate(gdb)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rds.Ping(ctx); err != nil {
		log.Printf("[Main] redis unavailable, context cache disabled: %v", err)
		rds = nil
	}

	// Embedding capability is probed once; a missing model means the hash
	// fallback for the whole process lifetime.
	embedder := rag.NewEmbedder(cfg.EmbedModelPath, cfg.EmbedTokenizerPath, cfg.ONNXLibraryPath)
	embedder.Detect()
	defer embedder.Close()

	ragStore := rag.NewStore(gdb)
	searcher := rag.NewSearcher(ragStore, embedder)
	indexer := rag.NewIndexer(ragStore, embedder)

	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m, cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})

	provider, err := reg.Get(ctx, cfg.AIProvider, "")
	if err != nil {
		log.Fatalf("ai provider: %v", err)
	}

	courses := course.NewRepo(gdb)
	jobs := transcription.NewRepo(gdb)

	engine := transcription.NewCommandEngine(cfg.TranscriberCommand, cfg.TranscriberArgs)
	worker := transcription.NewWorker(jobs, courses, engine, cfg.MediaRoot).
		WithIndexer(indexer)
	if rds != nil {
		worker = worker.WithContextCache(rds)
	}
	if cfg.MinioEndpoint != "" {
		blob, err := blobstore.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Printf("[Main] blob store unavailable, local media only: %v", err)
		} else {
			worker = worker.WithBlobStore(blob)
		}
	}

	queue := transcription.NewQueue(jobs, worker, cfg.WorkerConcurrency)
	defer queue.Close()

	contexts := chat.NewContextBuilder(courses, jobs, rds)
	chatSvc := chat.NewService(chat.NewRepo(gdb), provider, searcher, contexts, cfg.GenerationTimeout)

	h := handlers.NewHandler(gdb, cfg, rds, queue, indexer, chatSvc)
	r := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		log.Printf("[Main] listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[Main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] shutdown: %v", err)
	}
}
