package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"sportmetrics.nl/chat-service/internal/api"
	"sportmetrics.nl/chat-service/internal/config"
	"sportmetrics.nl/chat-service/internal/core"
	"sportmetrics.nl/chat-service/internal/store"
	"sportmetrics.nl/chat-service/internal/utils"
)

// unconfiguredGenerator stands in for Gemini while no API key is set. The
// handler rejects requests before generation in that case.
type unconfiguredGenerator struct{}

func (unconfiguredGenerator) Generate(context.Context, string, int32) (core.GenerationResult, error) {
	return core.GenerationResult{}, errors.New("GEMINI_API_KEY is not configured")
}

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	warmFlag := flag.Bool("warm", false, "Load the knowledge documents once at startup and log the count")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Knowledge sources: the knowledge directory plus the optional gas analysis guide
	extractor := utils.NewDocumentExtractor(cfg.KnowledgeTextMaxChars)
	sources := []store.DocumentSource{
		store.NewDirectorySource(os.DirFS(cfg.KnowledgeDir), ".", extractor, cfg.KnowledgeTextMaxChars),
	}
	if cfg.AuxiliaryFile != "" {
		sources = append(sources, store.NewFileSource(
			os.DirFS(filepath.Dir(cfg.AuxiliaryFile)), filepath.Base(cfg.AuxiliaryFile),
			extractor, cfg.KnowledgeTextMaxChars))
	}
	knowledge := store.NewKnowledgeStore(cfg.KnowledgeCacheTTL, sources)

	if *warmFlag {
		docs, err := knowledge.GetDocuments(ctx)
		if err != nil {
			log.Printf("Knowledge warm-up failed: %v", err)
		} else {
			log.Printf("Knowledge warm-up loaded %d documents", len(docs))
		}
	}

	if cfg.WatchKnowledgeDir {
		watcher, err := store.NewKnowledgeWatcher(knowledge)
		if err != nil {
			log.Printf("Knowledge watcher unavailable: %v", err)
		} else {
			defer watcher.Stop()
			changes, err := watcher.Watch(ctx, cfg.KnowledgeDir)
			if err != nil {
				log.Printf("Not watching %s: %v", cfg.KnowledgeDir, err)
			} else {
				go func() {
					for name := range changes {
						log.Printf("Knowledge file changed, cache invalidated: %s", name)
					}
				}()
			}
		}
	}

	// Initialize LLM service
	var generator core.Generator = unconfiguredGenerator{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := core.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer gemini.Close()
		generator = gemini
	}

	engine := core.NewCompletionEngine(generator, core.CompletionConfig{
		PrimaryMaxTokens:      int32(cfg.PrimaryMaxTokens),
		ContinuationMaxTokens: int32(cfg.ContinuationMaxTokens),
		MaxContinuationPasses: cfg.MaxContinuationPasses,
		MinIncompleteChars:    core.DefaultMinIncompleteChars,
		TailChars:             core.DefaultContinuationTailChars,
	}, nil)

	// Initialize Chat service
	chatService := core.NewChatService(knowledge, engine, core.Limits{
		ReportMaxChars:     cfg.ReportTextMaxChars,
		LiteratureMaxChars: cfg.LiteratureContextMaxChars,
	})

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(chatService, cfg)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second, // Request bodies may carry a base64 PDF
		WriteTimeout: 180 * time.Second, // Up to four sequential Gemini calls
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		return
	}

	log.Println("Server exiting gracefully")
}
