package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lyri-learn/backend/internal/annotate"
	"github.com/lyri-learn/backend/internal/api"
	"github.com/lyri-learn/backend/internal/auth"
	"github.com/lyri-learn/backend/internal/build"
	"github.com/lyri-learn/backend/internal/cache"
	"github.com/lyri-learn/backend/internal/config"
	"github.com/lyri-learn/backend/internal/db"
	"github.com/lyri-learn/backend/internal/lyrics"
)

func main() {
	cfg := config.Load()

	// Ensure data directory exists
	os.MkdirAll(cfg.DataPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	// Annotation cache: in-process memory in front of a shared store.
	// Redis when configured, otherwise the SQLite cache_entries table.
	var slow cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		slow = redisCache
		log.Println("Annotation cache: memory + redis")
	} else {
		slow = cache.NewSQLite(database.DB())
		log.Println("Annotation cache: memory + sqlite")
	}
	annotationCache := cache.NewTiered(cache.NewMemory(), slow)

	// Translation engine
	translator := selectTranslator(cfg)
	if translator == nil {
		log.Fatal("No translation engine configured. Set DEEPL_API_KEY or OPENAI_API_KEY.")
	}
	log.Printf("Translation engine: %s", translator.Name())

	// POS tagging rides on the OpenAI key; without it tokens carry
	// translations only.
	var tagger annotate.Tagger
	if cfg.OpenAIKey != "" {
		tagger = annotate.WithTaggerBreaker(annotate.NewOpenAITagger(cfg.OpenAIKey))
		log.Println("POS tagging enabled")
	}

	annotator := annotate.New(translator, tagger, annotationCache, cfg.AnnotateConcurrency)

	// Lyrics provider and build pipeline
	provider := lyrics.NewLRCLibProvider()
	builder := build.NewService(provider, annotator, database)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, builder, annotator)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		database.Close()
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func selectTranslator(cfg *config.Config) annotate.Translator {
	switch cfg.TranslateEngine {
	case "deepl":
		if cfg.DeepLKey == "" {
			log.Fatal("TRANSLATE_ENGINE=deepl but DEEPL_API_KEY is not set")
		}
		return annotate.WithTranslatorBreaker(annotate.NewDeepLTranslator(cfg.DeepLKey))
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Fatal("TRANSLATE_ENGINE=openai but OPENAI_API_KEY is not set")
		}
		return annotate.WithTranslatorBreaker(annotate.NewOpenAITranslator(cfg.OpenAIKey))
	case "":
		// Pick by available credentials, DeepL first.
		if cfg.DeepLKey != "" {
			return annotate.WithTranslatorBreaker(annotate.NewDeepLTranslator(cfg.DeepLKey))
		}
		if cfg.OpenAIKey != "" {
			return annotate.WithTranslatorBreaker(annotate.NewOpenAITranslator(cfg.OpenAIKey))
		}
		return nil
	default:
		log.Fatalf("Unknown TRANSLATE_ENGINE: %s", cfg.TranslateEngine)
		return nil
	}
}
