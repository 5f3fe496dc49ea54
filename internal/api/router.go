package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lyri-learn/backend/internal/annotate"
	"github.com/lyri-learn/backend/internal/api/handlers"
	"github.com/lyri-learn/backend/internal/api/middleware"
	"github.com/lyri-learn/backend/internal/auth"
	"github.com/lyri-learn/backend/internal/build"
	"github.com/lyri-learn/backend/internal/config"
	"github.com/lyri-learn/backend/internal/db"
)

const maxBodyBytes = 1 << 20 // JSON request bodies only

func NewRouter(database *db.Database, jwtService *auth.JWTService, cfg *config.Config, builder *build.Service, annotator *annotate.Annotator) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	// Handlers
	authHandler := handlers.NewAuthHandler(database, jwtService)
	songsHandler := handlers.NewSongsHandler(database, builder)
	documentHandler := handlers.NewDocumentHandler(builder)
	translateHandler := handlers.NewTranslateHandler(annotator)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		r.With(loginLimiter.Handler).Post("/auth/login", authHandler.Login)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(jwtService))

			// Auth
			r.Get("/auth/me", authHandler.Me)

			// Songs
			r.Post("/songs", songsHandler.Create)
			r.Get("/songs", songsHandler.List)
			r.Get("/songs/{id}", songsHandler.Get)
			r.With(middleware.RequireRole("admin")).Post("/songs/{id}/rebuild", songsHandler.Rebuild)

			// Documents and playback
			r.Get("/songs/{id}/document", documentHandler.GetDocument)
			r.Get("/songs/{id}/active", documentHandler.Active)

			// Utilities
			r.Post("/translate", translateHandler.Translate)
			r.Get("/languages", handlers.Languages)
		})
	})

	return r
}
