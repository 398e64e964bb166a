//	@title			Gallery API
//	@version		1.0
//	@description	Backend for the photo gallery — direct-to-storage uploads, albums, curation.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/lumen/gallery/internal/album"
	"github.com/lumen/gallery/internal/auth"
	"github.com/lumen/gallery/internal/config"
	"github.com/lumen/gallery/internal/db"
	appMiddleware "github.com/lumen/gallery/internal/middleware"
	"github.com/lumen/gallery/internal/photo"
	"github.com/lumen/gallery/internal/storage"

	_ "github.com/lumen/gallery/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
		cfg.PresignExpires,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	if err := authSvc.EnsureBootstrapAdmin(context.Background()); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	photoRepo := photo.NewRepository(pool)
	photoSvc := photo.NewService(photoRepo, store, cfg.PhotosPrefix)
	photoHandler := photo.NewHandler(photoSvc)

	albumRepo := album.NewRepository(pool)
	albumSvc := album.NewService(albumRepo, store)
	albumHandler := album.NewHandler(albumSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	requireAdmin := appMiddleware.RequireAdmin(cfg.JWTSecret)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoint
		r.Post("/auth/login", authHandler.Login)

		// Public gallery endpoints
		r.Get("/photos/public", photoHandler.ListPublic)
		r.Get("/albums/public", albumHandler.ListPublic)
		r.Get("/albums/public/{slug}", albumHandler.GetBySlug)

		// Admin photo endpoints
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/photos/presign", photoHandler.Presign)
			r.Post("/photos/confirm", photoHandler.Confirm)
			r.Get("/photos", photoHandler.List)
			r.Delete("/photos/{id}", photoHandler.Delete)
		})

		// Admin album endpoints
		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Post("/albums", albumHandler.Create)
			r.Get("/albums", albumHandler.List)
			r.Put("/albums/{id}", albumHandler.Update)
			r.Delete("/albums/{id}", albumHandler.Delete)
			r.Get("/albums/{id}/photos", albumHandler.Photos)
			r.Post("/albums/{id}/photos", albumHandler.AddPhotos)
			r.Put("/albums/{id}/photos/reorder", albumHandler.Reorder)
			r.Delete("/albums/{id}/photos/{photoId}", albumHandler.RemovePhoto)
			r.Put("/albums/{id}/cover", albumHandler.SetCover)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
