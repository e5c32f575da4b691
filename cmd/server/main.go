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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tanmayd/research-hub/internal/auth"
	"github.com/tanmayd/research-hub/internal/config"
	"github.com/tanmayd/research-hub/internal/engine"
	"github.com/tanmayd/research-hub/internal/metrics"
	"github.com/tanmayd/research-hub/internal/middleware"
	"github.com/tanmayd/research-hub/internal/pipeline"
	"github.com/tanmayd/research-hub/internal/research"
	"github.com/tanmayd/research-hub/internal/search"
	"github.com/tanmayd/research-hub/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	users := store.NewUserStore(pgPool)
	if err := users.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	runs := store.NewRunStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb)

	// ── MinIO ────────────────────────────────────────────────
	reports, err := store.NewReportStore(
		ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
		cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("minio connect: %v", err)
	}

	// ── Pipeline ─────────────────────────────────────────────
	engineClient := engine.New(cfg.EngineBaseURL, engine.Options{
		Model:       cfg.EngineModel,
		Temperature: cfg.EngineTemperature,
		MaxTokens:   cfg.EngineMaxTokens,
		Timeout:     cfg.EngineTimeout,
	})
	searcher := search.NewTavily(cfg.TavilyAPIKey, cfg.SearchTimeout)
	runner, err := pipeline.NewRunner(engineClient, searcher)
	if err != nil {
		log.Fatalf("pipeline: %v", err)
	}

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(users, sessions)
	researchHandler := research.NewHandler(runs, reports, runner, cfg.EngineModel)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	// Auth routes (public)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.With(middleware.RequireAuth(sessions)).Get("/me", authHandler.Me)
	})

	// Research routes (protected)
	r.Route("/api/research", func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessions))
		r.Post("/", researchHandler.Create)
		r.Get("/", researchHandler.List)
		r.Get("/{id}", researchHandler.Get)
		r.Get("/{id}/trace", researchHandler.Trace)
		r.Get("/{id}/report", researchHandler.DownloadReport)
		r.Delete("/{id}", researchHandler.Delete)
	})

	// A run blocks on the model server, so keep generous timeouts.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 10 * time.Minute,
	}

	go func() {
		log.Printf("research-hub listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
