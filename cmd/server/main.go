package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/studysphere/backend/internal/analytics"
	"github.com/studysphere/backend/internal/apperr"
	"github.com/studysphere/backend/internal/auth"
	"github.com/studysphere/backend/internal/config"
	"github.com/studysphere/backend/internal/database"
	"github.com/studysphere/backend/internal/generator"
	"github.com/studysphere/backend/internal/logger"
	"github.com/studysphere/backend/internal/middleware"
	"github.com/studysphere/backend/internal/notes"
	"github.com/studysphere/backend/internal/ocr"
	"github.com/studysphere/backend/internal/quiz"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "studysphere",
		Short:         "StudySphere study-assistant API",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("port", "8080", "HTTP listen port")
	root.PersistentFlags().String("log-mode", "dev", "log mode: dev or prod")
	v.BindPFlag("port", root.PersistentFlags().Lookup("port"))
	v.BindPFlag("log_mode", root.PersistentFlags().Lookup("log-mode"))

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run migrations and start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context(), v)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context(), v)
			},
		},
	)
	return root
}

// setup loads configuration, builds the logger and opens the database.
func setup(ctx context.Context, v *viper.Viper) (*config.Config, *logger.Logger, *sql.DB, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is not set")
		return nil, nil, nil, errors.New("DATABASE_URL is required")
	}

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err.Error())
		return nil, nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		log.Error("failed to run migrations", "error", err.Error())
		db.Close()
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func migrate(ctx context.Context, v *viper.Viper) error {
	_, log, db, err := setup(ctx, v)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer db.Close()
	log.Info("migrations applied")
	return nil
}

func serve(ctx context.Context, v *viper.Viper) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, db, err := setup(ctx, v)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer db.Close()

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is not set; authentication will answer 500 until it is configured")
	}
	if !cfg.AIConfigured() {
		log.Warn("AI provider is not configured; generation is disabled and explanations will be null",
			"llm_provider", cfg.LLMProvider)
	}

	// Shared clients
	llm := generator.NewClient(cfg, log)
	ocrProvider, err := ocr.NewProvider(ctx, cfg, log)
	if err != nil {
		log.Error("OCR provider unavailable", "ocr_provider", cfg.OCRProvider, "error", err.Error())
		ocrProvider = ocr.Unconfigured{}
	}
	defer ocrProvider.Close()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	limiter := middleware.NewRateLimiter(cfg.AIRatePerMinute, cfg.AIRateBurst)

	// Services
	authService := auth.NewService(auth.NewStore(db), tokens, log)
	noteService := notes.NewService(notes.NewStore(db), log)
	testStore := quiz.NewStore(db)
	quizService := quiz.NewService(
		noteService,
		testStore,
		generator.NewGenerator(llm, cfg.AICallTimeout, log),
		generator.NewExplainer(llm, cfg.AICallTimeout, cfg.ExplainConcurrency, log),
		generator.NewTutor(llm, cfg.AICallTimeout, log),
		log,
	)
	analyticsService := analytics.NewService(testStore, log)
	ingestor := ocr.NewIngestor(ocrProvider, cfg.OCRTimeout, log)

	// Router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apperr.Write(w, nil, apperr.NotFound("Not found"))
	})
	api := r.PathPrefix("/api/v1").Subrouter()

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.NewAuth(log, tokens).Require)

	ai := protected.PathPrefix("").Subrouter()
	ai.Use(limiter.Limit)

	auth.NewHandler(authService, log).RegisterRoutes(api, protected)
	notes.NewHandler(noteService, log).RegisterRoutes(protected)
	quiz.NewHandler(quizService, log).RegisterRoutes(protected, ai)
	analytics.NewHandler(analyticsService, log).RegisterRoutes(protected)
	ocr.NewHandler(ingestor, noteService, cfg.MaxUploadBytes, log).RegisterRoutes(ai)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		apperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "llm_provider", cfg.LLMProvider, "ocr_provider", cfg.OCRProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err.Error())
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		return err
	}
	log.Info("server stopped")
	return nil
}
