package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gwi.com/tutorgen/internal/api"
	"gwi.com/tutorgen/internal/config"
	"gwi.com/tutorgen/internal/core"
	"gwi.com/tutorgen/internal/logger"
	"gwi.com/tutorgen/internal/model"
	"gwi.com/tutorgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "tutorgen",
	Short:         "Generate step-by-step tutorials with Gemini",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(askCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app holds the wired dependencies shared by every command.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *store.Store
	gemini  *model.GeminiClient
	service *core.TutorialService
}

// newApp wires the shared dependencies. withModel is false for commands that
// only read stored tutorials; those run without GOOGLE_API_KEY.
func newApp(ctx context.Context, withModel bool) (*app, error) {
	// Load configuration
	cfg := config.Load()

	// Setup logging
	log, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.EnvFileWasMissing {
		log.Debug("No .env file found, relying on environment variables")
	}

	// A missing credential is fatal only when the model client is needed.
	validate := cfg.ValidateStorage
	if withModel {
		validate = cfg.Validate
	}
	if err := validate(); err != nil {
		log.Sync()
		return nil, err
	}

	// Initialize database store
	db, err := store.Open(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &app{cfg: cfg, log: log, db: db}

	// Initialize model client
	var models model.Client
	if withModel {
		a.gemini, err = model.NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.ModelName, log)
		if err != nil {
			db.Close()
			log.Sync()
			return nil, err
		}
		models = a.gemini
	}

	a.service = core.NewTutorialService(db, models, core.TutorialServiceConfig{
		SystemPromptPath: cfg.SystemPromptPath,
	}, log)
	return a, nil
}

func (a *app) Close() {
	if a.gemini != nil {
		a.gemini.Close()
	}
	if err := a.db.Close(); err != nil {
		a.log.Warn("Error closing database", "error", err)
	}
	a.log.Sync()
}

func runServer(ctx context.Context) error {
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(a.service, a.log)
	router := api.NewRouter(apiHandler, a.log)

	serverAddr := fmt.Sprintf(":%s", a.cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(a.cfg.WriteTimeoutSecs) * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info("Starting server", "addr", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
		return nil
	case <-quit:
	}
	a.log.Info("Shutting down server...")

	// Give active connections time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("Server exiting gracefully")
	return nil
}
