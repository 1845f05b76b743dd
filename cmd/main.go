package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"zapp_server/config"
	"zapp_server/internal/ai"
	"zapp_server/internal/api"
	"zapp_server/internal/gist"
	"zapp_server/internal/projects"
)

var (
	configPath string
	envFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "zapp-server",
		Short: "Zapp serves AI generation of React Native and Flutter apps",
		Long: `Zapp turns a prompt into a multi-file React Native or Flutter project,
applies follow-up change requests file by file, and derives a single-file
preview for the browser.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", ".", "Directory containing config.yaml")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before the configuration")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// --- Load .env file ---
	// Must happen before viper reads the environment.
	if err := godotenv.Load(envFile); err != nil {
		if os.IsNotExist(err) {
			logrus.Info(".env file not found, relying on system environment variables.")
		} else {
			logrus.Warnf("Error loading .env file: %v", err)
		}
	} else {
		logrus.Infof("Loaded environment variables from %s.", envFile)
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}

	logger := newLogger(cfg)
	log := logrus.NewEntry(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Dependency Initialization ---
	llm, err := ai.NewCompleter(ctx, cfg)
	if err != nil {
		return fmt.Errorf("cannot create model client: %w", err)
	}
	if closer, ok := llm.(io.Closer); ok {
		defer closer.Close()
	}
	log.WithFields(logrus.Fields{"provider": cfg.LLMProvider, "model": llm.Model()}).Info("Model client ready")

	store, err := projects.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("cannot open project store: %w", err)
	}
	defer store.Close()
	log.Infof("Project store ready (%T)", store)

	gists := gist.NewClient(cfg.GitHubToken, cfg.GitHubAPIURL, log.WithField("component", "gist"))

	apiHandler := api.NewAPIHandler(ai.NewGenerator(llm, log), store, gists, log)

	// --- Start API Server ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
		log.Info("Running in Gin Debug Mode")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	api.RegisterRoutes(router, apiHandler)

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout, // generation chains several model calls
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting API server on %s", cfg.ServerAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Infof("Received signal: %s. Shutting down server...", sig)
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("API server listen error: %w", err)
		}
	}

	shutdownCtx, serverCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer serverCancel()

	cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("API server forced shutdown error: %v", err)
	} else {
		log.Info("API server gracefully stopped.")
	}

	log.Info("Application exiting.")
	return nil
}

// newLogger configures the root logger from LOG_LEVEL and APP_ENV.
func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)
	if cfg.AppEnv == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
