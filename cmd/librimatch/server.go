package librimatch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/librimatch/librimatch/pkg/config"
	"github.com/librimatch/librimatch/pkg/logger"
	"github.com/librimatch/librimatch/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the librimatch HTTP server",
	Long: `Start the librimatch HTTP server to provide REST API access to the
book matching pipeline.

The server provides endpoints for:
- Matching free-text queries against OpenLibrary (GET /api/v1/match)
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Catalog flags
	serverCmd.Flags().String("openlibrary-base-url", "", "OpenLibrary base URL")

	// LLM flags
	serverCmd.Flags().String("default-model", "", "Default model (gemini-flash-lite, gemini-flash, gpt-nano)")
	serverCmd.Flags().Float32("temperature", 0, "Default sampling temperature")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	overrideConfigWithFlags(cmd, cfg)

	log := logger.New(cfg.Log)

	// Wire the matching pipeline
	ctx := context.Background()
	matcher, closeMatcher, err := buildMatcher(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize matcher: %w", err)
	}
	defer closeMatcher()

	// Create and setup server
	srv := server.New(cfg, matcher)
	srv.Setup()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())

		// Create shutdown context with timeout
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Shutdown server
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		log.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Catalog flags
	if cmd.Flags().Changed("openlibrary-base-url") {
		cfg.OpenLibrary.BaseURL, _ = cmd.Flags().GetString("openlibrary-base-url")
	}

	// LLM flags
	if cmd.Flags().Changed("default-model") {
		cfg.LLM.DefaultModel, _ = cmd.Flags().GetString("default-model")
	}
	if cmd.Flags().Changed("temperature") {
		cfg.LLM.Temperature, _ = cmd.Flags().GetFloat32("temperature")
	}
}
