package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitefoto/sitefoto/internal/archive"
	"github.com/sitefoto/sitefoto/internal/config"
	"github.com/sitefoto/sitefoto/internal/database/postgres"
	"github.com/sitefoto/sitefoto/internal/imaging"
	"github.com/sitefoto/sitefoto/internal/ingest"
	"github.com/sitefoto/sitefoto/internal/lifecycle"
	"github.com/sitefoto/sitefoto/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Sitefoto web server.
The server exposes the project and photo API, including uploads,
thumbnails, and album archive downloads.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	projects := postgres.NewProjectRepository(pool)
	photos := postgres.NewPhotoRepository(pool)
	normalizer := imaging.New(&cfg.Imaging)
	ingestSvc := ingest.NewService(projects, photos, normalizer, cfg.Upload.Dir)
	exporter := archive.NewExporter(projects, photos)
	lifecycleMgr := lifecycle.NewManager(projects, photos, cfg.Upload.Dir)

	server := web.NewServer(cfg, projects, photos, ingestSvc, exporter, lifecycleMgr, normalizer)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Sitefoto on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
