package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/sitefoto/sitefoto/internal/config"
	"github.com/sitefoto/sitefoto/internal/database"
	"github.com/sitefoto/sitefoto/internal/database/postgres"
	"github.com/sitefoto/sitefoto/internal/imaging"
	"github.com/sitefoto/sitefoto/internal/ingest"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <directory>",
	Short: "Ingest a directory of photos into a project",
	Long: `Ingest every image file in a local directory into a project,
running the same pipeline as the upload endpoint: filename sanitization,
collision-free storage, normalization, and metadata extraction.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().String("project", "", "Project ID to ingest into (required)")
	ingestCmd.Flags().String("description", "", "Default description for photos without an extractable date")
	_ = ingestCmd.MarkFlagRequired("project")
}

// ingestFile pushes one file through the pipeline. The file handle is
// closed before returning.
func ingestFile(svc *ingest.Service, cmd *cobra.Command, projectID, path, defaultDescription string) (*ingest.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return svc.Ingest(cmd.Context(), projectID, []ingest.File{
		{Filename: filepath.Base(path), Content: f},
	}, defaultDescription)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	projectID := mustGetString(cmd, "project")
	defaultDescription := mustGetString(cmd, "description")
	dir := args[0]

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		fmt.Println("No files found.")
		return nil
	}

	pool, err := postgres.Initialize(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	projects := postgres.NewProjectRepository(pool)
	photos := postgres.NewPhotoRepository(pool)
	normalizer := imaging.New(&cfg.Imaging)
	svc := ingest.NewService(projects, photos, normalizer, cfg.Upload.Dir)

	project, err := projects.Get(cmd.Context(), projectID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("project %s not found", projectID)
		}
		return fmt.Errorf("loading project: %w", err)
	}
	fmt.Printf("Ingesting %d files into project %q\n\n", len(paths), project.Name)

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	ingested := 0
	var skipped []string
	for _, path := range paths {
		result, err := ingestFile(svc, cmd, projectID, path, defaultDescription)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		ingested += result.Ingested
		for _, fr := range result.Files {
			if fr.Status != ingest.StatusStored {
				skipped = append(skipped, fmt.Sprintf("%s (%s)", fr.OriginalName, fr.Reason))
			}
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\n\nIngested %d of %d files\n", ingested, len(paths))
	for _, s := range skipped {
		fmt.Printf("  skipped: %s\n", s)
	}
	return nil
}
