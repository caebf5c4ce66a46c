package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Bulk-enroll users from a directory of photos",
	Long: `Enroll every photo in a directory as a user. The file name without
extension becomes the user name, with underscores turned into spaces
("jan_novak.jpg" enrolls "jan novak").

Photos where no face is found are reported and skipped; the rest of the
import continues.

Examples:
  # Preview what would be enrolled
  face-gate import ./staff-photos --dry-run

  # Enroll everyone
  face-gate import ./staff-photos`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().Bool("dry-run", false, "List the photos without enrolling anyone")
}

var importExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// importUserName derives the user name from a photo file name.
func importUserName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, "_", " ")
}

func collectImportPhotos(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var photos []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if importExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			photos = append(photos, filepath.Join(dir, entry.Name()))
		}
	}
	return photos, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	dir := args[0]
	dryRun := mustGetBool(cmd, "dry-run")

	photos, err := collectImportPhotos(dir)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		fmt.Println("No photos found to import")
		return nil
	}

	if dryRun {
		fmt.Printf("Would enroll %d users:\n", len(photos))
		for _, photo := range photos {
			fmt.Printf("  %-30s %s\n", importUserName(photo), photo)
		}
		return nil
	}

	cfg := config.Load()
	ctx := context.Background()

	svc, store, _, _, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	bar := progressbar.NewOptions(len(photos),
		progressbar.OptionSetDescription("Enrolling users"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var enrolled int
	var failures []string
	for _, photo := range photos {
		imageData, err := os.ReadFile(photo)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", photo, err))
			bar.Add(1)
			continue
		}

		name := importUserName(photo)
		if _, err := svc.Register(ctx, name, imageData); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", photo, err))
			bar.Add(1)
			continue
		}
		enrolled++
		bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("Enrolled %d of %d users\n", enrolled, len(photos))
	if len(failures) > 0 {
		fmt.Printf("Skipped %d photos:\n", len(failures))
		for _, failure := range failures {
			fmt.Printf("  %s\n", failure)
		}
	}
	return nil
}
