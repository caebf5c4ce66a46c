package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-gate",
	Short: "Face verification access control service",
	Long: `Face Gate coordinates camera-based access control: it keeps a registry
of enrolled face descriptors, talks to an external detection service to
extract descriptors from captured frames, and grants or denies access by
nearest-neighbor matching. The serve command exposes the HTTP API and a
websocket event feed; the other commands manage enrollment from the
command line.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
