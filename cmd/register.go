package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <name> <image-file>",
	Short: "Enroll a user from an image file",
	Long: `Enroll a user in the registry from a photo on disk.

The image is sent to the detection service; if exactly one face is found,
its descriptor is stored under a fresh user ID.

Examples:
  face-gate register "Alice" ./photos/alice.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	name := args[0]
	imagePath := args[1]

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	cfg := config.Load()
	ctx := context.Background()

	svc, store, _, _, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	user, err := svc.Register(ctx, name, imageData)
	if err != nil {
		return fmt.Errorf("registering %q: %w", name, err)
	}

	fmt.Printf("Registered %s (%s)\n", user.Name, user.ID)
	return nil
}
