package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <image-file>",
	Short: "Run a one-shot verification against the registry",
	Long: `Verify a photo on disk against the enrolled users and print the
outcome. Useful for threshold tuning and smoke testing a deployment.

Examples:
  face-gate verify ./captures/frame.jpg
  face-gate verify ./captures/frame.jpg --json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Bool("json", false, "Output as JSON")
}

func runVerify(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")

	imageData, err := os.ReadFile(args[0])
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

	outcome, err := svc.Verify(ctx, imageData)
	if err != nil {
		return fmt.Errorf("verifying: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(outcome)
	}

	if outcome.Success {
		fmt.Printf("Access granted: %s (distance %.4f, confidence %.2f)\n",
			outcome.User.Name, outcome.Distance, outcome.Confidence)
	} else {
		fmt.Printf("Access denied: %s (distance %.4f)\n", outcome.Message, outcome.Distance)
	}
	return nil
}
