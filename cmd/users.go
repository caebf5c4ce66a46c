package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/face-gate/internal/config"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List enrolled users",
	Long: `List the users in the registry, optionally filtered by name.

Examples:
  face-gate users
  face-gate users --search novak
  face-gate users --json`,
	RunE: runUsers,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an enrolled user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersCmd.Flags().String("search", "", "Filter users by name (diacritics-insensitive)")
	usersCmd.Flags().Bool("json", false, "Output as JSON")
}

func runUsers(cmd *cobra.Command, args []string) error {
	search := mustGetString(cmd, "search")
	jsonOutput := mustGetBool(cmd, "json")

	cfg := config.Load()
	ctx := context.Background()

	svc, store, _, _, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := svc.List(ctx, search)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(users)
	}

	if len(users) == 0 {
		fmt.Println("No users enrolled")
		return nil
	}
	for _, user := range users {
		fmt.Printf("%-38s %s\n", user.ID, user.Name)
	}
	fmt.Printf("\n%d users\n", len(users))
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	cfg := config.Load()
	ctx := context.Background()

	svc, store, _, _, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := svc.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting user %s: %w", id, err)
	}
	fmt.Printf("Deleted user %s\n", id)
	return nil
}
