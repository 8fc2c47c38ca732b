package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/agentboard/internal/config"
	"github.com/emiliopalmerini/agentboard/internal/database"
	"github.com/emiliopalmerini/agentboard/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Apply pending schema migrations.

Examples:
  agentboard migrate         # Apply all pending migrations
  agentboard migrate --down  # Roll back the most recent migration`,
	RunE: runMigrate,
}

var migrateDown bool

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back the most recent migration")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if migrateDown {
		if err := migrate.Down(ctx, db.DB); err != nil {
			return err
		}
		fmt.Println("Rolled back one migration")
		return nil
	}

	applied, err := migrate.Up(ctx, db.DB)
	if err != nil {
		return err
	}
	if applied == 0 {
		fmt.Println("Database is up to date")
	} else {
		fmt.Printf("Applied %d migrations\n", applied)
	}
	return nil
}
