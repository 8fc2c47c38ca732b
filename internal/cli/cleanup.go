package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/agentboard/internal/adapters/sqlite"
	"github.com/emiliopalmerini/agentboard/internal/config"
	"github.com/emiliopalmerini/agentboard/internal/database"
	"github.com/emiliopalmerini/agentboard/internal/enrich"
	"github.com/emiliopalmerini/agentboard/internal/migrate"
	"github.com/emiliopalmerini/agentboard/internal/ports"
	"github.com/emiliopalmerini/agentboard/internal/tracker"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete long-closed sessions",
	Long: `Delete sessions that have been closed for longer than the retention
window, cascading their event logs.

Examples:
  agentboard cleanup             # Default retention (7 days)
  agentboard cleanup --days 30   # Keep a month of closed sessions`,
	RunE: runCleanup,
}

var cleanupDays int

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "Retention window in days (default from config)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	retention := cfg.Retention()
	if cleanupDays > 0 {
		retention = time.Duration(cleanupDays) * 24 * time.Hour
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrate.RunAll(ctx, db.DB); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	manager := tracker.NewManager(
		sqlite.NewSessionRepository(db.DB),
		sqlite.NewEventRepository(db.DB),
		enrich.NewReader(),
		ports.NoopNotifier{},
		ports.NoopMetrics{},
	)

	removed, err := manager.CleanOldSessions(ctx, retention)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d sessions closed for more than %s\n", removed, retention)
	return nil
}
