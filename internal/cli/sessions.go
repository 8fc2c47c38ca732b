package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/agentboard/internal/adapters/sqlite"
	"github.com/emiliopalmerini/agentboard/internal/config"
	"github.com/emiliopalmerini/agentboard/internal/database"
	"github.com/emiliopalmerini/agentboard/internal/migrate"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List tracked sessions",
	Long: `List every tracked session straight from the database, newest first.

Examples:
  agentboard sessions           # All sessions
  agentboard sessions --active  # Only working / needs_approval`,
	RunE: runSessions,
}

var sessionsActiveOnly bool

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().BoolVar(&sessionsActiveOnly, "active", false, "Only show active sessions")
}

func runSessions(cmd *cobra.Command, args []string) error {
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
	if err := migrate.RunAll(ctx, db.DB); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	sessions, err := sqlite.NewSessionRepository(db.DB).GetAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%-38s %-15s %-20s %-8s %s\n", "ID", "STATUS", "PROJECT", "CLOSED", "LAST EVENT")
	for _, s := range sessions {
		if sessionsActiveOnly && (!s.Status.Active() || s.IsClosed) {
			continue
		}
		closed := ""
		if s.IsClosed {
			closed = "yes"
		}
		last := time.UnixMilli(s.LastEventTime).Format("2006-01-02 15:04:05")
		fmt.Printf("%-38s %-15s %-20s %-8s %s\n", s.ID, s.Status, s.ProjectName, closed, last)
	}
	return nil
}
