package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/agentboard/internal/config"
	"github.com/emiliopalmerini/agentboard/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the terminal dashboard",
	Long: `Open the live terminal dashboard. Requires a running server
(agentboard serve).`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return tui.Run(tui.NewClient(fmt.Sprintf("http://%s", cfg.Addr)))
}
