package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/agentboard/internal/config"
	"github.com/emiliopalmerini/agentboard/internal/hooks"
)

var integrateCmd = &cobra.Command{
	Use:   "integrate",
	Short: "Install the Claude Code hooks",
	Long: `Register agentboard's lifecycle hooks in ~/.claude/settings.json.
Existing hooks from other tools are left untouched.`,
	RunE: runIntegrate,
}

var unintegrateCmd = &cobra.Command{
	Use:   "unintegrate",
	Short: "Remove the Claude Code hooks",
	RunE:  runUnintegrate,
}

func init() {
	rootCmd.AddCommand(integrateCmd)
	rootCmd.AddCommand(unintegrateCmd)
}

func newInstaller() (*hooks.Installer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return hooks.NewInstaller(fmt.Sprintf("http://%s/api/event", cfg.Addr))
}

func runIntegrate(cmd *cobra.Command, args []string) error {
	installer, err := newInstaller()
	if err != nil {
		return err
	}
	if err := installer.Install(); err != nil {
		return fmt.Errorf("installing hooks: %w", err)
	}
	fmt.Println("Hooks installed. Claude Code sessions will now report to agentboard.")
	return nil
}

func runUnintegrate(cmd *cobra.Command, args []string) error {
	installer, err := newInstaller()
	if err != nil {
		return err
	}
	if err := installer.Uninstall(); err != nil {
		return fmt.Errorf("removing hooks: %w", err)
	}
	fmt.Println("Hooks removed.")
	return nil
}
