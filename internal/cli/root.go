// Package cli defines the agentboard command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentboard",
	Short: "Local monitor for AI coding-assistant CLI sessions",
	Long: `agentboard tracks what your coding-assistant CLIs are doing right now.

It ingests lifecycle hook events from Claude Code and friends, keeps a
persistent session log, and shows a live dashboard of every session:
working, waiting for approval, idle or done.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
