package cmd

import (
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Flip sync-status flags on behalf of the sync collaborator",
}

var syncMarkCmd = &cobra.Command{
	Use:   "mark",
	Short: "Mark all pending playlists as synced",
	RunE: func(cmd *cobra.Command, args []string) error {
		return eng.MarkAllSynced()
	},
}

var syncUnmarkCmd = &cobra.Command{
	Use:   "unmark",
	Short: "Queue every playlist for re-upload",
	RunE: func(cmd *cobra.Command, args []string) error {
		return eng.MarkAllUnsynced()
	},
}

func init() {
	syncCmd.AddCommand(syncMarkCmd, syncUnmarkCmd)
	rootCmd.AddCommand(syncCmd)
}
