package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tuist/podqueue/internal/playlists"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "Manage playlists",
}

var playlistsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlists in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		all := eng.Playlists()
		if len(all) == 0 {
			fmt.Println("no playlists")
			return nil
		}
		for _, p := range all {
			kind := "smart"
			if p.Manual {
				kind = "manual"
			}
			sync := "not synced"
			if p.SyncStatus == playlists.SyncStatusSynced {
				sync = "synced"
			}
			fmt.Printf("%3d  %-36s  %-7s %-10s  %s\n", p.SortPosition, p.UUID, kind, sync, p.Name)
		}
		return nil
	},
}

var createManual bool

var playlistsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a playlist (smart by default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := &playlists.Playlist{
			Name:   args[0],
			Manual: createManual,
			Rules:  playlists.DefaultRules(),
		}
		if err := eng.CreateOrUpdatePlaylist(p); err != nil {
			return err
		}
		fmt.Println(p.UUID)
		return nil
	},
}

var playlistsDeleteCmd = &cobra.Command{
	Use:   "delete <uuid>",
	Short: "Delete a playlist (tombstoned until purge)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return eng.DeletePlaylist(args[0])
	},
}

var playlistsReorderCmd = &cobra.Command{
	Use:   "reorder <uuid> <index>",
	Short: "Move a playlist to a new display index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}
		return eng.ReorderPlaylists(args[0], index)
	},
}

var playlistsCountCmd = &cobra.Command{
	Use:   "count <uuid>",
	Short: "Count episodes matching a smart playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := eng.SmartPlaylistEpisodeCount(args[0], "")
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Physically remove tombstoned playlists and entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return eng.PurgeDeleted()
	},
}

func init() {
	playlistsCreateCmd.Flags().BoolVar(&createManual, "manual", false, "create a manual playlist")
	playlistsCmd.AddCommand(playlistsListCmd, playlistsCreateCmd, playlistsDeleteCmd,
		playlistsReorderCmd, playlistsCountCmd)
	rootCmd.AddCommand(playlistsCmd, purgeCmd)
}
