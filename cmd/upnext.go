package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tuist/podqueue/internal/engine"
	"github.com/tuist/podqueue/internal/playlists"
)

var upnextCmd = &cobra.Command{
	Use:   "upnext",
	Short: "Inspect and edit the Up Next queue",
}

var upnextListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the queue in play order",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := eng.UpNext()
		if len(entries) == 0 {
			fmt.Println("queue is empty")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%3d  %-36s  %s\n", e.Position, e.EpisodeUUID, e.Title)
		}
		return nil
	},
}

var upnextAddCmd = &cobra.Command{
	Use:   "add <episode-uuid>...",
	Short: "Append episodes to the queue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return eng.AddEpisodesToPlaylist(args, playlists.UpNextUUID, engine.PositionBottom)
	},
}

var upnextNextCmd = &cobra.Command{
	Use:   "next <episode-uuid>",
	Short: "Put an episode at the head of the queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return eng.PlayNext(args[0])
	},
}

var upnextMoveCmd = &cobra.Command{
	Use:   "move <episode-uuid> <index>",
	Short: "Move a queued episode to a new index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid index %q", args[1])
		}
		return eng.MoveEpisode(args[0], playlists.UpNextUUID, to)
	},
}

var upnextRemoveCmd = &cobra.Command{
	Use:   "remove <episode-uuid>...",
	Short: "Remove episodes from the queue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return eng.RemoveEpisodes(args, playlists.UpNextUUID)
	},
}

var upnextClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return eng.ClearPlaylist(playlists.UpNextUUID)
	},
}

func init() {
	upnextCmd.AddCommand(upnextListCmd, upnextAddCmd, upnextNextCmd,
		upnextMoveCmd, upnextRemoveCmd, upnextClearCmd)
	rootCmd.AddCommand(upnextCmd)
}
