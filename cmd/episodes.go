package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tuist/podqueue/internal/episodes"
)

var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "Seed and inspect the episode corpus",
}

var (
	addPodcast  string
	addTitle    string
	addDuration int
	addFileType string
	addStarred  bool
)

var episodesAddCmd = &cobra.Command{
	Use:   "add <uuid>",
	Short: "Add an episode to the corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := episodeStore.Add(&episodes.Episode{
			UUID:        args[0],
			PodcastUUID: addPodcast,
			Title:       addTitle,
			Duration:    addDuration,
			PublishedAt: time.Now(),
			FileType:    addFileType,
			Starred:     addStarred,
		})
		return err
	},
}

var episodesListCmd = &cobra.Command{
	Use:   "list <podcast-uuid>",
	Short: "List a podcast's episodes, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eps, err := episodeStore.AllForPodcast(args[0])
		if err != nil {
			return err
		}
		for _, e := range eps {
			queued := " "
			if eng.IsInUpNext(e.UUID) {
				queued = "*"
			}
			fmt.Printf("%s %-36s  %-12s  %s\n", queued, e.UUID, humanize.Time(e.PublishedAt), e.Title)
		}
		return nil
	},
}

func init() {
	episodesAddCmd.Flags().StringVar(&addPodcast, "podcast", "", "podcast uuid")
	episodesAddCmd.Flags().StringVar(&addTitle, "title", "", "episode title")
	episodesAddCmd.Flags().IntVar(&addDuration, "duration", 0, "duration in seconds")
	episodesAddCmd.Flags().StringVar(&addFileType, "file-type", "audio/mp3", "media mime type")
	episodesAddCmd.Flags().BoolVar(&addStarred, "starred", false, "mark starred")
	_ = episodesAddCmd.MarkFlagRequired("podcast")

	episodesCmd.AddCommand(episodesAddCmd, episodesListCmd)
	rootCmd.AddCommand(episodesCmd)
}
